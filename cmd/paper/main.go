package main

import (
	"context"
	"log"
	"time"

	"auto_trader/internal/models"
	"auto_trader/internal/modules/broker"
	"auto_trader/internal/modules/config"
	"auto_trader/internal/modules/engine"
	"auto_trader/internal/modules/quotes"
	storesvc "auto_trader/internal/modules/store/service"
	"auto_trader/internal/notify"
	"auto_trader/pkg/logger"

	"go.uber.org/fx"
)

// paper — весь конвейер на сторе в памяти и бумажном шлюзе,
// без постгреса и живого брокера.
func main() {
	logger.SetServiceName("auto_trader_paper")
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	mem := storesvc.NewMemory()
	seed(mem)

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			func() *config.Config { return config.Defaults() },
			func() storesvc.Store { return mem },
			func() notify.Notifier { return notify.NewStdout() },
		),
		quotes.Module(),
		broker.Module(),
		engine.Module(),
	)
	app.Run()
}

func seed(mem *storesvc.Memory) {
	mem.PutStrategy(models.Strategy{
		ID:            1,
		OwnerID:       1,
		Name:          "dip-buyer",
		Active:        true,
		AutoExecute:   true,
		AllocationPct: 30,
		Securities:    []string{"005930", "000660"},
		Pricing: models.OrderPricing{
			Buy:  models.PricePolicy{Mode: models.PriceModeBestAsk, Offset: -50},
			Sell: models.PricePolicy{Mode: models.PriceModeBestBid, Offset: 0},
		},
		Conditions: []byte(`[{"type":"price_below","value":10050},{"type":"spread_lte","value":5}]`),
	})
	mem.PutStrategy(models.Strategy{
		ID:            2,
		OwnerID:       1,
		Name:          "momentum",
		Active:        true,
		AutoExecute:   true,
		AllocationPct: 50,
		Securities:    []string{"035720"},
		Pricing: models.OrderPricing{
			Buy:  models.PricePolicy{Mode: models.PriceModeMarket},
			Sell: models.PricePolicy{Mode: models.PriceModeMarket},
		},
		Conditions: []byte(`[{"type":"price_above","value":9900},{"type":"exit_below","value":9000}]`),
	})

	_ = mem.SaveAccountState(context.Background(), models.AccountBalance{
		AccountID:     "main",
		TotalCash:     10_000_000,
		AvailableCash: 10_000_000,
		UpdatedAt:     time.Now(),
	}, nil)
}
