package broker

import (
	"auto_trader/internal/modules/broker/service"
	"auto_trader/internal/modules/config"
	quotes "auto_trader/internal/modules/quotes/service"

	"go.uber.org/fx"
)

// Module отдаёт бумажный шлюз как service.Gateway.
// Живой брокерский клиент подключается сюда же своим провайдером.
func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(
			func(cfg *config.Config, q quotes.Source) service.Gateway {
				return service.NewPaper(cfg.AccountID, cfg.PaperInitialCash, q)
			},
		),
	)
}
