package engine

import (
	"context"
	"time"

	"auto_trader/internal/models"
	brokersvc "auto_trader/internal/modules/broker/service"
	"auto_trader/internal/modules/config"
	"auto_trader/internal/modules/engine/service"
	"auto_trader/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

// OrderEvents — поток терминальных событий шлюза для event-loop'а.
type OrderEvents <-chan models.OrderEvent

// Module собирает ядро и вешает его на cron-шедулер.
func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(gw brokersvc.Gateway) OrderEvents { return OrderEvents(gw.Events()) },
			func() service.Scorer { return service.NewConditionScorer() },
			service.NewMonitor,
			service.NewDispatcher,
			service.NewReconciler,
			service.NewEngine,
		),
		fx.Invoke(runScheduler),
		fx.Invoke(runEventLoop),
	)
}

func runScheduler(
	lc fx.Lifecycle,
	ctx context.Context,
	cfg *config.Config,
	eng *service.Engine,
) {
	// перекрывающиеся тики скипаем: цикл должен отработать целиком
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_, err := c.AddFunc(cfg.CycleCron, func() {
				eng.RunCycle(ctx, time.Now())
			})
			if err != nil {
				return err
			}
			c.Start()
			logger.Info("[ENGINE] scheduler started, spec=%q", cfg.CycleCron)

			go eng.HealthLoop(ctx)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			// даём in-flight запросам дорезаться по своим таймаутам
			select {
			case <-c.Stop().Done():
			case <-stopCtx.Done():
			}
			logger.Info("[ENGINE] scheduler stopped")
			return nil
		},
	})
}

// runEventLoop: терминальные события шлюза снимают in-flight с пары и
// инвалидируют снапшот счёта — следующий цикл заберёт новый кеш/позиции.
func runEventLoop(
	lc fx.Lifecycle,
	ctx context.Context,
	d *service.Dispatcher,
	r *service.Reconciler,
	events OrderEvents,
) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case ev, ok := <-events:
						if !ok {
							return
						}
						d.OnOrderEvent(ev)
						r.MarkStale()
					}
				}
			}()
			return nil
		},
	})
}
