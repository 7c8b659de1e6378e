package quotes

import (
	"context"
	"time"

	"auto_trader/internal/modules/config"
	"auto_trader/internal/modules/quotes/service"
	storesvc "auto_trader/internal/modules/store/service"
	"auto_trader/pkg/logger"

	"go.uber.org/fx"
)

// Module поднимает кеш котировок и фид (websocket либо симулятор).
func Module() fx.Option {
	return fx.Module("quotes",
		fx.Provide(
			func(cfg *config.Config) *service.Cache {
				return service.NewCache(cfg.Quotes.TTL)
			},
			func(c *service.Cache) service.Source { return c },
			func(cfg *config.Config) service.Feed {
				if cfg.Quotes.URL != "" {
					return service.NewWSFeed(cfg.Quotes.URL)
				}
				return service.NewSimFeed(nil, time.Second)
			},
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			ctx context.Context,
			cache *service.Cache,
			feed service.Feed,
			st storesvc.Store,
		) {
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					// вселенная бумаг — объединение таргет-листов активных стратегий
					strategies, err := st.ListActiveStrategies(startCtx)
					if err != nil {
						return err
					}
					seen := make(map[string]bool)
					var securities []string
					for _, s := range strategies {
						for _, id := range s.Securities {
							if !seen[id] {
								seen[id] = true
								securities = append(securities, id)
							}
						}
					}
					logger.Info("[QUOTES] feed started, %d securities", len(securities))

					go cache.Run(ctx, feed.Stream(ctx, securities))
					return nil
				},
			})
		}),
	)
}
