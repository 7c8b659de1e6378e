package main

import (
	"context"
	"log"

	"auto_trader/internal/modules/broker"
	"auto_trader/internal/modules/config"
	"auto_trader/internal/modules/engine"
	"auto_trader/internal/modules/postgres"
	"auto_trader/internal/modules/quotes"
	"auto_trader/internal/modules/store"
	"auto_trader/internal/notify"
	"auto_trader/pkg/logger"
	"auto_trader/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	logger.SetServiceName("auto_trader")
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			// Notifier: если телеграм не настроен — stdout
			func(cfg *config.Config) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					if tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID); err == nil {
						return tg
					}
				}
				return notify.NewStdout()
			},
		),
		config.Module(),
		postgres.Module(),
		store.Module(),
		quotes.Module(),
		broker.Module(),
		engine.Module(),
		fx.Invoke(func(cfg *config.Config) {
			if cfg.Jaeger.Host == "" {
				return
			}
			tracing.SetServiceName("auto_trader")
			if _, _, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			}); err != nil {
				logger.Error("init tracer: %v", err)
			}
		}),
	)
	app.Run()
}
