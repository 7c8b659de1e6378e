package store

import (
	"auto_trader/internal/modules/store/service"
	"auto_trader/internal/modules/store/service/pg"
	"auto_trader/pkg/db"

	"go.uber.org/fx"
)

// Module отдаёт pg-стор как service.Store.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			func(m *db.PgTxManager) service.Store {
				return pg.New(m)
			},
		),
	)
}
