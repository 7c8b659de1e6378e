package service

import (
	"context"

	"auto_trader/internal/models"
)

// Store — персистентный стор ядра. Конкретный протокол (managed-БД и т.п.)
// живёт за этим интерфейсом; ядру достаточно row-level upsert-семантики.
type Store interface {
	// ListActiveStrategies возвращает снапшот активных стратегий на начало цикла.
	ListActiveStrategies(ctx context.Context) ([]models.Strategy, error)

	GetAccountBalance(ctx context.Context, accountID string) (models.AccountBalance, error)
	GetPositions(ctx context.Context, accountID string) ([]models.PortfolioPosition, error)

	// UpsertMonitoringRecord — идемпотентная запись по ключу (strategy_id, security_id).
	UpsertMonitoringRecord(ctx context.Context, rec models.MonitoringRecord) error

	// SaveAccountState перезаписывает баланс и позиции одним снапшотом,
	// пишет только реконсилер.
	SaveAccountState(ctx context.Context, bal models.AccountBalance, positions []models.PortfolioPosition) error
}
