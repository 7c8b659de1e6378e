package service

import (
	"context"

	"auto_trader/internal/models"
)

// Gateway — брокерский шлюз. Протокол до брокера живёт за интерфейсом;
// ядро не ретраит отклонённые ордера.
type Gateway interface {
	// SubmitOrder передаёт intent шлюзу. Нетерминальный ack (accepted)
	// оставляет пару in-flight до события из Events.
	SubmitOrder(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error)

	// RefreshAccountState — авторитетный баланс и позиции со стороны брокера.
	RefreshAccountState(ctx context.Context, accountID string) (models.AccountBalance, []models.PortfolioPosition, error)

	// Events — fill/reject/cancel по ранее принятым ордерам.
	Events() <-chan models.OrderEvent
}
