package service

import (
	"context"

	"auto_trader/internal/models"
)

// Source отдаёт текущую котировку бумаги. Ошибки мапятся на
// models.ErrQuoteUnavailable / models.ErrQuoteStale.
type Source interface {
	GetQuote(ctx context.Context, securityID string) (models.Quote, error)
}

// Feed — поток котировок от фида (websocket или симулятор).
type Feed interface {
	Stream(ctx context.Context, securityIDs []string) <-chan models.Quote
}
