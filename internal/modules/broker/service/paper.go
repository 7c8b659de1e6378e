package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auto_trader/internal/models"
	quotes "auto_trader/internal/modules/quotes/service"

	"github.com/pkg/errors"
)

// Paper — бумажный шлюз: немедленно исполняет ордера по расчётной цене
// (MARKET — по last из кеша котировок) и ведёт счёт в памяти.
type Paper struct {
	accountID string
	quotes    quotes.Source

	mu        sync.Mutex
	cash      int64
	positions map[string]models.PortfolioPosition
	seq       int64

	events chan models.OrderEvent
}

// NewPaper instance
func NewPaper(accountID string, initialCash int64, q quotes.Source) *Paper {
	return &Paper{
		accountID: accountID,
		quotes:    q,
		cash:      initialCash,
		positions: make(map[string]models.PortfolioPosition),
		events:    make(chan models.OrderEvent, 256),
	}
}

func (p *Paper) SubmitOrder(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error) {
	price := intent.Price
	if intent.Method == models.OrderMethodMarket {
		q, err := p.quotes.GetQuote(ctx, intent.SecurityID)
		if err != nil {
			return models.OrderAck{Status: models.OrderAckRejected, Reason: "no quote for market fill"},
				errors.Wrap(models.ErrGatewayRejected, intent.SecurityID)
		}
		price = q.Last
	}
	if price <= 0 || intent.Quantity <= 0 {
		return models.OrderAck{Status: models.OrderAckRejected, Reason: "bad price/qty"},
			errors.Wrap(models.ErrGatewayRejected, intent.SecurityID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	orderID := fmt.Sprintf("paper-%d", p.seq)
	cost := price * intent.Quantity

	switch intent.Side {
	case models.SideBuy:
		if cost > p.cash {
			return models.OrderAck{OrderID: orderID, Status: models.OrderAckRejected, Reason: "insufficient cash"}, nil
		}
		p.cash -= cost
		pos := p.positions[intent.SecurityID]
		newQty := pos.Quantity + intent.Quantity
		// средняя цена по объёму
		pos.AvgCost = (pos.AvgCost*pos.Quantity + cost) / newQty
		pos.Quantity = newQty
		pos.AccountID = p.accountID
		pos.SecurityID = intent.SecurityID
		p.positions[intent.SecurityID] = pos

	case models.SideSell:
		pos, ok := p.positions[intent.SecurityID]
		if !ok || pos.Quantity < intent.Quantity {
			return models.OrderAck{OrderID: orderID, Status: models.OrderAckRejected, Reason: "insufficient position"}, nil
		}
		p.cash += cost
		pos.Quantity -= intent.Quantity
		if pos.Quantity == 0 {
			delete(p.positions, intent.SecurityID)
		} else {
			p.positions[intent.SecurityID] = pos
		}

	default:
		return models.OrderAck{Status: models.OrderAckRejected, Reason: "unknown side"}, models.ErrUnknownSide
	}

	ev := models.OrderEvent{
		OrderID:    orderID,
		StrategyID: intent.StrategyID,
		SecurityID: intent.SecurityID,
		Kind:       models.OrderEventFilled,
		FillPrice:  price,
		FillQty:    intent.Quantity,
		At:         time.Now(),
	}
	select {
	case p.events <- ev:
	default:
		// переполнение буфера событий: fill уже учтён в счёте, событие дропаем
	}

	return models.OrderAck{OrderID: orderID, Status: models.OrderAckFilled}, nil
}

func (p *Paper) RefreshAccountState(ctx context.Context, accountID string) (models.AccountBalance, []models.PortfolioPosition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bal := models.AccountBalance{
		AccountID:     accountID,
		TotalCash:     p.cash,
		AvailableCash: p.cash,
		UpdatedAt:     time.Now(),
	}
	out := make([]models.PortfolioPosition, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos)
	}
	return bal, out, nil
}

func (p *Paper) Events() <-chan models.OrderEvent {
	return p.events
}
