package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"auto_trader/internal/models"
	"auto_trader/internal/modules/config"
	"auto_trader/pkg/logger"

	"github.com/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := &config.Config{
		AccountID:          "main",
		EntryThreshold:     80,
		MonitorWorkers:     4,
		QuoteTimeout:       time.Second,
		StalenessThreshold: 3 * time.Minute,
		MaxFreshWait:       time.Second,
		CooldownPerPair:    90 * time.Second,
		SellFraction:       1.0,
	}
	cfg.Quotes.TTL = 10 * time.Second
	return cfg
}

// fakeQuotes — котировки из мапы, отсутствие = ErrQuoteUnavailable.
type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]models.Quote
}

func newFakeQuotes(qs ...models.Quote) *fakeQuotes {
	f := &fakeQuotes{quotes: make(map[string]models.Quote)}
	for _, q := range qs {
		f.quotes[q.SecurityID] = q
	}
	return f
}

func (f *fakeQuotes) GetQuote(ctx context.Context, securityID string) (models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[securityID]
	if !ok {
		return models.Quote{}, errors.Wrap(models.ErrQuoteUnavailable, securityID)
	}
	return q, nil
}

// fakeScorer отдаёт фиксированный score по бумаге.
type fakeScorer struct {
	scores map[string]float64
	exits  map[string]bool
}

func (f *fakeScorer) Score(ctx context.Context, st models.Strategy, q models.Quote) (float64, bool, error) {
	return f.scores[q.SecurityID], f.exits[q.SecurityID], nil
}

// fakeGateway записывает сабмиты и отвечает заданным ack'ом.
type fakeGateway struct {
	mu        sync.Mutex
	submitted []models.OrderIntent
	ack       models.OrderAck
	submitErr error

	balance    models.AccountBalance
	positions  []models.PortfolioPosition
	refreshErr error
	refreshes  int

	events chan models.OrderEvent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		ack:    models.OrderAck{OrderID: "ord-1", Status: models.OrderAckFilled},
		events: make(chan models.OrderEvent, 16),
	}
}

func (f *fakeGateway) SubmitOrder(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return models.OrderAck{}, f.submitErr
	}
	f.submitted = append(f.submitted, intent)
	return f.ack, nil
}

func (f *fakeGateway) RefreshAccountState(ctx context.Context, accountID string) (models.AccountBalance, []models.PortfolioPosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return models.AccountBalance{}, nil, f.refreshErr
	}
	return f.balance, f.positions, nil
}

func (f *fakeGateway) Events() <-chan models.OrderEvent { return f.events }

func (f *fakeGateway) submittedIntents() []models.OrderIntent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderIntent(nil), f.submitted...)
}

// noopNotifier глотает сообщения.
type noopNotifier struct{}

func (noopNotifier) Send(msg string)                  {}
func (noopNotifier) Sendf(format string, args ...any) {}

func testStrategy(id int64, pct float64, securities ...string) models.Strategy {
	return models.Strategy{
		ID:            id,
		OwnerID:       1,
		Name:          "test",
		Active:        true,
		AutoExecute:   true,
		AllocationPct: pct,
		Securities:    securities,
		Pricing: models.OrderPricing{
			Buy:  models.PricePolicy{Mode: models.PriceModeBestAsk},
			Sell: models.PricePolicy{Mode: models.PriceModeBestBid},
		},
	}
}
