package service

import (
	"context"
	"sync"
	"time"

	"auto_trader/internal/models"

	"github.com/pkg/errors"
)

// Cache держит последнюю котировку по бумаге с ограниченным сроком жизни.
// Один писатель (горутина Run), читатели — воркеры монитора.
type Cache struct {
	ttl time.Duration

	mu     sync.RWMutex
	quotes map[string]models.Quote

	now func() time.Time // подменяется в тестах
}

// NewCache instance
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:    ttl,
		quotes: make(map[string]models.Quote),
		now:    time.Now,
	}
}

// Run читает фид и обновляет кеш до отмены контекста.
func (c *Cache) Run(ctx context.Context, in <-chan models.Quote) {
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-in:
			if !ok {
				return
			}
			c.Put(q)
		}
	}
}

func (c *Cache) Put(q models.Quote) {
	c.mu.Lock()
	c.quotes[q.SecurityID] = q
	c.mu.Unlock()
}

func (c *Cache) GetQuote(ctx context.Context, securityID string) (models.Quote, error) {
	c.mu.RLock()
	q, ok := c.quotes[securityID]
	c.mu.RUnlock()

	if !ok {
		return models.Quote{}, errors.Wrap(models.ErrQuoteUnavailable, securityID)
	}
	if c.ttl > 0 && c.now().Sub(q.At) > c.ttl {
		return models.Quote{}, errors.Wrap(models.ErrQuoteStale, securityID)
	}
	return q, nil
}
