package service

import (
	"context"
	"math/rand"
	"time"

	"auto_trader/internal/models"
)

// SimFeed — симулятор котировок для paper-режима: random walk вокруг
// стартовой цены, спред в один тик.
type SimFeed struct {
	seed     int64
	interval time.Duration
	start    map[string]int64
}

// NewSimFeed instance
func NewSimFeed(start map[string]int64, interval time.Duration) *SimFeed {
	if interval <= 0 {
		interval = time.Second
	}
	return &SimFeed{
		seed:     time.Now().UnixNano(),
		interval: interval,
		start:    start,
	}
}

func (f *SimFeed) Stream(ctx context.Context, securityIDs []string) <-chan models.Quote {
	ch := make(chan models.Quote)
	go func() {
		defer close(ch)

		rnd := rand.New(rand.NewSource(f.seed))
		last := make(map[string]int64, len(securityIDs))
		for _, id := range securityIDs {
			px := f.start[id]
			if px <= 0 {
				px = 10000
			}
			last[id] = px
		}

		t := time.NewTicker(f.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for _, id := range securityIDs {
					px := last[id]
					// шаг до ±0.5% от цены
					step := px / 200
					if step < 1 {
						step = 1
					}
					px += rnd.Int63n(2*step+1) - step
					if px < 2 {
						px = 2
					}
					last[id] = px

					q := models.Quote{
						SecurityID: id,
						Ask:        px + 1,
						Bid:        px - 1,
						Last:       px,
						At:         time.Now(),
					}
					select {
					case <-ctx.Done():
						return
					case ch <- q:
					}
				}
			}
		}
	}()
	return ch
}
