package service

import (
	"context"
	"testing"
	"time"

	"auto_trader/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCacheGetFresh(t *testing.T) {
	c := NewCache(10 * time.Second)
	c.Put(models.Quote{SecurityID: "005930", Ask: 10100, Bid: 10050, Last: 10075, At: time.Now()})

	q, err := c.GetQuote(context.Background(), "005930")
	require.NoError(t, err)
	require.EqualValues(t, 10100, q.Ask)
}

func TestCacheUnknownSecurity(t *testing.T) {
	c := NewCache(10 * time.Second)

	_, err := c.GetQuote(context.Background(), "000660")
	require.ErrorIs(t, err, models.ErrQuoteUnavailable)
}

func TestCacheStaleByTTL(t *testing.T) {
	c := NewCache(10 * time.Second)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put(models.Quote{SecurityID: "005930", Last: 10075, At: base})

	_, err := c.GetQuote(context.Background(), "005930")
	require.NoError(t, err)

	// котировка постарела — отдаём ошибку, не протухшую цену
	c.now = func() time.Time { return base.Add(11 * time.Second) }
	_, err = c.GetQuote(context.Background(), "005930")
	require.ErrorIs(t, err, models.ErrQuoteStale)

	// свежий тик реанимирует бумагу
	c.Put(models.Quote{SecurityID: "005930", Last: 10080, At: base.Add(11 * time.Second)})
	q, err := c.GetQuote(context.Background(), "005930")
	require.NoError(t, err)
	require.EqualValues(t, 10080, q.Last)
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewCache(0)
	c.Put(models.Quote{SecurityID: "005930", Last: 10075, At: time.Now().Add(-time.Hour)})

	_, err := c.GetQuote(context.Background(), "005930")
	require.NoError(t, err)
}

func TestCacheRunConsumesFeed(t *testing.T) {
	c := NewCache(time.Minute)

	in := make(chan models.Quote)
	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), in)
		close(done)
	}()

	in <- models.Quote{SecurityID: "005930", Last: 10075, At: time.Now()}
	in <- models.Quote{SecurityID: "005930", Last: 10080, At: time.Now()}
	close(in)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on closed feed")
	}

	q, err := c.GetQuote(context.Background(), "005930")
	require.NoError(t, err)
	require.EqualValues(t, 10080, q.Last)
}
