package service

import (
	"context"
	"testing"
	"time"

	"auto_trader/internal/models"
	quotes "auto_trader/internal/modules/quotes/service"

	"github.com/stretchr/testify/require"
)

func paperWithQuotes(cash int64, qs ...models.Quote) *Paper {
	cache := quotes.NewCache(0)
	for _, q := range qs {
		cache.Put(q)
	}
	return NewPaper("paper", cash, cache)
}

func TestPaperBuyFillsAndDebitsCash(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		StrategyID: 1,
		SecurityID: "005930",
		Side:       models.SideBuy,
		Method:     models.OrderMethodLimit,
		Price:      10050,
		Quantity:   29,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderAckFilled, ack.Status)
	require.NotEmpty(t, ack.OrderID)

	bal, positions, err := p.RefreshAccountState(context.Background(), "paper")
	require.NoError(t, err)
	require.EqualValues(t, 1_000_000-29*10050, bal.AvailableCash)
	require.Len(t, positions, 1)
	require.EqualValues(t, 29, positions[0].Quantity)
	require.EqualValues(t, 10050, positions[0].AvgCost)
}

func TestPaperAverageCost(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	for _, px := range []int64{10000, 11000} {
		_, err := p.SubmitOrder(context.Background(), models.OrderIntent{
			SecurityID: "005930",
			Side:       models.SideBuy,
			Method:     models.OrderMethodLimit,
			Price:      px,
			Quantity:   10,
		})
		require.NoError(t, err)
	}

	_, positions, err := p.RefreshAccountState(context.Background(), "paper")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	require.EqualValues(t, 20, positions[0].Quantity)
	require.EqualValues(t, 10500, positions[0].AvgCost)
}

func TestPaperSellClosesPosition(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	_, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "005930", Side: models.SideBuy, Method: models.OrderMethodLimit, Price: 10000, Quantity: 10,
	})
	require.NoError(t, err)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "005930", Side: models.SideSell, Method: models.OrderMethodLimit, Price: 10500, Quantity: 10,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderAckFilled, ack.Status)

	bal, positions, err := p.RefreshAccountState(context.Background(), "paper")
	require.NoError(t, err)
	require.Empty(t, positions)
	require.EqualValues(t, 1_000_000+10*500, bal.AvailableCash)
}

func TestPaperMarketFillUsesLast(t *testing.T) {
	p := paperWithQuotes(1_000_000,
		models.Quote{SecurityID: "035720", Ask: 10100, Bid: 10050, Last: 10075, At: time.Now()})

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "035720", Side: models.SideBuy, Method: models.OrderMethodMarket, Quantity: 5,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderAckFilled, ack.Status)

	bal, _, err := p.RefreshAccountState(context.Background(), "paper")
	require.NoError(t, err)
	require.EqualValues(t, 1_000_000-5*10075, bal.AvailableCash)
}

func TestPaperMarketWithoutQuoteRejected(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "035720", Side: models.SideBuy, Method: models.OrderMethodMarket, Quantity: 5,
	})
	require.ErrorIs(t, err, models.ErrGatewayRejected)
	require.Equal(t, models.OrderAckRejected, ack.Status)
}

func TestPaperInsufficientCashRejected(t *testing.T) {
	p := paperWithQuotes(100)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "005930", Side: models.SideBuy, Method: models.OrderMethodLimit, Price: 10000, Quantity: 1,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderAckRejected, ack.Status)

	bal, _, err := p.RefreshAccountState(context.Background(), "paper")
	require.NoError(t, err)
	require.EqualValues(t, 100, bal.AvailableCash)
}

func TestPaperSellWithoutPositionRejected(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		SecurityID: "005930", Side: models.SideSell, Method: models.OrderMethodLimit, Price: 10000, Quantity: 1,
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderAckRejected, ack.Status)
}

func TestPaperEmitsFillEvent(t *testing.T) {
	p := paperWithQuotes(1_000_000)

	ack, err := p.SubmitOrder(context.Background(), models.OrderIntent{
		StrategyID: 7, SecurityID: "005930", Side: models.SideBuy, Method: models.OrderMethodLimit, Price: 10000, Quantity: 3,
	})
	require.NoError(t, err)

	select {
	case ev := <-p.Events():
		require.Equal(t, ack.OrderID, ev.OrderID)
		require.Equal(t, models.OrderEventFilled, ev.Kind)
		require.EqualValues(t, 7, ev.StrategyID)
		require.EqualValues(t, 10000, ev.FillPrice)
		require.EqualValues(t, 3, ev.FillQty)
	case <-time.After(time.Second):
		t.Fatal("no fill event")
	}
}
