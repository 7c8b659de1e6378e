package service

import (
	"testing"

	"auto_trader/internal/models"

	"github.com/stretchr/testify/require"
)

var testQuote = models.Quote{
	SecurityID: "005930",
	Ask:        10100,
	Bid:        10050,
	Last:       10075,
}

func TestComputePriceBestAskWithOffset(t *testing.T) {
	px, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeBestAsk, Offset: -50}, models.SideBuy)
	require.NoError(t, err)
	require.Equal(t, models.OrderMethodLimit, px.Method)
	require.EqualValues(t, 10050, px.Price)
}

func TestComputePriceBestBid(t *testing.T) {
	px, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeBestBid, Offset: 10}, models.SideSell)
	require.NoError(t, err)
	require.EqualValues(t, 10060, px.Price)

	// best_bid не привязан к стороне: политика может ценить покупку от bid
	px, err = ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeBestBid}, models.SideBuy)
	require.NoError(t, err)
	require.EqualValues(t, 10050, px.Price)
}

func TestComputePriceMid(t *testing.T) {
	px, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeMid}, models.SideBuy)
	require.NoError(t, err)
	require.EqualValues(t, 10075, px.Price)
}

func TestComputePriceMarketIgnoresQuoteAndOffset(t *testing.T) {
	for _, side := range []models.Side{models.SideBuy, models.SideSell} {
		px, err := ComputePrice(testQuote,
			models.PricePolicy{Mode: models.PriceModeMarket, Offset: 999}, side)
		require.NoError(t, err)
		require.Equal(t, models.OrderMethodMarket, px.Method)
		require.EqualValues(t, 0, px.Price)
	}
}

func TestComputePriceDefaultIsAsymmetric(t *testing.T) {
	buy, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeDefault, Offset: 5}, models.SideBuy)
	require.NoError(t, err)
	require.EqualValues(t, 10105, buy.Price)

	sell, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeDefault, Offset: 5}, models.SideSell)
	require.NoError(t, err)
	require.EqualValues(t, 10055, sell.Price)
}

func TestComputePriceUnknownModeFallsBackToDefault(t *testing.T) {
	px, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: "vwap"}, models.SideSell)
	require.NoError(t, err)
	require.EqualValues(t, testQuote.Bid, px.Price)
}

func TestComputePriceUnknownSide(t *testing.T) {
	_, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeBestAsk}, models.Side("HOLD"))
	require.ErrorIs(t, err, models.ErrUnknownSide)
}

func TestComputePriceFractionalOffsetRounds(t *testing.T) {
	px, err := ComputePrice(testQuote,
		models.PricePolicy{Mode: models.PriceModeMid, Offset: 0.5}, models.SideBuy)
	require.NoError(t, err)
	require.EqualValues(t, 10076, px.Price)
}

func TestComputePriceNonPositiveSurfacedUnchanged(t *testing.T) {
	// клампов нет: валидация за диспетчером
	q := models.Quote{Ask: 10, Bid: 8, Last: 9}
	px, err := ComputePrice(q,
		models.PricePolicy{Mode: models.PriceModeBestAsk, Offset: -50}, models.SideBuy)
	require.NoError(t, err)
	require.EqualValues(t, -40, px.Price)
}

func TestComputePriceIdempotent(t *testing.T) {
	policy := models.PricePolicy{Mode: models.PriceModeBestAsk, Offset: -50}
	a, err := ComputePrice(testQuote, policy, models.SideBuy)
	require.NoError(t, err)
	b, err := ComputePrice(testQuote, policy, models.SideBuy)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
