package service

import (
	"context"
	"testing"
	"time"

	"auto_trader/internal/models"

	"github.com/stretchr/testify/require"
)

func TestMemoryListActiveStrategies(t *testing.T) {
	m := NewMemory()
	m.PutStrategy(models.Strategy{ID: 1, Name: "a", Active: true, Securities: []string{"005930"}})
	m.PutStrategy(models.Strategy{ID: 2, Name: "b", Active: false, Securities: []string{"000660"}})

	out, err := m.ListActiveStrategies(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.EqualValues(t, 1, out[0].ID)

	// слайс бумаг — копия, мутация читателем не протекает в стор
	out[0].Securities[0] = "mutated"
	again, err := m.ListActiveStrategies(context.Background())
	require.NoError(t, err)
	require.Equal(t, "005930", again[0].Securities[0])
}

func TestMemoryAccountStateRoundTrip(t *testing.T) {
	m := NewMemory()

	_, err := m.GetAccountBalance(context.Background(), "main")
	require.ErrorIs(t, err, models.ErrNotFound)

	bal := models.AccountBalance{AccountID: "main", TotalCash: 1000, AvailableCash: 700, UpdatedAt: time.Now()}
	positions := []models.PortfolioPosition{
		{AccountID: "main", SecurityID: "005930", Quantity: 3, AvgCost: 100},
	}
	require.NoError(t, m.SaveAccountState(context.Background(), bal, positions))

	got, err := m.GetAccountBalance(context.Background(), "main")
	require.NoError(t, err)
	require.EqualValues(t, 700, got.AvailableCash)

	ps, err := m.GetPositions(context.Background(), "main")
	require.NoError(t, err)
	require.Len(t, ps, 1)

	// SaveAccountState перезаписывает снапшот целиком
	require.NoError(t, m.SaveAccountState(context.Background(), bal, nil))
	ps, err = m.GetPositions(context.Background(), "main")
	require.NoError(t, err)
	require.Empty(t, ps)
}

func TestMemoryMonitoringLastWriterWins(t *testing.T) {
	m := NewMemory()

	first := models.MonitoringRecord{StrategyID: 1, SecurityID: "005930", Score: 90, NearEntry: true, EvaluatedAt: time.Now()}
	require.NoError(t, m.UpsertMonitoringRecord(context.Background(), first))

	second := first
	second.Score = 20
	second.NearEntry = false
	require.NoError(t, m.UpsertMonitoringRecord(context.Background(), second))

	rec, ok := m.GetMonitoringRecord(1, "005930")
	require.True(t, ok)
	require.EqualValues(t, 20, rec.Score)
	require.False(t, rec.NearEntry)
}
