package service

import (
	"context"
	"sync"

	"auto_trader/internal/helper"
	"auto_trader/internal/models"
)

// Memory — стор в памяти: для paper-режима и тестов ядра.
// Читатели получают копии, живых ссылок наружу не отдаём.
type Memory struct {
	mu sync.RWMutex

	strategies map[int64]models.Strategy
	monitoring map[string]models.MonitoringRecord // key = PairKey
	balances   map[string]models.AccountBalance
	positions  map[string][]models.PortfolioPosition // accountID -> positions
}

// NewMemory instance
func NewMemory() *Memory {
	return &Memory{
		strategies: make(map[int64]models.Strategy),
		monitoring: make(map[string]models.MonitoringRecord),
		balances:   make(map[string]models.AccountBalance),
		positions:  make(map[string][]models.PortfolioPosition),
	}
}

// PutStrategy — сидирование стратегий (управление стратегиями вне ядра).
func (m *Memory) PutStrategy(s models.Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[s.ID] = s
}

func (m *Memory) ListActiveStrategies(ctx context.Context) ([]models.Strategy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Strategy, 0, len(m.strategies))
	for _, s := range m.strategies {
		if !s.Active {
			continue
		}
		cp := s
		cp.Securities = append([]string(nil), s.Securities...)
		out = append(out, cp)
	}
	return out, nil
}

func (m *Memory) GetAccountBalance(ctx context.Context, accountID string) (models.AccountBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bal, ok := m.balances[accountID]
	if !ok {
		return models.AccountBalance{}, models.ErrNotFound
	}
	return bal, nil
}

func (m *Memory) GetPositions(ctx context.Context, accountID string) ([]models.PortfolioPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.PortfolioPosition(nil), m.positions[accountID]...), nil
}

func (m *Memory) UpsertMonitoringRecord(ctx context.Context, rec models.MonitoringRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// last-writer-wins: важно только последнее состояние пары
	m.monitoring[helper.PairKey(rec.StrategyID, rec.SecurityID)] = rec
	return nil
}

// GetMonitoringRecord читает последнюю запись по паре.
func (m *Memory) GetMonitoringRecord(strategyID int64, securityID string) (models.MonitoringRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.monitoring[helper.PairKey(strategyID, securityID)]
	return rec, ok
}

func (m *Memory) SaveAccountState(ctx context.Context, bal models.AccountBalance, positions []models.PortfolioPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[bal.AccountID] = bal
	m.positions[bal.AccountID] = append([]models.PortfolioPosition(nil), positions...)
	return nil
}
