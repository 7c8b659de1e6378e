package models

import "time"

// AccountBalance — одна строка на счёт. Пишет её только реконсилер
// после успешного RefreshAccountState.
type AccountBalance struct {
	AccountID     string
	TotalCash     int64
	AvailableCash int64 // TotalCash минус зарезервированное под открытые ордера/позиции
	UpdatedAt     time.Time
}

// PortfolioPosition — открытая позиция по бумаге.
type PortfolioPosition struct {
	AccountID  string
	SecurityID string
	Quantity   int64
	AvgCost    int64
}

// AllocationResult — номинальный бюджет стратегии на цикл.
type AllocationResult struct {
	StrategyID int64
	Budget     int64
}
