package service

import (
	"auto_trader/internal/helper"
	"auto_trader/internal/models"
)

// Allocate раздаёт номинальные бюджеты: floor(available * pct / 100)
// против одного и того же снапшота available_cash. Суммы процентов
// по стратегиям ядро не валидирует — фактический расход против живого
// кеша контролирует диспетчер при сабмите.
func Allocate(bal models.AccountBalance, strategies []models.Strategy) []models.AllocationResult {
	out := make([]models.AllocationResult, 0, len(strategies))
	for _, st := range strategies {
		var budget int64
		if st.Active && bal.AvailableCash > 0 {
			budget = helper.FloorPct(bal.AvailableCash, st.AllocationPct)
			if budget > bal.AvailableCash {
				budget = bal.AvailableCash
			}
		}
		out = append(out, models.AllocationResult{
			StrategyID: st.ID,
			Budget:     budget,
		})
	}
	return out
}
