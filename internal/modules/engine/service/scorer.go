package service

import (
	"context"

	"auto_trader/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Scorer — внешняя функция скоринга условий входа/выхода.
// Ядро трактует её как opaque: число 0..100 плюс флаг выхода.
type Scorer interface {
	Score(ctx context.Context, st models.Strategy, q models.Quote) (score float64, exit bool, err error)
}

// condition — один предикат из блоба Strategy.Conditions.
type condition struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

// ConditionScorer считает долю выполненных entry-условий стратегии.
// exit_* условия в score не входят, любое выполненное даёт сигнал выхода.
type ConditionScorer struct{}

// NewConditionScorer instance
func NewConditionScorer() *ConditionScorer { return &ConditionScorer{} }

func (s *ConditionScorer) Score(ctx context.Context, st models.Strategy, q models.Quote) (float64, bool, error) {
	if len(st.Conditions) == 0 {
		return 0, false, nil
	}

	var conds []condition
	if err := sonic.Unmarshal(st.Conditions, &conds); err != nil {
		return 0, false, errors.Wrap(err, "decode conditions")
	}

	var entryTotal, entryMatched int
	exit := false

	for _, c := range conds {
		switch c.Type {
		case "price_below":
			entryTotal++
			if q.Last < c.Value {
				entryMatched++
			}
		case "price_above":
			entryTotal++
			if q.Last > c.Value {
				entryMatched++
			}
		case "spread_lte":
			entryTotal++
			if q.Ask-q.Bid <= c.Value {
				entryMatched++
			}
		case "exit_above":
			if q.Last > c.Value {
				exit = true
			}
		case "exit_below":
			if q.Last < c.Value {
				exit = true
			}
		default:
			// незнакомое условие считаем невыполненным, но не валим оценку
			entryTotal++
		}
	}

	if entryTotal == 0 {
		return 0, exit, nil
	}
	return float64(entryMatched) / float64(entryTotal) * 100.0, exit, nil
}
