package models

import "time"

// CycleError — одна изолированная ошибка внутри цикла.
type CycleError struct {
	Stage      string // reconcile | monitor | dispatch
	StrategyID int64
	SecurityID string
	Err        error
}

func (e CycleError) Error() string {
	if e.SecurityID != "" {
		return e.Stage + " " + e.SecurityID + ": " + e.Err.Error()
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e CycleError) Unwrap() error { return e.Err }

// CycleReport — итог одного прогона RunCycle для оператора/шедулера.
type CycleReport struct {
	StartedAt  time.Time
	Evaluated  int // сколько пар реально оценили
	Candidates int // сколько прошло порог actionability
	Dispatched int // сколько ордеров ушло в шлюз
	Skipped    int // кандидаты, отброшенные с причиной
	Errors     []CycleError
}
