package models

import "time"

// MonitoringRecord — последний результат оценки пары (стратегия, бумага).
// Одна логическая строка на пару, upsert на каждом цикле, история не хранится.
type MonitoringRecord struct {
	StrategyID  int64
	SecurityID  string
	Score       float64 // 0..100
	NearEntry   bool
	EvaluatedAt time.Time
}
