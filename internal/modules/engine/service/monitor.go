package service

import (
	"context"
	"sync"
	"time"

	"auto_trader/internal/models"
	"auto_trader/internal/modules/config"
	quotes "auto_trader/internal/modules/quotes/service"
	storesvc "auto_trader/internal/modules/store/service"
	"auto_trader/pkg/logger"
)

// Candidate — результат оценки пары вместе с контекстом для диспетчера.
type Candidate struct {
	Strategy models.Strategy
	Quote    models.Quote
	Record   models.MonitoringRecord
	Exit     bool
}

type pairTask struct {
	strategy models.Strategy
	security string
}

// Monitor оценивает каждую пару (стратегия, бумага) раз за цикл.
// Пары независимы, общего mutable-состояния нет — только upsert записи
// по дизъюнктному ключу.
type Monitor struct {
	cfg    *config.Config
	store  storesvc.Store
	quotes quotes.Source
	scorer Scorer
}

// NewMonitor instance
func NewMonitor(cfg *config.Config, st storesvc.Store, q quotes.Source, sc Scorer) *Monitor {
	return &Monitor{cfg: cfg, store: st, quotes: q, scorer: sc}
}

// Scan прогоняет кросс-продукт стратегия×бумага через пул воркеров.
// Ошибка по одной паре не валит цикл: пара скипается до следующего прогона.
func (m *Monitor) Scan(ctx context.Context, now time.Time, strategies []models.Strategy) (cands []Candidate, evaluated int, errs []models.CycleError) {
	tasks := make(chan pairTask)
	go func() {
		defer close(tasks)
		for _, st := range strategies {
			for _, sec := range st.Securities {
				select {
				case <-ctx.Done():
					return
				case tasks <- pairTask{strategy: st, security: sec}:
				}
			}
		}
	}()

	workers := m.cfg.MonitorWorkers
	if workers <= 0 {
		workers = 1
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				cand, err := m.evaluate(ctx, now, t)

				mu.Lock()
				if err != nil {
					errs = append(errs, models.CycleError{
						Stage:      "monitor",
						StrategyID: t.strategy.ID,
						SecurityID: t.security,
						Err:        err,
					})
				} else {
					evaluated++
					if cand.Record.NearEntry || cand.Exit {
						cands = append(cands, cand)
					}
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return cands, evaluated, errs
}

// evaluate — одна пара: котировка, скоринг, upsert записи мониторинга.
func (m *Monitor) evaluate(ctx context.Context, now time.Time, t pairTask) (Candidate, error) {
	qctx, cancel := context.WithTimeout(ctx, m.cfg.QuoteTimeout)
	defer cancel()

	q, err := m.quotes.GetQuote(qctx, t.security)
	if err != nil {
		return Candidate{}, err
	}

	score, exit, err := m.scorer.Score(ctx, t.strategy, q)
	if err != nil {
		return Candidate{}, err
	}

	rec := models.MonitoringRecord{
		StrategyID:  t.strategy.ID,
		SecurityID:  t.security,
		Score:       score,
		NearEntry:   score >= t.strategy.Threshold(m.cfg.EntryThreshold),
		EvaluatedAt: now,
	}

	// last-writer-wins по ключу пары: stale-записи перетираются, не мёржатся
	if err := m.store.UpsertMonitoringRecord(ctx, rec); err != nil {
		return Candidate{}, err
	}

	if rec.NearEntry {
		logger.Info("[MONITOR] %s/%s score=%.1f near-entry", t.strategy.Name, t.security, score)
	}

	return Candidate{Strategy: t.strategy, Quote: q, Record: rec, Exit: exit}, nil
}
