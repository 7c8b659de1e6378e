package service

import (
	"context"
	"time"

	"auto_trader/internal/models"
	"auto_trader/internal/modules/config"
	storesvc "auto_trader/internal/modules/store/service"
	"auto_trader/internal/notify"
	"auto_trader/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// Engine — единая точка входа ядра: один вызов RunCycle на тик шедулера.
type Engine struct {
	cfg        *config.Config
	store      storesvc.Store
	monitor    *Monitor
	dispatcher *Dispatcher
	reconciler *Reconciler
	notifier   notify.Notifier
}

// NewEngine instance
func NewEngine(
	cfg *config.Config,
	st storesvc.Store,
	m *Monitor,
	d *Dispatcher,
	r *Reconciler,
	n notify.Notifier,
) *Engine {
	return &Engine{
		cfg:        cfg,
		store:      st,
		monitor:    m,
		dispatcher: d,
		reconciler: r,
		notifier:   n,
	}
}

// RunCycle: refresh счёта → бюджеты → скан пар → диспатч.
// Аллокатор и реконсилер отрабатывают до мониторинга — барьер цикла:
// ни один диспатч не видит не-FRESH снапшот.
func (e *Engine) RunCycle(ctx context.Context, now time.Time) models.CycleReport {
	span, ctx := opentracing.StartSpanFromContext(ctx, "run_cycle")
	defer span.Finish()

	report := models.CycleReport{StartedAt: now}

	// 1) барьер: нужен FRESH-снапшот счёта, иначе цикл скипаем целиком —
	// против неизвестного кеша не торгуем
	snap, err := e.reconciler.EnsureFresh(ctx)
	if err != nil {
		report.Errors = append(report.Errors, models.CycleError{Stage: "reconcile", Err: err})
		logger.Warn("[CYCLE] skipped: %v", err)
		e.notifier.Sendf("⚠️ cycle skipped: account snapshot not fresh")
		return report
	}

	strategies, err := e.store.ListActiveStrategies(ctx)
	if err != nil {
		report.Errors = append(report.Errors, models.CycleError{Stage: "reconcile", Err: err})
		logger.Error("[CYCLE] list strategies: %v", err)
		return report
	}
	if len(strategies) == 0 {
		return report
	}

	// 2) номинальные бюджеты против одного снапшота
	allocSpan := opentracing.StartSpan("allocate", opentracing.ChildOf(span.Context()))
	allocs := Allocate(snap.Balance, strategies)
	allocSpan.Finish()

	// 3) скан пар пулом воркеров
	monSpan := opentracing.StartSpan("monitor_scan", opentracing.ChildOf(span.Context()))
	cands, evaluated, monErrs := e.monitor.Scan(ctx, now, strategies)
	monSpan.Finish()

	report.Evaluated = evaluated
	report.Candidates = len(cands)
	report.Errors = append(report.Errors, monErrs...)

	// 4) диспатч кандидатов
	dispSpan := opentracing.StartSpan("dispatch", opentracing.ChildOf(span.Context()))
	dispatched, skipped, dispErrs := e.dispatcher.Dispatch(ctx, now, cands, allocs, snap)
	dispSpan.Finish()

	report.Dispatched = dispatched
	report.Skipped = skipped
	report.Errors = append(report.Errors, dispErrs...)

	logger.Info("[CYCLE] evaluated=%d candidates=%d dispatched=%d skipped=%d errors=%d",
		report.Evaluated, report.Candidates, report.Dispatched, report.Skipped, len(report.Errors))

	if report.Dispatched > 0 || len(report.Errors) > 0 {
		e.notifier.Sendf("🔄 cycle: evaluated=%d candidates=%d dispatched=%d skipped=%d errors=%d",
			report.Evaluated, report.Candidates, report.Dispatched, report.Skipped, len(report.Errors))
	}

	return report
}

// HealthLoop шлёт оператору периодический пульс до отмены контекста.
func (e *Engine) HealthLoop(ctx context.Context) {
	if e.cfg.HealthInterval <= 0 {
		return
	}
	ticker := time.NewTicker(e.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.notifier.Sendf("🩺 HEALTH | state=%s | inflight=%d | balance_age=%s",
				e.reconciler.State(), e.dispatcher.InFlightCount(), e.reconciler.BalanceAge().Round(time.Second))
		}
	}
}
