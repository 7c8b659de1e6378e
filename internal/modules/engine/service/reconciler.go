package service

import (
	"context"
	"sync"
	"time"

	brokersvc "auto_trader/internal/modules/broker/service"
	"auto_trader/internal/modules/config"
	storesvc "auto_trader/internal/modules/store/service"
	"auto_trader/pkg/logger"

	"auto_trader/internal/models"

	"github.com/pkg/errors"
)

// State реконсилера.
type State string

const (
	StateFresh      State = "FRESH"
	StateStale      State = "STALE"
	StateRefreshing State = "REFRESHING"
)

// Snapshot — согласованная копия баланса и позиций на цикл.
// Читатели внутри цикла видят ровно этот снапшот, не живую ссылку.
type Snapshot struct {
	Balance   models.AccountBalance
	Positions map[string]models.PortfolioPosition // key = securityID
}

// Reconciler следит за свежестью локального вида счёта.
// Единственный писатель AccountBalance/PortfolioPosition; аллокатор и
// диспетчер — читатели через Snapshot.
type Reconciler struct {
	cfg     *config.Config
	store   storesvc.Store
	gateway brokersvc.Gateway

	mu         sync.Mutex
	last       Snapshot
	have       bool
	staleMark  bool // форс-инвалидация после fill'а
	refreshing bool

	now func() time.Time
}

// NewReconciler instance
func NewReconciler(cfg *config.Config, st storesvc.Store, gw brokersvc.Gateway) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		store:   st,
		gateway: gw,
		now:     time.Now,
	}
}

// State — текущее состояние FSM: FRESH → STALE по возрасту снапшота,
// STALE → REFRESHING → FRESH на цикле обновления.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Reconciler) stateLocked() State {
	if r.refreshing {
		return StateRefreshing
	}
	if !r.have || r.staleMark {
		return StateStale
	}
	if r.now().Sub(r.last.Balance.UpdatedAt) > r.cfg.StalenessThreshold {
		return StateStale
	}
	return StateFresh
}

// MarkStale форсит обновление на следующем цикле (после fill'а кеш и
// позиции уже другие).
func (r *Reconciler) MarkStale() {
	r.mu.Lock()
	r.staleMark = true
	r.mu.Unlock()
}

// EnsureFresh отдаёт FRESH-снапшот, при необходимости выполнив refresh
// в пределах MaxFreshWait. На таймауте/ошибке прежний снапшот и штамп
// не трогаем — вернётся ErrStaleAccount и цикл будет скипнут.
func (r *Reconciler) EnsureFresh(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()

	// при старте пробуем поднять последний снапшот из стора:
	// если он ещё свежий, ходить к брокеру не нужно
	if !r.have {
		r.loadFromStoreLocked(ctx)
	}

	if r.stateLocked() == StateFresh {
		snap := copySnapshotLocked(r.last)
		r.mu.Unlock()
		return snap, nil
	}

	r.refreshing = true
	r.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, r.cfg.MaxFreshWait)
	defer cancel()

	bal, positions, err := r.gateway.RefreshAccountState(rctx, r.cfg.AccountID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshing = false

	if err != nil {
		logger.Error("[RECONCILE] refresh failed: %v", err)
		return Snapshot{}, errors.Wrap(models.ErrStaleAccount, err.Error())
	}

	bal.UpdatedAt = r.now()
	if bal.AvailableCash > bal.TotalCash {
		bal.AvailableCash = bal.TotalCash
	}

	if err := r.store.SaveAccountState(ctx, bal, positions); err != nil {
		// стор догонит на следующем цикле, в памяти снапшот уже авторитетный
		logger.Error("[RECONCILE] persist account state: %v", err)
	}

	r.last = Snapshot{
		Balance:   bal,
		Positions: make(map[string]models.PortfolioPosition, len(positions)),
	}
	for _, p := range positions {
		r.last.Positions[p.SecurityID] = p
	}
	r.have = true
	r.staleMark = false

	logger.Info("[RECONCILE] FRESH cash=%d positions=%d", bal.AvailableCash, len(positions))
	return copySnapshotLocked(r.last), nil
}

func (r *Reconciler) loadFromStoreLocked(ctx context.Context) {
	bal, err := r.store.GetAccountBalance(ctx, r.cfg.AccountID)
	if err != nil {
		return
	}
	positions, err := r.store.GetPositions(ctx, r.cfg.AccountID)
	if err != nil {
		return
	}
	r.last = Snapshot{
		Balance:   bal,
		Positions: make(map[string]models.PortfolioPosition, len(positions)),
	}
	for _, p := range positions {
		r.last.Positions[p.SecurityID] = p
	}
	r.have = true
}

// BalanceAge — возраст снапшота для health-лога.
func (r *Reconciler) BalanceAge() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.have {
		return -1
	}
	return r.now().Sub(r.last.Balance.UpdatedAt)
}

func copySnapshotLocked(s Snapshot) Snapshot {
	out := Snapshot{
		Balance:   s.Balance,
		Positions: make(map[string]models.PortfolioPosition, len(s.Positions)),
	}
	for k, v := range s.Positions {
		out.Positions[k] = v
	}
	return out
}
