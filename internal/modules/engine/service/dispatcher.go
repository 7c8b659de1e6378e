package service

import (
	"context"
	"sync"
	"time"

	"auto_trader/internal/helper"
	"auto_trader/internal/models"
	brokersvc "auto_trader/internal/modules/broker/service"
	"auto_trader/internal/modules/config"
	"auto_trader/internal/notify"
	"auto_trader/pkg/logger"

	"github.com/pkg/errors"
)

// Dispatcher собирает OrderIntent из кандидата + бюджета + цены и отдаёт
// его шлюзу. Гарантия: не больше одного неразрешённого ордера на пару —
// коллизия дропается с логом, не встаёт в очередь.
type Dispatcher struct {
	cfg      *config.Config
	gateway  brokersvc.Gateway
	notifier notify.Notifier

	mu          sync.Mutex
	inflight    map[string]string // pairKey -> orderID ("" пока ack не пришёл)
	orders      map[string]string // orderID -> pairKey, для Resolve по событию
	cooldownTil map[string]time.Time

	now func() time.Time
}

// NewDispatcher instance
func NewDispatcher(cfg *config.Config, gw brokersvc.Gateway, n notify.Notifier) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		gateway:     gw,
		notifier:    n,
		inflight:    make(map[string]string),
		orders:      make(map[string]string),
		cooldownTil: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Dispatch обрабатывает кандидатов одного цикла против одного снапшота
// счёта. Расход против живого остатка считается первым пришедшим —
// remaining декрементируется на каждый отправленный buy.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	now time.Time,
	cands []Candidate,
	allocs []models.AllocationResult,
	snap Snapshot,
) (dispatched, skipped int, errs []models.CycleError) {

	budgets := make(map[int64]int64, len(allocs))
	for _, a := range allocs {
		budgets[a.StrategyID] = a.Budget
	}

	remaining := snap.Balance.AvailableCash

	for _, cand := range cands {
		ok, err := d.dispatchOne(ctx, now, cand, budgets[cand.Strategy.ID], snap, &remaining)
		switch {
		case err != nil:
			errs = append(errs, models.CycleError{
				Stage:      "dispatch",
				StrategyID: cand.Strategy.ID,
				SecurityID: cand.Record.SecurityID,
				Err:        err,
			})
			skipped++
		case ok:
			dispatched++
		default:
			skipped++
		}
	}
	return dispatched, skipped, errs
}

// dispatchOne: (false, nil) — кандидат отброшен по правилу, причина уже в логе.
func (d *Dispatcher) dispatchOne(
	ctx context.Context,
	now time.Time,
	cand Candidate,
	budget int64,
	snap Snapshot,
	remaining *int64,
) (bool, error) {

	st := cand.Strategy
	sec := cand.Record.SecurityID
	pos, held := snap.Positions[sec]

	// сторона: выход приоритетнее входа, выход требует позиции
	var side models.Side
	switch {
	case cand.Exit && held && pos.Quantity > 0:
		side = models.SideSell
	case cand.Exit:
		logger.Info("[DISPATCH] skip %s/%s: exit signal without position", st.Name, sec)
		return false, nil
	default:
		side = models.SideBuy
	}

	if side == models.SideBuy {
		// оценка деактивированной/не профинансированной стратегии могла
		// завершиться уже после снятия бюджета — нулевой бюджет гасит её тут
		if budget <= 0 {
			logger.Info("[DISPATCH] skip %s/%s: zero budget", st.Name, sec)
			return false, nil
		}
		// бумага уже в портфеле на таргет-вес или выше — дубль не покупаем
		if held && pos.Quantity*cand.Quote.Last >= budget {
			logger.Info("[DISPATCH] skip %s/%s: already held at target weight", st.Name, sec)
			return false, nil
		}
	}

	policy := st.Pricing.Buy
	if side == models.SideSell {
		policy = st.Pricing.Sell
	}

	px, err := ComputePrice(cand.Quote, policy, side)
	if err != nil {
		// программная/конфигурационная ошибка — громко, ордера нет
		return false, err
	}

	// сайзинг: для MARKET опорной ценой служит last
	refPrice := px.Price
	if px.Method == models.OrderMethodMarket {
		refPrice = cand.Quote.Last
	}
	if refPrice <= 0 {
		return false, errors.Errorf("non-positive price %d for %s/%s", refPrice, st.Name, sec)
	}

	var qty int64
	if side == models.SideBuy {
		qty = helper.FloorDiv(budget, refPrice)
	} else {
		qty = int64(float64(pos.Quantity) * d.cfg.SellFraction)
	}
	if qty <= 0 {
		logger.Info("[DISPATCH] skip %s/%s: qty=0 (budget=%d price=%d)", st.Name, sec, budget, refPrice)
		return false, nil
	}

	key := helper.PairKey(st.ID, sec)

	d.mu.Lock()
	if until, ok := d.cooldownTil[key]; ok && now.Before(until) {
		d.mu.Unlock()
		logger.Info("[DISPATCH] skip %s/%s: cooldown until %s", st.Name, sec, until.Format(time.RFC3339))
		return false, nil
	}
	if _, ok := d.inflight[key]; ok {
		d.mu.Unlock()
		logger.Warn("[DISPATCH] drop %s/%s: in-flight intent unresolved", st.Name, sec)
		return false, errors.Wrapf(models.ErrDuplicateInFlight, "%s/%s", st.Name, sec)
	}
	if side == models.SideBuy {
		cost := refPrice * qty
		if cost > *remaining {
			// клампим к живому остатку цикла
			qty = helper.FloorDiv(*remaining, refPrice)
			cost = refPrice * qty
		}
		if qty <= 0 {
			d.mu.Unlock()
			logger.Info("[DISPATCH] skip %s/%s: insufficient cash (remaining=%d)", st.Name, sec, *remaining)
			return false, nil
		}
		*remaining -= cost
	}
	d.inflight[key] = ""
	d.mu.Unlock()

	intent := models.OrderIntent{
		StrategyID: st.ID,
		SecurityID: sec,
		Side:       side,
		Method:     px.Method,
		Price:      px.Price,
		Quantity:   qty,
		SignalAt:   now,
	}

	if !st.AutoExecute {
		// стратегия без автоисполнения: оператору подсказку, ордер не шлём
		d.release(key, now)
		d.notifier.Sendf("💡 [%s] %s %s x%d @ %d (auto-execute off)",
			sec, st.Name, side, qty, refPrice)
		return false, nil
	}

	ack, err := d.gateway.SubmitOrder(ctx, intent)
	if err != nil {
		d.release(key, now)
		return false, errors.Wrap(err, "submit order")
	}

	switch ack.Status {
	case models.OrderAckRejected:
		// ретраев нет: цена/количество могли устареть
		d.release(key, now)
		d.notifier.Sendf("⛔️ [%s] %s %s отклонён брокером: %s", sec, st.Name, side, ack.Reason)
		return false, errors.Wrap(models.ErrGatewayRejected, ack.Reason)
	case models.OrderAckFilled:
		d.release(key, now)
	default:
		// accepted: пара остаётся in-flight до события из шлюза
		d.mu.Lock()
		d.inflight[key] = ack.OrderID
		d.orders[ack.OrderID] = key
		d.mu.Unlock()
	}

	logger.Info("[DISPATCH] %s %s %s x%d method=%s price=%d order=%s",
		st.Name, sec, side, qty, px.Method, px.Price, ack.OrderID)
	d.notifier.Sendf("✅ [%s] %s %s x%d @ %d (%s)", sec, st.Name, side, qty, refPrice, ack.OrderID)
	return true, nil
}

// release снимает in-flight и ставит кулдаун по паре.
func (d *Dispatcher) release(key string, now time.Time) {
	d.mu.Lock()
	delete(d.inflight, key)
	if d.cfg.CooldownPerPair > 0 {
		d.cooldownTil[key] = now.Add(d.cfg.CooldownPerPair)
	}
	d.mu.Unlock()
}

// OnOrderEvent разрешает in-flight пару по терминальному событию шлюза.
func (d *Dispatcher) OnOrderEvent(ev models.OrderEvent) {
	d.mu.Lock()
	key, ok := d.orders[ev.OrderID]
	if ok {
		delete(d.orders, ev.OrderID)
		delete(d.inflight, key)
		if d.cfg.CooldownPerPair > 0 {
			d.cooldownTil[key] = d.now().Add(d.cfg.CooldownPerPair)
		}
	}
	d.mu.Unlock()

	if ev.Kind == models.OrderEventRejected {
		d.notifier.Sendf("⛔️ order %s rejected (%s)", ev.OrderID, ev.SecurityID)
	}
}

// InFlightCount — для health-лога.
func (d *Dispatcher) InFlightCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
