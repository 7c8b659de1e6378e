package models

// Side как в ордерах брокера: "BUY"/"SELL".
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// PriceMode selects the base price reference for an order.
type PriceMode string

const (
	PriceModeBestAsk PriceMode = "best_ask"
	PriceModeBestBid PriceMode = "best_bid"
	PriceModeMid     PriceMode = "mid_price"
	PriceModeMarket  PriceMode = "market"
	PriceModeDefault PriceMode = "default"
)

// PricePolicy — базовая цена + смещение. Offset может быть отрицательным
// (улучшение цены) или положительным (приоритет исполнения), в том числе дробным.
type PricePolicy struct {
	Mode   PriceMode `json:"mode"`
	Offset float64   `json:"offset"`
}

// OrderPricing holds the per-side pricing policy of a strategy.
type OrderPricing struct {
	Buy  PricePolicy `json:"buy"`
	Sell PricePolicy `json:"sell"`
}

// Strategy — пользовательская стратегия. Ядро читает её как снапшот,
// мутации только через внешние операции управления стратегиями.
type Strategy struct {
	ID            int64
	OwnerID       int64
	Name          string
	Active        bool
	AutoExecute   bool
	AllocationPct float64 // 0..100
	Securities    []string
	Pricing       OrderPricing

	// EntryThreshold — порог actionability для этой стратегии.
	// 0 => берём глобальный из конфига.
	EntryThreshold float64

	// Conditions — opaque-набор условий входа (JSON), его интерпретирует Scorer.
	Conditions []byte
}

// Threshold returns the effective actionability threshold.
func (s *Strategy) Threshold(global float64) float64 {
	if s.EntryThreshold > 0 {
		return s.EntryThreshold
	}
	return global
}
