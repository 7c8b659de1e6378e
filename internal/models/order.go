package models

import "time"

// OrderMethod — LIMIT с ценой либо MARKET без цены.
type OrderMethod string

const (
	OrderMethodLimit  OrderMethod = "LIMIT"
	OrderMethodMarket OrderMethod = "MARKET"
)

// OrderPrice is the result of the price calculator. Price is meaningless
// for MARKET orders and must never reach the gateway.
type OrderPrice struct {
	Method OrderMethod
	Price  int64
}

// OrderIntent — полностью посчитанный, но ещё не подтверждённый ордер.
// После SubmitOrder владение переходит шлюзу.
type OrderIntent struct {
	StrategyID int64
	SecurityID string
	Side       Side
	Method     OrderMethod
	Price      int64 // только для LIMIT
	Quantity   int64
	SignalAt   time.Time
}

// OrderAckStatus — ответ шлюза на сабмит.
type OrderAckStatus string

const (
	OrderAckAccepted OrderAckStatus = "accepted" // принят, ещё не исполнен
	OrderAckFilled   OrderAckStatus = "filled"
	OrderAckRejected OrderAckStatus = "rejected"
)

type OrderAck struct {
	OrderID string
	Status  OrderAckStatus
	Reason  string // причина reject
}

// Final reports whether the ack resolves the intent.
func (a OrderAck) Final() bool {
	return a.Status == OrderAckFilled || a.Status == OrderAckRejected
}

// OrderEventKind — терминальные события по ранее принятым ордерам.
type OrderEventKind string

const (
	OrderEventFilled   OrderEventKind = "filled"
	OrderEventRejected OrderEventKind = "rejected"
	OrderEventCanceled OrderEventKind = "canceled"
)

// OrderEvent — fill/reject по ордеру, приходит от шлюза асинхронно.
type OrderEvent struct {
	OrderID    string
	StrategyID int64
	SecurityID string
	Kind       OrderEventKind
	FillPrice  int64
	FillQty    int64
	At         time.Time
}
