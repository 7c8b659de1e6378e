package models

import "errors"

// Таксономия ошибок ядра. Per-pair и per-account ошибки изолированы
// и никогда не валят цикл целиком.
var (
	// ErrUnknownSide — нарушение контракта вызывающей стороны (InvalidPolicy).
	ErrUnknownSide = errors.New("unknown order side")

	// ErrQuoteUnavailable — котировка не получена, пара скипается до следующего цикла.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrQuoteStale — котировка в кеше старше допустимого TTL.
	ErrQuoteStale = errors.New("quote stale")

	// ErrStaleAccount — реконсилер не дошёл до FRESH за отведённое время.
	ErrStaleAccount = errors.New("account snapshot stale")

	// ErrDuplicateInFlight — по паре уже висит неразрешённый ордер.
	ErrDuplicateInFlight = errors.New("duplicate in-flight intent")

	// ErrGatewayRejected — брокер отклонил ордер; ретраев со стороны ядра нет.
	ErrGatewayRejected = errors.New("gateway rejected order")

	// ErrNotFound — нет такой записи в сторе.
	ErrNotFound = errors.New("not found")
)
