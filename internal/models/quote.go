package models

import "time"

// Quote — лучший bid/ask + последняя цена по бумаге.
// Цены целые (минимальная единица валюты).
type Quote struct {
	SecurityID string
	Ask        int64
	Bid        int64
	Last       int64 // displayed / last trade price, used as mid
	At         time.Time
}
