package models

import (
	"time"
)

// AssetBalance is the held amount of one asset.
type AssetBalance struct {
	Asset  string
	Free   float64
	Locked float64
}

func (b AssetBalance) Total() float64 {
	return b.Free + b.Locked
}

// Balance is a point-in-time snapshot of account holdings, keyed by asset.
// Venues omit zero balances.
type Balance struct {
	Venue  string
	Assets map[string]AssetBalance
	Time   time.Time
}

// Order is a read-only snapshot of an open order. The engine never places
// or manages orders; it only observes them.
type Order struct {
	ID        string
	Symbol    string
	Side      string
	Type      string
	Price     float64
	Quantity  float64
	Status    string
	CreatedAt time.Time
}

// OrderBookLevel is one aggregated price level of a depth snapshot.
type OrderBookLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook is a depth snapshot with best bid/ask first.
type OrderBook struct {
	Symbol string
	Bids   []OrderBookLevel
	Asks   []OrderBookLevel
	Time   time.Time
}

// BestBid returns the top bid level, false when the book side is empty.
func (b OrderBook) BestBid() (OrderBookLevel, bool) {
	if len(b.Bids) == 0 {
		return OrderBookLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the top ask level, false when the book side is empty.
func (b OrderBook) BestAsk() (OrderBookLevel, bool) {
	if len(b.Asks) == 0 {
		return OrderBookLevel{}, false
	}
	return b.Asks[0], true
}
