package models

import (
	"time"
)

// Candle is one closed OHLCV bar. Candles are immutable once fetched.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// CandleSeries is an ascending sequence of closed candles for one
// symbol/timeframe pair. It is fetched fresh every evaluation cycle and
// discarded afterwards.
type CandleSeries struct {
	Symbol    string
	Timeframe Timeframe
	Candles   []Candle
}

func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// Closes projects the closing prices, the primary indicator input.
func (s CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent candle, false on an empty series.
func (s CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}
