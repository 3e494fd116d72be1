package models

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the shared candle interval enumeration. Venue-specific
// interval strings are normalized to it before any data reaches the engine.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

var timeframeDurations = map[Timeframe]time.Duration{
	Timeframe1m:  time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe1d:  24 * time.Hour,
}

// venue spellings of the same intervals, e.g. Alpaca's "15Min" or "1H"
var timeframeAliases = map[string]Timeframe{
	"1min":  Timeframe1m,
	"5min":  Timeframe5m,
	"15min": Timeframe15m,
	"30min": Timeframe30m,
	"60m":   Timeframe1h,
	"1day":  Timeframe1d,
}

// ParseTimeframe normalizes an interval string to a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := timeframeDurations[Timeframe(key)]; ok {
		return Timeframe(key), nil
	}
	if tf, ok := timeframeAliases[key]; ok {
		return tf, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

func (tf Timeframe) String() string {
	return string(tf)
}

// Valid reports whether tf is one of the supported intervals.
func (tf Timeframe) Valid() bool {
	_, ok := timeframeDurations[tf]
	return ok
}

// Duration returns the wall-clock length of one candle, 0 for an
// unsupported timeframe.
func (tf Timeframe) Duration() time.Duration {
	return timeframeDurations[tf]
}
