package indicators

import (
	"fmt"
	"math"
)

// CrossSignal reports an EMA crossover at the tail of two aligned series.
type CrossSignal struct {
	Crossed   bool
	Direction int     // 1 bullish, -1 bearish
	Strength  float64 // relative fast/slow separation after the cross
}

// EMA computes the exponential moving average of prices over the given
// period. The value at index period-1 is seeded with the SMA of the first
// period prices; later values use ema[i] = (price-prev)*k + prev with
// k = 2/(period+1). The seeding convention is fixed: downstream numeric
// checks depend on it.
func EMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema: period must be positive, got %d", period)
	}
	if len(prices) < period {
		return nil, insufficientData("ema", period, len(prices))
	}

	ema := warmup(len(prices), period-1)

	// Seed with the initial SMA
	seed := 0.0
	for _, price := range prices[:period] {
		seed += price
	}
	ema[period-1] = seed / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema[i] = EMAStep(prices[i], ema[i-1], multiplier)
	}
	return ema, nil
}

// EMAStep advances an EMA by one price given the smoothing multiplier.
// Feeding the previous output back in reproduces EMA exactly, so series
// can be extended incrementally without recomputing from scratch.
func EMAStep(price, prevEMA, multiplier float64) float64 {
	return (price-prevEMA)*multiplier + prevEMA
}

// EMAMultiplier returns the smoothing factor 2/(period+1).
func EMAMultiplier(period int) float64 {
	return 2.0 / float64(period+1)
}

// CheckCrossover inspects the last two points of aligned fast/slow series
// for a crossover. NaN warm-up entries compare false and never cross.
func CheckCrossover(fast, slow []float64) CrossSignal {
	if len(fast) < 2 || len(slow) < 2 || len(fast) != len(slow) {
		return CrossSignal{}
	}

	currFast := fast[len(fast)-1]
	prevFast := fast[len(fast)-2]
	currSlow := slow[len(slow)-1]
	prevSlow := slow[len(slow)-2]

	bullishCross := prevFast <= prevSlow && currFast > currSlow
	bearishCross := prevFast >= prevSlow && currFast < currSlow

	if !bullishCross && !bearishCross {
		return CrossSignal{}
	}

	direction := 1
	if bearishCross {
		direction = -1
	}

	return CrossSignal{
		Crossed:   true,
		Direction: direction,
		Strength:  math.Abs((currFast - currSlow) / currSlow),
	}
}
