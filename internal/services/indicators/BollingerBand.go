package indicators

import (
	"fmt"
	"math"
)

// BBandsResult holds the Bollinger bands and the normalized band width,
// all index-aligned with the input series.
type BBandsResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
	Width  []float64
}

// BollingerBands computes an SMA middle band with envelopes numStd
// standard deviations away. The deviation is the population standard
// deviation (divide by period) over the same trailing window as the SMA.
func BollingerBands(prices []float64, period int, numStd float64) (*BBandsResult, error) {
	if period <= 0 {
		return nil, fmt.Errorf("bollinger: period must be positive, got %d", period)
	}
	if numStd <= 0 {
		return nil, fmt.Errorf("bollinger: numStd must be positive, got %v", numStd)
	}
	if len(prices) < period {
		return nil, insufficientData("bollinger", period, len(prices))
	}

	result := &BBandsResult{
		Upper:  warmup(len(prices), period-1),
		Middle: warmup(len(prices), period-1),
		Lower:  warmup(len(prices), period-1),
		Width:  warmup(len(prices), period-1),
	}

	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]

		sum := 0.0
		for _, price := range window {
			sum += price
		}
		sma := sum / float64(period)

		squareSum := 0.0
		for _, price := range window {
			diff := price - sma
			squareSum += diff * diff
		}
		stdDev := math.Sqrt(squareSum / float64(period))

		result.Middle[i] = sma
		result.Upper[i] = sma + numStd*stdDev
		result.Lower[i] = sma - numStd*stdDev
		result.Width[i] = (result.Upper[i] - result.Lower[i]) / sma
	}
	return result, nil
}
