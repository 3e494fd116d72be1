package indicators

import "fmt"

// SMA computes the simple moving average of prices over the given period.
// The first defined value is at index period-1, once the window is full.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma: period must be positive, got %d", period)
	}
	if len(prices) < period {
		return nil, insufficientData("sma", period, len(prices))
	}

	sma := warmup(len(prices), period-1)

	// Rolling window sum
	sum := 0.0
	for i, price := range prices {
		sum += price
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			sma[i] = sum / float64(period)
		}
	}
	return sma, nil
}
