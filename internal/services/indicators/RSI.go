package indicators

import "fmt"

// RSI computes the Wilder relative strength index of prices over the given
// period. The seed averages are the simple mean of the first period gains
// and losses; later values use Wilder smoothing
// avg = (prev*(period-1) + current) / period. Output is bounded to
// [0, 100]; a window without losses reads exactly 100. The first defined
// value is at index period, one delta per price after the first.
func RSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", period)
	}
	if len(prices) < period+1 {
		return nil, insufficientData("rsi", period+1, len(prices))
	}

	rsi := warmup(len(prices), period)

	// Seed averages over the first period deltas
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	rsi[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiValue(avgGain, avgLoss)
	}
	return rsi, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
