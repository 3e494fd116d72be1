package indicators

import "fmt"

// MACDResult holds the MACD line, its signal line, and the histogram,
// all index-aligned with the input series.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence divergence of prices:
// MACD line = EMA(fast) - EMA(slow), signal line = EMA(signal) over the
// defined region of the MACD line, histogram = MACD - signal. The minimum
// input length is slow+signal-1, the first index with a defined histogram.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (*MACDResult, error) {
	if fastPeriod <= 0 || signalPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil, fmt.Errorf("macd: need 0 < fast < slow and signal > 0, got fast=%d slow=%d signal=%d",
			fastPeriod, slowPeriod, signalPeriod)
	}
	minLength := slowPeriod + signalPeriod - 1
	if len(prices) < minLength {
		return nil, insufficientData("macd", minLength, len(prices))
	}

	fastEMA, err := EMA(prices, fastPeriod)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMA(prices, slowPeriod)
	if err != nil {
		return nil, err
	}

	result := &MACDResult{
		MACD:      warmup(len(prices), slowPeriod-1),
		Signal:    warmup(len(prices), minLength-1),
		Histogram: warmup(len(prices), minLength-1),
	}

	for i := slowPeriod - 1; i < len(prices); i++ {
		result.MACD[i] = fastEMA[i] - slowEMA[i]
	}

	// Signal line over the defined tail of the MACD line only; the NaN
	// warm-up prefix must not leak into the EMA seed.
	signalEMA, err := EMA(result.MACD[slowPeriod-1:], signalPeriod)
	if err != nil {
		return nil, err
	}
	for i, v := range signalEMA {
		result.Signal[slowPeriod-1+i] = v
	}

	for i := minLength - 1; i < len(prices); i++ {
		result.Histogram[i] = result.MACD[i] - result.Signal[i]
	}
	return result, nil
}
