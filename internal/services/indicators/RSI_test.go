package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
)

func TestRSIBounds(t *testing.T) {
	prices := waveSeries(100, 8, 200)
	rsi, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}

	for i := 0; i < 14; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Fatalf("rsi[%d] = %v, want NaN inside warm-up", i, rsi[i])
		}
	}
	for i := 14; i < len(rsi); i++ {
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Fatalf("rsi[%d] = %v, outside [0, 100]", i, rsi[i])
		}
	}
}

func TestRSIAllGainsReadsHundred(t *testing.T) {
	rsi, err := RSI(linearSeries(10, 50, 40), 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	for i := 14; i < len(rsi); i++ {
		if rsi[i] != 100 {
			t.Fatalf("rsi[%d] = %v, want 100 without losses", i, rsi[i])
		}
	}
}

func TestRSIAllLossesReadsZero(t *testing.T) {
	rsi, err := RSI(linearSeries(50, 10, 40), 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	for i := 14; i < len(rsi); i++ {
		if rsi[i] != 0 {
			t.Fatalf("rsi[%d] = %v, want 0 without gains", i, rsi[i])
		}
	}
}

func TestRSIInsufficientData(t *testing.T) {
	// period prices give period-1 deltas, one short of the window
	_, err := RSI(make([]float64, 14), 14)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
	if insufficient.Required != 15 || insufficient.Actual != 14 {
		t.Errorf("error = %+v, want required 15 actual 14", insufficient)
	}
}

func TestRSIMatchesTALib(t *testing.T) {
	prices := waveSeries(100, 8, 200)
	rsi, err := RSI(prices, 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	ref := talib.Rsi(prices, 14)
	compareSeries(t, "rsi vs talib", rsi, ref, 14, 1e-8)
}
