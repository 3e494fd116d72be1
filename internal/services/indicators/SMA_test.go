package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
)

func TestSMAWarmupAndValues(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6}
	sma, err := SMA(prices, 3)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	if len(sma) != len(prices) {
		t.Fatalf("length %d, want %d", len(sma), len(prices))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(sma[i]) {
			t.Errorf("sma[%d] = %v, want NaN inside warm-up", i, sma[i])
		}
	}
	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		if got := sma[i+2]; !almostEqual(got, w, 1e-12) {
			t.Errorf("sma[%d] = %v, want %v", i+2, got, w)
		}
	}
}

func TestSMAConstantSeries(t *testing.T) {
	sma, err := SMA(constantSeries(42, 60), 20)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	for i := 19; i < len(sma); i++ {
		if sma[i] != 42 {
			t.Fatalf("sma[%d] = %v, want exactly 42", i, sma[i])
		}
	}
}

func TestSMAInsufficientData(t *testing.T) {
	_, err := SMA([]float64{1, 2, 3}, 5)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
	if insufficient.Required != 5 || insufficient.Actual != 3 {
		t.Errorf("error = %+v, want required 5 actual 3", insufficient)
	}
}

func TestSMABadPeriod(t *testing.T) {
	if _, err := SMA([]float64{1, 2, 3}, 0); err == nil {
		t.Error("period 0 should fail")
	}
	if _, err := SMA([]float64{1, 2, 3}, -2); err == nil {
		t.Error("negative period should fail")
	}
}

func TestSMAMatchesTALib(t *testing.T) {
	prices := waveSeries(100, 4, 120)
	sma, err := SMA(prices, 20)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	ref := talib.Sma(prices, 20)
	compareSeries(t, "sma vs talib", sma, ref, 19, 1e-8)
}
