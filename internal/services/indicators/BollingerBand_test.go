package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/markcheno/go-talib"
)

func TestBollingerBandOrdering(t *testing.T) {
	prices := waveSeries(100, 6, 150)
	bands, err := BollingerBands(prices, 20, 2.0)
	if err != nil {
		t.Fatalf("BollingerBands: %v", err)
	}

	for i := 0; i < 19; i++ {
		if !math.IsNaN(bands.Middle[i]) {
			t.Fatalf("middle[%d] = %v, want NaN inside warm-up", i, bands.Middle[i])
		}
	}
	for i := 19; i < len(prices); i++ {
		if !(bands.Upper[i] >= bands.Middle[i] && bands.Middle[i] >= bands.Lower[i]) {
			t.Fatalf("band ordering broken at %d: upper=%v middle=%v lower=%v",
				i, bands.Upper[i], bands.Middle[i], bands.Lower[i])
		}
		if bands.Width[i] < 0 {
			t.Fatalf("width[%d] = %v, want >= 0", i, bands.Width[i])
		}
	}
}

func TestBollingerBandConstantSeries(t *testing.T) {
	bands, err := BollingerBands(constantSeries(42, 60), 20, 2.0)
	if err != nil {
		t.Fatalf("BollingerBands: %v", err)
	}
	// Zero deviation collapses the envelope onto the middle band.
	for i := 19; i < 60; i++ {
		if bands.Upper[i] != 42 || bands.Middle[i] != 42 || bands.Lower[i] != 42 {
			t.Fatalf("bands at %d = %v/%v/%v, want all exactly 42",
				i, bands.Upper[i], bands.Middle[i], bands.Lower[i])
		}
	}
}

func TestBollingerBandInsufficientData(t *testing.T) {
	_, err := BollingerBands(make([]float64, 10), 20, 2.0)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("want InsufficientDataError, got %v", err)
	}
	if insufficient.Required != 20 || insufficient.Actual != 10 {
		t.Errorf("error = %+v, want required 20 actual 10", insufficient)
	}
}

func TestBollingerBandBadParams(t *testing.T) {
	if _, err := BollingerBands([]float64{1, 2, 3}, -1, 2.0); err == nil {
		t.Error("negative period should fail")
	}
	if _, err := BollingerBands([]float64{1, 2, 3}, 2, 0); err == nil {
		t.Error("zero numStd should fail")
	}
}

func TestBollingerBandMatchesTALib(t *testing.T) {
	prices := waveSeries(100, 6, 150)
	bands, err := BollingerBands(prices, 20, 2.0)
	if err != nil {
		t.Fatalf("BollingerBands: %v", err)
	}
	upper, middle, lower := talib.BBands(prices, 20, 2.0, 2.0, talib.SMA)
	compareSeries(t, "upper vs talib", bands.Upper, upper, 19, 1e-8)
	compareSeries(t, "middle vs talib", bands.Middle, middle, 19, 1e-8)
	compareSeries(t, "lower vs talib", bands.Lower, lower, 19, 1e-8)
}
