package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/models"
	"CryptoSignalBot/internal/services/indicators"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ThreeScreenStrategy implements Alexander Elder's three-screen method.
// Screen one reads the trend on a long timeframe (MACD histogram plus
// slow EMA pair), screen two waits for a correction against that trend
// on a medium timeframe (RSI plus Bollinger touch), screen three times
// the entry on a short timeframe (fast EMA crossover). A trade signal
// requires all three to agree; anything less yields a hold signal that
// records how each screen voted.
type ThreeScreenStrategy struct {
	cfg    config.StrategyConfig
	logger *zap.Logger

	// Confidence weights
	trendWeight      float64 // 40%
	correctionWeight float64 // 30%
	entryWeight      float64 // 30%
}

func NewThreeScreenStrategy(cfg config.StrategyConfig, logger *zap.Logger) *ThreeScreenStrategy {
	return &ThreeScreenStrategy{
		cfg:              cfg,
		logger:           logger.Named("three-screen"),
		trendWeight:      0.40,
		correctionWeight: 0.30,
		entryWeight:      0.30,
	}
}

func (s *ThreeScreenStrategy) Name() string {
	return "three-screen"
}

// Execute evaluates all three screens for the symbol and returns exactly
// one signal. Data or indicator failures abort the evaluation; no signal
// is produced for the symbol this cycle.
func (s *ThreeScreenStrategy) Execute(ctx context.Context, access DataAccess, symbol models.Symbol) ([]models.SignalModel, error) {
	long, err := access.GetCandlestickData(ctx, symbol.Name, s.cfg.Screens.Long, s.cfg.CandleCounts.Long)
	if err != nil {
		return nil, fmt.Errorf("trend screen data: %w", err)
	}
	medium, err := access.GetCandlestickData(ctx, symbol.Name, s.cfg.Screens.Medium, s.cfg.CandleCounts.Medium)
	if err != nil {
		return nil, fmt.Errorf("correction screen data: %w", err)
	}
	short, err := access.GetCandlestickData(ctx, symbol.Name, s.cfg.Screens.Short, s.cfg.CandleCounts.Short)
	if err != nil {
		return nil, fmt.Errorf("entry screen data: %w", err)
	}

	trend, err := s.evaluateTrend(long.Closes())
	if err != nil {
		return nil, fmt.Errorf("trend screen: %w", err)
	}
	correction, err := s.evaluateCorrection(medium.Closes(), trend.direction)
	if err != nil {
		return nil, fmt.Errorf("correction screen: %w", err)
	}
	entry, err := s.evaluateEntry(short.Closes(), trend.direction)
	if err != nil {
		return nil, fmt.Errorf("entry screen: %w", err)
	}

	closes := short.Closes()
	signal := s.aggregate(symbol, closes[len(closes)-1], trend, correction, entry)

	s.logger.Debug("evaluated symbol",
		zap.String("symbol", symbol.Name),
		zap.String("direction", string(signal.Direction)),
		zap.Float64("confidence", signal.Confidence),
	)
	return []models.SignalModel{signal}, nil
}

// evaluateTrend reads the long timeframe. Bullish needs the MACD
// histogram above zero and the fast trend EMA above the slow one;
// bearish needs both inverted. A split verdict is neutral.
func (s *ThreeScreenStrategy) evaluateTrend(closes []float64) (screenResult, error) {
	macd, err := indicators.MACD(closes, s.cfg.MACD.FastPeriod, s.cfg.MACD.SlowPeriod, s.cfg.MACD.SignalPeriod)
	if err != nil {
		return screenResult{}, err
	}
	emaFast, err := indicators.EMA(closes, s.cfg.TrendFastPeriod())
	if err != nil {
		return screenResult{}, err
	}
	emaSlow, err := indicators.EMA(closes, s.cfg.TrendSlowPeriod())
	if err != nil {
		return screenResult{}, err
	}

	last := len(closes) - 1
	hist := macd.Histogram[last]
	fast := emaFast[last]
	slow := emaSlow[last]

	detail := fmt.Sprintf("hist %.4f, ema%d %.4f vs ema%d %.4f",
		hist, s.cfg.TrendFastPeriod(), fast, s.cfg.TrendSlowPeriod(), slow)

	switch {
	case hist > 0 && fast > slow:
		return screenResult{direction: models.SignalBuy, score: 1, detail: detail}, nil
	case hist < 0 && fast < slow:
		return screenResult{direction: models.SignalSell, score: 1, detail: detail}, nil
	default:
		return screenResult{direction: models.SignalHold, detail: detail}, nil
	}
}

// evaluateCorrection reads the medium timeframe in the context of the
// trend. In an uptrend it wants an oversold RSI with the close at or
// below the lower Bollinger band; in a downtrend the mirror. The score
// grows with how deep the RSI sits past its threshold.
func (s *ThreeScreenStrategy) evaluateCorrection(closes []float64, trend models.SignalDirection) (screenResult, error) {
	rsi, err := indicators.RSI(closes, s.cfg.RSI.Period)
	if err != nil {
		return screenResult{}, err
	}
	bands, err := indicators.BollingerBands(closes, s.cfg.Bollinger.Period, s.cfg.Bollinger.NumStd)
	if err != nil {
		return screenResult{}, err
	}

	last := len(closes) - 1
	lastRSI := rsi[last]
	lastClose := closes[last]
	lower := bands.Lower[last]
	upper := bands.Upper[last]

	detail := fmt.Sprintf("rsi %.2f, close %.4f, bands [%.4f, %.4f]",
		lastRSI, lastClose, lower, upper)

	switch trend {
	case models.SignalBuy:
		if lastRSI < s.cfg.RSI.Oversold && lastClose <= lower {
			score := (s.cfg.RSI.Oversold - lastRSI) / s.cfg.RSI.Oversold
			return screenResult{direction: models.SignalBuy, score: score, detail: detail}, nil
		}
	case models.SignalSell:
		if lastRSI > s.cfg.RSI.Overbought && lastClose >= upper {
			score := (lastRSI - s.cfg.RSI.Overbought) / (100 - s.cfg.RSI.Overbought)
			return screenResult{direction: models.SignalSell, score: score, detail: detail}, nil
		}
	}
	return screenResult{direction: models.SignalHold, detail: detail}, nil
}

// evaluateEntry reads the short timeframe. Only a crossover completed on
// the latest closed candle counts: the fast EMA must have been at or
// past the slow one the candle before and through it now, in the trend
// direction.
func (s *ThreeScreenStrategy) evaluateEntry(closes []float64, trend models.SignalDirection) (screenResult, error) {
	fast, err := indicators.EMA(closes, s.cfg.EntryFastPeriod())
	if err != nil {
		return screenResult{}, err
	}
	slow, err := indicators.EMA(closes, s.cfg.EntrySlowPeriod())
	if err != nil {
		return screenResult{}, err
	}

	cross := indicators.CheckCrossover(fast, slow)
	fastP, slowP := s.cfg.EntryFastPeriod(), s.cfg.EntrySlowPeriod()

	if cross.Crossed {
		side := "above"
		direction := models.SignalBuy
		if cross.Direction < 0 {
			side = "below"
			direction = models.SignalSell
		}
		detail := fmt.Sprintf("ema%d crossed %s ema%d, gap %.4f%%", fastP, side, slowP, cross.Strength*100)
		if direction == trend {
			return screenResult{direction: direction, score: math.Min(1, cross.Strength*50), detail: detail}, nil
		}
		return screenResult{direction: models.SignalHold, detail: detail}, nil
	}

	return screenResult{direction: models.SignalHold, detail: fmt.Sprintf("no ema%d/ema%d crossover", fastP, slowP)}, nil
}

// aggregate applies the strict conjunction and materializes the signal.
func (s *ThreeScreenStrategy) aggregate(symbol models.Symbol, price float64, trend, correction, entry screenResult) models.SignalModel {
	votes := []models.ScreenVote{
		{Screen: models.ScreenTrend, Timeframe: s.cfg.Screens.Long, Direction: trend.direction, Detail: trend.detail},
		{Screen: models.ScreenCorrection, Timeframe: s.cfg.Screens.Medium, Direction: correction.direction, Detail: correction.detail},
		{Screen: models.ScreenEntry, Timeframe: s.cfg.Screens.Short, Direction: entry.direction, Detail: entry.detail},
	}

	direction := models.SignalHold
	confidence := 0.0
	var rationale string

	if trend.direction != models.SignalHold &&
		trend.direction == correction.direction &&
		correction.direction == entry.direction {
		direction = trend.direction
		confidence = s.trendWeight*trend.score + s.correctionWeight*correction.score + s.entryWeight*entry.score
		rationale = fmt.Sprintf("three screens aligned %s: trend(%s); correction(%s); entry(%s)",
			direction, trend.detail, correction.detail, entry.detail)
	} else {
		rationale = fmt.Sprintf("screens disagree: trend=%s correction=%s entry=%s",
			trend.direction, correction.direction, entry.direction)
	}

	return models.SignalModel{
		ID:         uuid.NewString(),
		Symbol:     symbol.Name,
		Strategy:   s.Name(),
		Timeframe:  s.cfg.Screens.Short,
		Direction:  direction,
		Price:      price,
		Confidence: confidence,
		Rationale:  rationale,
		Votes:      votes,
		CreatedAt:  time.Now().UTC(),
	}
}
