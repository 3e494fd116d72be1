package exchange

import (
	"context"
	"errors"
	"fmt"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/models"

	"go.uber.org/zap"
)

// ErrDataUnavailable wraps every venue failure so callers can detect it
// with errors.Is and skip the affected symbol for the cycle instead of
// inspecting venue-specific error types.
var ErrDataUnavailable = errors.New("market data unavailable")

// MarketDataSource is the uniform read-only surface over one venue.
// Implementations return only closed candles, ascending by open time, and
// normalize venue interval strings to models.Timeframe before any data
// leaves the adapter.
type MarketDataSource interface {
	GetCandlestickData(ctx context.Context, symbol string, timeframe models.Timeframe, count int) (models.CandleSeries, error)
	GetTradingSymbols(ctx context.Context) ([]models.Symbol, error)
	GetBalance(ctx context.Context) (models.Balance, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error)
	GetOrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error)
}

// New selects the adapter for the configured venue. "binance" uses the
// native client, "stub" serves synthetic data, anything else is treated
// as a ccxt exchange id.
func New(cfg config.VenueConfig, logger *zap.Logger) (MarketDataSource, error) {
	switch cfg.Name {
	case "binance":
		return NewBinanceSource(cfg, logger), nil
	case "stub":
		return NewStubSource(), nil
	default:
		return NewCCXTSource(cfg, logger)
	}
}

func dataUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrDataUnavailable, err)
}
