package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/models"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"
)

// ccxtExchange is the slice of the generated ccxt API this adapter uses.
// Narrowing it here keeps venue construction in one switch and the rest of
// the adapter venue-agnostic.
type ccxtExchange interface {
	FetchOHLCV(symbol string, options ...ccxt.FetchOHLCVOptions) ([]ccxt.OHLCV, error)
	FetchOrderBook(symbol string, options ...ccxt.FetchOrderBookOptions) (ccxt.OrderBook, error)
	FetchBalance(params ...interface{}) (ccxt.Balances, error)
	FetchOpenOrders(options ...ccxt.FetchOpenOrdersOptions) ([]ccxt.Order, error)
	LoadMarkets(params ...interface{}) (map[string]ccxt.MarketInterface, error)
}

// CCXTSource implements MarketDataSource over any exchange ccxt supports.
// It backs the venues without a native client, Alpaca among them.
type CCXTSource struct {
	exchange ccxtExchange
	venue    string
	logger   *zap.Logger
}

func NewCCXTSource(cfg config.VenueConfig, logger *zap.Logger) (*CCXTSource, error) {
	userConfig := map[string]interface{}{
		"enableRateLimit": true,
	}
	if cfg.APIKey != "" {
		userConfig["apiKey"] = cfg.APIKey
	}
	if cfg.SecretKey != "" {
		userConfig["secret"] = cfg.SecretKey
	}

	ex, err := newCCXTExchange(cfg.Name, userConfig, cfg.Testnet)
	if err != nil {
		return nil, err
	}

	return &CCXTSource{
		exchange: ex,
		venue:    cfg.Name,
		logger:   logger.Named("ccxt").With(zap.String("venue", cfg.Name)),
	}, nil
}

func newCCXTExchange(name string, userConfig map[string]interface{}, sandbox bool) (ccxtExchange, error) {
	switch strings.ToLower(name) {
	case "alpaca":
		ex := ccxt.NewAlpaca(userConfig)
		ex.SetSandboxMode(sandbox)
		return ex, nil
	case "kraken":
		ex := ccxt.NewKraken(userConfig)
		ex.SetSandboxMode(sandbox)
		return ex, nil
	case "coinbase":
		ex := ccxt.NewCoinbase(userConfig)
		ex.SetSandboxMode(sandbox)
		return ex, nil
	default:
		return nil, fmt.Errorf("unsupported venue %q", name)
	}
}

// GetCandlestickData returns the most recent count closed candles. ccxt
// reports only the open timestamp, so a candle counts as closed once a
// full interval has elapsed since it opened.
func (s *CCXTSource) GetCandlestickData(ctx context.Context, symbol string, timeframe models.Timeframe, count int) (models.CandleSeries, error) {
	if count <= 0 {
		return models.CandleSeries{}, fmt.Errorf("ccxt ohlcv: count must be positive, got %d", count)
	}
	if err := ctx.Err(); err != nil {
		return models.CandleSeries{}, dataUnavailable("ccxt ohlcv", err)
	}

	raw, err := s.exchange.FetchOHLCV(symbol,
		ccxt.WithFetchOHLCVTimeframe(timeframe.String()),
		ccxt.WithFetchOHLCVLimit(int64(count+1)),
	)
	if err != nil {
		return models.CandleSeries{}, dataUnavailable("ccxt ohlcv", err)
	}

	raw = closedOHLCV(raw, timeframe, time.Now())
	if len(raw) > count {
		raw = raw[len(raw)-count:]
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, item := range raw {
		candles = append(candles, ohlcvToCandle(item, timeframe))
	}

	return models.CandleSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   candles,
	}, nil
}

func (s *CCXTSource) GetTradingSymbols(ctx context.Context) ([]models.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataUnavailable("ccxt markets", err)
	}

	markets, err := s.exchange.LoadMarkets()
	if err != nil {
		return nil, dataUnavailable("ccxt markets", err)
	}

	symbols := make([]models.Symbol, 0, len(markets))
	for name, market := range markets {
		status := models.SymbolStatusTrading
		if market.Active != nil && !*market.Active {
			status = "INACTIVE"
		}
		symbols = append(symbols, models.Symbol{
			Venue:      s.venue,
			Name:       name,
			BaseAsset:  derefString(market.Base),
			QuoteAsset: derefString(market.Quote),
			Status:     status,
		})
	}
	return symbols, nil
}

func (s *CCXTSource) GetBalance(ctx context.Context) (models.Balance, error) {
	if err := ctx.Err(); err != nil {
		return models.Balance{}, dataUnavailable("ccxt balance", err)
	}

	balances, err := s.exchange.FetchBalance()
	if err != nil {
		return models.Balance{}, dataUnavailable("ccxt balance", err)
	}

	assets := make(map[string]models.AssetBalance)
	for asset, totalPtr := range balances.Total {
		total := derefFloat(totalPtr)
		if total == 0 {
			continue
		}
		free := total
		if balances.Free != nil {
			if freePtr, ok := balances.Free[asset]; ok {
				free = derefFloat(freePtr)
			}
		}
		locked := total - free
		if locked < 0 {
			locked = 0
		}
		assets[asset] = models.AssetBalance{
			Asset:  asset,
			Free:   free,
			Locked: locked,
		}
	}

	return models.Balance{
		Venue:  s.venue,
		Assets: assets,
		Time:   time.Now().UTC(),
	}, nil
}

func (s *CCXTSource) GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataUnavailable("ccxt open orders", err)
	}

	var options []ccxt.FetchOpenOrdersOptions
	if symbol != "" {
		options = append(options, ccxt.WithFetchOpenOrdersSymbol(symbol))
	}
	raw, err := s.exchange.FetchOpenOrders(options...)
	if err != nil {
		return nil, dataUnavailable("ccxt open orders", err)
	}

	orders := make([]models.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, models.Order{
			ID:        derefString(o.Id),
			Symbol:    derefString(o.Symbol),
			Side:      derefString(o.Side),
			Type:      derefString(o.Type),
			Price:     derefFloat(o.Price),
			Quantity:  derefFloat(o.Amount),
			Status:    derefString(o.Status),
			CreatedAt: time.UnixMilli(derefInt(o.Timestamp)).UTC(),
		})
	}
	return orders, nil
}

func (s *CCXTSource) GetOrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderBook{}, dataUnavailable("ccxt order book", err)
	}

	raw, err := s.exchange.FetchOrderBook(symbol, ccxt.WithFetchOrderBookLimit(int64(depth)))
	if err != nil {
		return models.OrderBook{}, dataUnavailable("ccxt order book", err)
	}

	book := models.OrderBook{
		Symbol: symbol,
		Bids:   make([]models.OrderBookLevel, 0, len(raw.Bids)),
		Asks:   make([]models.OrderBookLevel, 0, len(raw.Asks)),
	}
	for _, level := range raw.Bids {
		if len(level) < 2 {
			continue
		}
		book.Bids = append(book.Bids, models.OrderBookLevel{Price: level[0], Quantity: level[1]})
	}
	for _, level := range raw.Asks {
		if len(level) < 2 {
			continue
		}
		book.Asks = append(book.Asks, models.OrderBookLevel{Price: level[0], Quantity: level[1]})
	}
	if raw.Timestamp != nil {
		book.Time = time.UnixMilli(*raw.Timestamp).UTC()
	} else {
		book.Time = time.Now().UTC()
	}
	return book, nil
}

// closedOHLCV keeps candles whose interval has fully elapsed.
func closedOHLCV(raw []ccxt.OHLCV, timeframe models.Timeframe, now time.Time) []ccxt.OHLCV {
	out := raw[:0]
	for _, item := range raw {
		openTime := time.UnixMilli(item.Timestamp)
		if !openTime.Add(timeframe.Duration()).After(now) {
			out = append(out, item)
		}
	}
	return out
}

func ohlcvToCandle(item ccxt.OHLCV, timeframe models.Timeframe) models.Candle {
	openTime := time.UnixMilli(item.Timestamp).UTC()
	return models.Candle{
		OpenTime:  openTime,
		CloseTime: openTime.Add(timeframe.Duration() - time.Millisecond),
		Open:      item.Open,
		High:      item.High,
		Low:       item.Low,
		Close:     item.Close,
		Volume:    item.Volume,
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
