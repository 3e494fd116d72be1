package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/models"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BinanceSource implements MarketDataSource over the Binance spot API.
type BinanceSource struct {
	client  *binance.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewBinanceSource(cfg config.VenueConfig, logger *zap.Logger) *BinanceSource {
	httpClient := &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	binance.UseTestnet = cfg.Testnet
	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	client.HTTPClient = httpClient

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceSource{
		client:  client,
		limiter: limiter,
		logger:  logger.Named("binance"),
	}
}

// GetCandlestickData returns the most recent count closed candles. Binance
// includes the still-forming candle as the final kline, so one extra is
// requested and the unfinished tail trimmed off.
func (s *BinanceSource) GetCandlestickData(ctx context.Context, symbol string, timeframe models.Timeframe, count int) (models.CandleSeries, error) {
	if count <= 0 {
		return models.CandleSeries{}, fmt.Errorf("binance klines: count must be positive, got %d", count)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return models.CandleSeries{}, dataUnavailable("binance klines", err)
	}

	klines, err := s.client.NewKlinesService().
		Symbol(symbol).
		Interval(timeframe.String()).
		Limit(count + 1).
		Do(ctx)
	if err != nil {
		return models.CandleSeries{}, dataUnavailable("binance klines", err)
	}

	klines = trimFormingKline(klines, time.Now())
	if len(klines) > count {
		klines = klines[len(klines)-count:]
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candles = append(candles, klineToCandle(k))
	}

	return models.CandleSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   candles,
	}, nil
}

func (s *BinanceSource) GetTradingSymbols(ctx context.Context) ([]models.Symbol, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, dataUnavailable("binance exchange info", err)
	}

	info, err := s.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, dataUnavailable("binance exchange info", err)
	}

	symbols := make([]models.Symbol, 0, len(info.Symbols))
	for _, sym := range info.Symbols {
		symbols = append(symbols, models.Symbol{
			Venue:             "binance",
			Name:              sym.Symbol,
			BaseAsset:         sym.BaseAsset,
			QuoteAsset:        sym.QuoteAsset,
			Status:            sym.Status,
			PricePrecision:    sym.QuotePrecision,
			QuantityPrecision: sym.BaseAssetPrecision,
		})
	}
	return symbols, nil
}

func (s *BinanceSource) GetBalance(ctx context.Context) (models.Balance, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.Balance{}, dataUnavailable("binance account", err)
	}

	account, err := s.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return models.Balance{}, dataUnavailable("binance account", err)
	}

	assets := make(map[string]models.AssetBalance)
	for _, b := range account.Balances {
		free := parseFloat(b.Free)
		locked := parseFloat(b.Locked)
		if free == 0 && locked == 0 {
			continue
		}
		assets[b.Asset] = models.AssetBalance{
			Asset:  b.Asset,
			Free:   free,
			Locked: locked,
		}
	}

	return models.Balance{
		Venue:  "binance",
		Assets: assets,
		Time:   time.Now().UTC(),
	}, nil
}

func (s *BinanceSource) GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, dataUnavailable("binance open orders", err)
	}

	svc := s.client.NewListOpenOrdersService()
	if symbol != "" {
		svc.Symbol(symbol)
	}
	raw, err := svc.Do(ctx)
	if err != nil {
		return nil, dataUnavailable("binance open orders", err)
	}

	orders := make([]models.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, models.Order{
			ID:        strconv.FormatInt(o.OrderID, 10),
			Symbol:    o.Symbol,
			Side:      string(o.Side),
			Type:      string(o.Type),
			Price:     parseFloat(o.Price),
			Quantity:  parseFloat(o.OrigQuantity),
			Status:    string(o.Status),
			CreatedAt: time.UnixMilli(o.Time).UTC(),
		})
	}
	return orders, nil
}

func (s *BinanceSource) GetOrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return models.OrderBook{}, dataUnavailable("binance depth", err)
	}

	res, err := s.client.NewDepthService().Symbol(symbol).Limit(depth).Do(ctx)
	if err != nil {
		return models.OrderBook{}, dataUnavailable("binance depth", err)
	}

	book := models.OrderBook{
		Symbol: symbol,
		Bids:   make([]models.OrderBookLevel, 0, len(res.Bids)),
		Asks:   make([]models.OrderBookLevel, 0, len(res.Asks)),
		Time:   time.Now().UTC(),
	}
	for _, b := range res.Bids {
		book.Bids = append(book.Bids, models.OrderBookLevel{
			Price:    parseFloat(b.Price),
			Quantity: parseFloat(b.Quantity),
		})
	}
	for _, a := range res.Asks {
		book.Asks = append(book.Asks, models.OrderBookLevel{
			Price:    parseFloat(a.Price),
			Quantity: parseFloat(a.Quantity),
		})
	}
	return book, nil
}

// trimFormingKline drops the final kline when its close time is still in
// the future. Strategy correctness depends on closed candles only.
func trimFormingKline(klines []*binance.Kline, now time.Time) []*binance.Kline {
	if n := len(klines); n > 0 {
		if time.UnixMilli(klines[n-1].CloseTime).After(now) {
			return klines[:n-1]
		}
	}
	return klines
}

func klineToCandle(k *binance.Kline) models.Candle {
	return models.Candle{
		OpenTime:  time.UnixMilli(k.OpenTime).UTC(),
		CloseTime: time.UnixMilli(k.CloseTime).UTC(),
		Open:      parseFloat(k.Open),
		High:      parseFloat(k.High),
		Low:       parseFloat(k.Low),
		Close:     parseFloat(k.Close),
		Volume:    parseFloat(k.Volume),
	}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
