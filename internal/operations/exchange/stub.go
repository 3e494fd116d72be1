package exchange

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"CryptoSignalBot/internal/models"
)

// StubSource serves deterministic synthetic market data. It needs no
// network or credentials, which makes it the venue of choice for local
// runs and for exercising the full pipeline in tests.
type StubSource struct {
	now func() time.Time
}

func NewStubSource() *StubSource {
	return &StubSource{now: time.Now}
}

var stubSymbols = []models.Symbol{
	{Venue: "stub", Name: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT", Status: models.SymbolStatusTrading, PricePrecision: 2, QuantityPrecision: 6},
	{Venue: "stub", Name: "ETHUSDT", BaseAsset: "ETH", QuoteAsset: "USDT", Status: models.SymbolStatusTrading, PricePrecision: 2, QuantityPrecision: 5},
}

// GetCandlestickData generates count closed candles ending at the last
// completed interval boundary. Prices follow a slow sine wave around a
// per-symbol base, so the same symbol, timeframe and clock always yield
// the same series.
func (s *StubSource) GetCandlestickData(ctx context.Context, symbol string, timeframe models.Timeframe, count int) (models.CandleSeries, error) {
	if count <= 0 {
		return models.CandleSeries{}, fmt.Errorf("stub ohlcv: count must be positive, got %d", count)
	}
	if err := ctx.Err(); err != nil {
		return models.CandleSeries{}, dataUnavailable("stub ohlcv", err)
	}

	d := timeframe.Duration()
	if d <= 0 {
		return models.CandleSeries{}, dataUnavailable("stub ohlcv", fmt.Errorf("unknown timeframe %q", timeframe))
	}

	base := stubBasePrice(symbol)
	end := s.now().UTC().Truncate(d)

	candles := make([]models.Candle, 0, count)
	for i := 0; i < count; i++ {
		openTime := end.Add(-time.Duration(count-i) * d)
		idx := openTime.Unix() / int64(d.Seconds())

		open := stubClose(base, idx-1)
		cls := stubClose(base, idx)
		high := math.Max(open, cls) * 1.0008
		low := math.Min(open, cls) * 0.9992

		candles = append(candles, models.Candle{
			OpenTime:  openTime,
			CloseTime: openTime.Add(d - time.Millisecond),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     cls,
			Volume:    10 + 3*math.Abs(math.Sin(float64(idx)/3)),
		})
	}

	return models.CandleSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   candles,
	}, nil
}

func (s *StubSource) GetTradingSymbols(ctx context.Context) ([]models.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataUnavailable("stub symbols", err)
	}
	out := make([]models.Symbol, len(stubSymbols))
	copy(out, stubSymbols)
	return out, nil
}

func (s *StubSource) GetBalance(ctx context.Context) (models.Balance, error) {
	if err := ctx.Err(); err != nil {
		return models.Balance{}, dataUnavailable("stub balance", err)
	}
	return models.Balance{
		Venue: "stub",
		Assets: map[string]models.AssetBalance{
			"USDT": {Asset: "USDT", Free: 10000},
			"BTC":  {Asset: "BTC", Free: 0.5},
		},
		Time: s.now().UTC(),
	}, nil
}

func (s *StubSource) GetOpenOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, dataUnavailable("stub open orders", err)
	}
	return []models.Order{}, nil
}

// GetOrderBook synthesizes a book around the latest stub close with a
// 0.02% step per level.
func (s *StubSource) GetOrderBook(ctx context.Context, symbol string, depth int) (models.OrderBook, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderBook{}, dataUnavailable("stub order book", err)
	}
	if depth <= 0 {
		depth = 10
	}

	now := s.now().UTC()
	idx := now.Unix() / 60
	mid := stubClose(stubBasePrice(symbol), idx)

	book := models.OrderBook{
		Symbol: symbol,
		Bids:   make([]models.OrderBookLevel, 0, depth),
		Asks:   make([]models.OrderBookLevel, 0, depth),
		Time:   now,
	}
	for i := 1; i <= depth; i++ {
		offset := mid * 0.0002 * float64(i)
		book.Bids = append(book.Bids, models.OrderBookLevel{Price: mid - offset, Quantity: 1.5 / float64(i)})
		book.Asks = append(book.Asks, models.OrderBookLevel{Price: mid + offset, Quantity: 1.5 / float64(i)})
	}
	return book, nil
}

// stubBasePrice derives a stable base price in [100, 500) from the symbol name.
func stubBasePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return float64(100 + h.Sum32()%400)
}

// stubClose is a pure function of the base price and the absolute candle
// index, so consecutive fetches agree on overlapping history.
func stubClose(base float64, idx int64) float64 {
	i := float64(idx)
	return base * (1 + 0.02*math.Sin(i/9) + 0.001*math.Sin(i/2.3))
}
