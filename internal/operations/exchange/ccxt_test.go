package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"CryptoSignalBot/internal/models"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"
)

type fakeCCXT struct {
	ohlcv     []ccxt.OHLCV
	orderBook ccxt.OrderBook
	balances  ccxt.Balances
	orders    []ccxt.Order
	markets   map[string]ccxt.MarketInterface
	err       error

	openOrderOpts int
}

func (f *fakeCCXT) FetchOHLCV(symbol string, options ...ccxt.FetchOHLCVOptions) ([]ccxt.OHLCV, error) {
	return f.ohlcv, f.err
}

func (f *fakeCCXT) FetchOrderBook(symbol string, options ...ccxt.FetchOrderBookOptions) (ccxt.OrderBook, error) {
	return f.orderBook, f.err
}

func (f *fakeCCXT) FetchBalance(params ...interface{}) (ccxt.Balances, error) {
	return f.balances, f.err
}

func (f *fakeCCXT) FetchOpenOrders(options ...ccxt.FetchOpenOrdersOptions) ([]ccxt.Order, error) {
	f.openOrderOpts = len(options)
	return f.orders, f.err
}

func (f *fakeCCXT) LoadMarkets(params ...interface{}) (map[string]ccxt.MarketInterface, error) {
	return f.markets, f.err
}

func newFakeSource(fake *fakeCCXT) *CCXTSource {
	return &CCXTSource{exchange: fake, venue: "alpaca", logger: zap.NewNop()}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64     { return &i }
func boolPtr(b bool) *bool      { return &b }

func TestClosedOHLCVKeepsElapsedIntervals(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 7, 0, 0, time.UTC)
	closed := ccxt.OHLCV{Timestamp: now.Add(-30 * time.Minute).UnixMilli(), Close: 100}
	justClosed := ccxt.OHLCV{Timestamp: now.Add(-15 * time.Minute).UnixMilli(), Close: 101}
	forming := ccxt.OHLCV{Timestamp: now.Add(-7 * time.Minute).UnixMilli(), Close: 102}

	got := closedOHLCV([]ccxt.OHLCV{closed, justClosed, forming}, models.Timeframe15m, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 closed candles, got %d", len(got))
	}
	if got[0].Close != 100 || got[1].Close != 101 {
		t.Fatalf("wrong candles survived: %+v", got)
	}
}

func TestOHLCVToCandle(t *testing.T) {
	open := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)
	item := ccxt.OHLCV{
		Timestamp: open.UnixMilli(),
		Open:      10, High: 12, Low: 9, Close: 11, Volume: 42,
	}

	c := ohlcvToCandle(item, models.Timeframe1h)
	if !c.OpenTime.Equal(open) {
		t.Fatalf("open time mismatch: %v", c.OpenTime)
	}
	if !c.CloseTime.Equal(open.Add(time.Hour - time.Millisecond)) {
		t.Fatalf("close time mismatch: %v", c.CloseTime)
	}
	if c.Open != 10 || c.High != 12 || c.Low != 9 || c.Close != 11 || c.Volume != 42 {
		t.Fatalf("field mismatch: %+v", c)
	}
}

func TestCCXTGetCandlestickData(t *testing.T) {
	base := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Hour)
	var raw []ccxt.OHLCV
	for i := 0; i < 5; i++ {
		raw = append(raw, ccxt.OHLCV{
			Timestamp: base.Add(time.Duration(i) * time.Hour).UnixMilli(),
			Open:      float64(100 + i),
			High:      float64(101 + i),
			Low:       float64(99 + i),
			Close:     float64(100 + i),
			Volume:    10,
		})
	}

	src := newFakeSource(&fakeCCXT{ohlcv: raw})
	series, err := src.GetCandlestickData(context.Background(), "BTC/USDT", models.Timeframe1h, 3)
	if err != nil {
		t.Fatalf("GetCandlestickData returned error: %v", err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected series trimmed to 3, got %d", series.Len())
	}
	if series.Candles[2].Close != 104 {
		t.Fatalf("expected most recent candle last, got close %v", series.Candles[2].Close)
	}
	if series.Symbol != "BTC/USDT" || series.Timeframe != models.Timeframe1h {
		t.Fatalf("series metadata mismatch: %+v", series)
	}
}

func TestCCXTGetCandlestickDataWrapsErrors(t *testing.T) {
	src := newFakeSource(&fakeCCXT{err: errors.New("network down")})
	_, err := src.GetCandlestickData(context.Background(), "BTC/USDT", models.Timeframe1h, 10)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestCCXTGetBalance(t *testing.T) {
	fake := &fakeCCXT{
		balances: ccxt.Balances{
			Total: map[string]*float64{
				"USDT": f64Ptr(1000),
				"BTC":  f64Ptr(0.5),
				"DUST": f64Ptr(0),
			},
			Free: map[string]*float64{
				"USDT": f64Ptr(600),
				"BTC":  f64Ptr(0.6),
			},
		},
	}
	src := newFakeSource(fake)

	balance, err := src.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance returned error: %v", err)
	}
	if len(balance.Assets) != 2 {
		t.Fatalf("expected zero-total assets skipped, got %d assets", len(balance.Assets))
	}

	usdt := balance.Assets["USDT"]
	if usdt.Free != 600 || usdt.Locked != 400 {
		t.Fatalf("USDT split wrong: %+v", usdt)
	}

	// Free above total happens on venues that report margin separately.
	// Locked must never go negative.
	btc := balance.Assets["BTC"]
	if btc.Locked != 0 {
		t.Fatalf("expected locked clamped to 0, got %v", btc.Locked)
	}
}

func TestCCXTGetTradingSymbols(t *testing.T) {
	fake := &fakeCCXT{
		markets: map[string]ccxt.MarketInterface{
			"BTC/USDT": {Base: strPtr("BTC"), Quote: strPtr("USDT"), Active: boolPtr(true)},
			"OLD/USDT": {Base: strPtr("OLD"), Quote: strPtr("USDT"), Active: boolPtr(false)},
		},
	}
	src := newFakeSource(fake)

	symbols, err := src.GetTradingSymbols(context.Background())
	if err != nil {
		t.Fatalf("GetTradingSymbols returned error: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}

	byName := make(map[string]models.Symbol)
	for _, sym := range symbols {
		byName[sym.Name] = sym
	}
	if !byName["BTC/USDT"].IsTrading() {
		t.Fatalf("active market should be trading: %+v", byName["BTC/USDT"])
	}
	if byName["OLD/USDT"].IsTrading() {
		t.Fatalf("inactive market should not be trading: %+v", byName["OLD/USDT"])
	}
	if byName["BTC/USDT"].BaseAsset != "BTC" || byName["BTC/USDT"].QuoteAsset != "USDT" {
		t.Fatalf("asset mapping wrong: %+v", byName["BTC/USDT"])
	}
}

func TestCCXTGetOpenOrders(t *testing.T) {
	created := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	fake := &fakeCCXT{
		orders: []ccxt.Order{
			{
				Id:        strPtr("abc-1"),
				Symbol:    strPtr("BTC/USDT"),
				Side:      strPtr("buy"),
				Type:      strPtr("limit"),
				Price:     f64Ptr(50000),
				Amount:    f64Ptr(0.25),
				Status:    strPtr("open"),
				Timestamp: i64Ptr(created.UnixMilli()),
			},
		},
	}
	src := newFakeSource(fake)

	orders, err := src.GetOpenOrders(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("GetOpenOrders returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	got := orders[0]
	if got.ID != "abc-1" || got.Side != "buy" || got.Type != "limit" || got.Status != "open" {
		t.Fatalf("order mapping wrong: %+v", got)
	}
	if got.Price != 50000 || got.Quantity != 0.25 {
		t.Fatalf("order amounts wrong: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("order time wrong: %v", got.CreatedAt)
	}
	if fake.openOrderOpts != 1 {
		t.Fatalf("expected symbol option passed, got %d options", fake.openOrderOpts)
	}

	if _, err := src.GetOpenOrders(context.Background(), ""); err != nil {
		t.Fatalf("GetOpenOrders without symbol returned error: %v", err)
	}
	if fake.openOrderOpts != 0 {
		t.Fatalf("expected no options for empty symbol, got %d", fake.openOrderOpts)
	}
}

func TestCCXTGetOrderBook(t *testing.T) {
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	fake := &fakeCCXT{
		orderBook: ccxt.OrderBook{
			Bids:      [][]float64{{100, 2}, {99.5, 3}, {99}},
			Asks:      [][]float64{{100.5, 1}, {101, 4}},
			Timestamp: i64Ptr(ts.UnixMilli()),
		},
	}
	src := newFakeSource(fake)

	book, err := src.GetOrderBook(context.Background(), "BTC/USDT", 5)
	if err != nil {
		t.Fatalf("GetOrderBook returned error: %v", err)
	}
	if len(book.Bids) != 2 {
		t.Fatalf("expected malformed bid level skipped, got %d bids", len(book.Bids))
	}
	if len(book.Asks) != 2 {
		t.Fatalf("expected 2 asks, got %d", len(book.Asks))
	}

	bid, ok := book.BestBid()
	if !ok || bid.Price != 100 || bid.Quantity != 2 {
		t.Fatalf("best bid wrong: %+v ok=%v", bid, ok)
	}
	ask, ok := book.BestAsk()
	if !ok || ask.Price != 100.5 {
		t.Fatalf("best ask wrong: %+v ok=%v", ask, ok)
	}
	if !book.Time.Equal(ts) {
		t.Fatalf("book time wrong: %v", book.Time)
	}
}

func TestNewCCXTExchangeRejectsUnknownVenue(t *testing.T) {
	if _, err := newCCXTExchange("nyse", nil, false); err == nil {
		t.Fatalf("expected error for unsupported venue")
	}
}
