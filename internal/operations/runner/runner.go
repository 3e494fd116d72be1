package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"CryptoSignalBot/config"
	"CryptoSignalBot/internal/metrics"
	"CryptoSignalBot/internal/models"
	"CryptoSignalBot/internal/notify"
	"CryptoSignalBot/internal/operations/exchange"
	"CryptoSignalBot/internal/repositories"
	"CryptoSignalBot/internal/services/indicators"
	"CryptoSignalBot/internal/services/strategy"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner drives the evaluation loop: every cycle it resolves the symbols
// to watch, runs the registered strategies against each one, and routes
// the resulting signals to the notifier and the journal. Failures on one
// symbol never touch the others.
type Runner struct {
	cfg      config.Config
	source   exchange.MarketDataSource
	manager  *strategy.StrategyManager
	notifier notify.Notifier
	signals  *repositories.SignalRepository // nil disables the journal
	logger   *zap.Logger
}

func New(cfg config.Config, source exchange.MarketDataSource, manager *strategy.StrategyManager,
	notifier notify.Notifier, signals *repositories.SignalRepository, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		source:   source,
		manager:  manager,
		notifier: notifier,
		signals:  signals,
		logger:   logger.Named("runner"),
	}
}

// Run executes one cycle immediately, then one per configured interval
// until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.logStartupBalance(ctx)

	ticker := time.NewTicker(r.cfg.Runner.CycleInterval)
	defer ticker.Stop()

	r.logger.Info("runner started",
		zap.Duration("cycle_interval", r.cfg.Runner.CycleInterval),
		zap.Int("max_parallel", r.cfg.Runner.MaxParallel),
	)

	r.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return
		case <-ticker.C:
			r.runCycle(ctx)
		}
	}
}

type symbolResult struct {
	symbol  models.Symbol
	signals []models.SignalModel
	err     error
}

func (r *Runner) runCycle(ctx context.Context) {
	start := time.Now()
	metrics.CyclesTotal.Inc()

	symbols, err := r.resolveSymbols(ctx)
	if err != nil {
		r.logger.Warn("symbol resolution failed, skipping cycle", zap.Error(err))
		r.countFailure("", err)
		return
	}
	if len(symbols) == 0 {
		r.logger.Warn("no tradable symbols resolved, skipping cycle")
		return
	}

	// Each symbol gets its own result slot so the goroutines never share
	// state. Strategy errors stay in the slot; the group itself only runs
	// the fanout.
	results := make([]symbolResult, len(symbols))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Runner.MaxParallel)
	for i, symbol := range symbols {
		group.Go(func() error {
			r.logger.Debug("evaluating symbol", zap.String("symbol", symbol.Name))
			signals, err := r.manager.ExecuteAll(groupCtx, r.source, symbol)
			results[i] = symbolResult{symbol: symbol, signals: signals, err: err}
			return nil
		})
	}
	_ = group.Wait()

	if ctx.Err() != nil {
		return
	}

	for _, res := range results {
		if res.err != nil {
			r.recordFailures(res.symbol.Name, res.err)
		}
		for _, signal := range res.signals {
			r.handleSignal(ctx, signal)
		}
	}

	metrics.SymbolsEvaluated.Add(float64(len(symbols)))
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("cycle complete",
		zap.Int("symbols", len(symbols)),
		zap.Duration("took", time.Since(start)),
	)
}

// resolveSymbols maps the configured pairs onto venue reference data. An
// empty configured list switches to discovery: every pair the venue
// reports as trading whose quote asset is allowlisted. Unknown and
// non-trading pairs are skipped, not fatal, so one delisting cannot
// stall the loop.
func (r *Runner) resolveSymbols(ctx context.Context) ([]models.Symbol, error) {
	listed, err := r.source.GetTradingSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venue symbols: %w", err)
	}

	if len(r.cfg.Symbols) == 0 {
		return r.discoverSymbols(listed), nil
	}

	byName := make(map[string]models.Symbol, len(listed))
	for _, s := range listed {
		byName[s.Name] = s
	}

	out := make([]models.Symbol, 0, len(r.cfg.Symbols))
	for _, name := range r.cfg.Symbols {
		s, ok := byName[name]
		if !ok {
			r.logger.Warn("symbol not listed on venue, skipping", zap.String("symbol", name))
			continue
		}
		if !s.IsTrading() {
			r.logger.Warn("symbol not tradable, skipping",
				zap.String("symbol", name),
				zap.String("status", s.Status),
			)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Runner) discoverSymbols(listed []models.Symbol) []models.Symbol {
	allowed := make(map[string]bool, len(r.cfg.Runner.QuoteAssets))
	for _, quote := range r.cfg.Runner.QuoteAssets {
		allowed[quote] = true
	}

	var out []models.Symbol
	for _, s := range listed {
		if s.IsTrading() && allowed[s.QuoteAsset] {
			out = append(out, s)
		}
	}
	// Venue listing order is arbitrary; keep cycles comparable.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	r.logger.Info("discovered symbols from venue",
		zap.Int("count", len(out)),
		zap.Strings("quote_assets", r.cfg.Runner.QuoteAssets),
	)
	return out
}

// handleSignal routes one aggregate signal. Hold signals are counted and
// logged but never pushed or journaled; a quiet market should not page
// anyone.
func (r *Runner) handleSignal(ctx context.Context, signal models.SignalModel) {
	metrics.SignalsEmitted.WithLabelValues(string(signal.Direction)).Inc()

	if !signal.IsActionable() {
		r.logger.Debug("no entry this cycle",
			zap.String("symbol", signal.Symbol),
			zap.String("strategy", signal.Strategy),
			zap.String("rationale", signal.Rationale),
		)
		return
	}

	r.logSpread(ctx, signal.Symbol)

	if err := r.notifier.Notify(ctx, signal); err != nil {
		r.logger.Warn("notification failed",
			zap.String("symbol", signal.Symbol),
			zap.Error(err),
		)
		metrics.SoftFailures.WithLabelValues("notify").Inc()
	}

	if r.signals != nil {
		if err := r.signals.Create(&signal); err != nil {
			r.logger.Warn("journal write failed",
				zap.String("symbol", signal.Symbol),
				zap.Error(err),
			)
			metrics.SoftFailures.WithLabelValues("journal").Inc()
		}
	}
}

// logSpread records the top of book next to an actionable signal so the
// journal entry can be judged against the liquidity it fired into.
func (r *Runner) logSpread(ctx context.Context, symbol string) {
	book, err := r.source.GetOrderBook(ctx, symbol, r.cfg.Runner.OrderBookDepth)
	if err != nil {
		r.countFailure(symbol, err)
		return
	}
	bid, okBid := book.BestBid()
	ask, okAsk := book.BestAsk()
	if !okBid || !okAsk {
		r.logger.Warn("order book empty at signal time", zap.String("symbol", symbol))
		return
	}
	r.logger.Info("order book at signal time",
		zap.String("symbol", symbol),
		zap.Float64("best_bid", bid.Price),
		zap.Float64("best_ask", ask.Price),
		zap.Float64("spread", ask.Price-bid.Price),
	)
}

// logStartupBalance surfaces the account the configured credentials see.
// A venue that rejects the keys shows up here, on the first log page,
// instead of as a string of failed cycles.
func (r *Runner) logStartupBalance(ctx context.Context) {
	balance, err := r.source.GetBalance(ctx)
	if err != nil {
		r.logger.Warn("startup balance check failed", zap.Error(err))
		return
	}
	assets := make([]string, 0, len(balance.Assets))
	for asset := range balance.Assets {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	r.logger.Info("account balance snapshot",
		zap.String("venue", balance.Venue),
		zap.Strings("assets", assets),
	)
}

// recordFailures unpacks the combined error from a symbol's evaluation
// and counts each cause separately.
func (r *Runner) recordFailures(symbol string, err error) {
	for _, cause := range multierr.Errors(err) {
		r.countFailure(symbol, cause)
	}
}

func (r *Runner) countFailure(symbol string, err error) {
	kind := classifyFailure(err)
	metrics.SoftFailures.WithLabelValues(kind).Inc()
	r.logger.Warn("evaluation failed",
		zap.String("symbol", symbol),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

func classifyFailure(err error) string {
	var insufficient *indicators.InsufficientDataError
	switch {
	case errors.Is(err, exchange.ErrDataUnavailable):
		return "data_unavailable"
	case errors.As(err, &insufficient):
		return "insufficient_data"
	default:
		return "other"
	}
}
