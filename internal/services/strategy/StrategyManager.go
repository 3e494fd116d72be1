package strategy

import (
	"context"
	"fmt"

	"CryptoSignalBot/internal/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// StrategyManager runs the registered strategies against a symbol. One
// strategy failing never blocks the others; failures come back combined
// alongside whatever signals did get produced.
type StrategyManager struct {
	registry *Registry
	logger   *zap.Logger
}

func NewStrategyManager(logger *zap.Logger) *StrategyManager {
	return &StrategyManager{
		registry: NewRegistry(),
		logger:   logger.Named("strategy-manager"),
	}
}

func (m *StrategyManager) Register(s Strategy) {
	m.registry.Register(s)
	m.logger.Info("registered strategy", zap.String("strategy", s.Name()))
}

// Strategies returns the registered strategies in registration order.
func (m *StrategyManager) Strategies() []Strategy {
	return m.registry.All()
}

// ExecuteAll evaluates the symbol with every strategy in registration
// order and concatenates their signals in that same order.
func (m *StrategyManager) ExecuteAll(ctx context.Context, access DataAccess, symbol models.Symbol) ([]models.SignalModel, error) {
	var (
		signals []models.SignalModel
		errs    error
	)

	for _, strat := range m.registry.All() {
		if err := ctx.Err(); err != nil {
			return signals, multierr.Append(errs, err)
		}

		out, err := strat.Execute(ctx, access, symbol)
		if err != nil {
			m.logger.Warn("strategy failed",
				zap.String("strategy", strat.Name()),
				zap.String("symbol", symbol.Name),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("strategy %s: %w", strat.Name(), err))
			continue
		}
		signals = append(signals, out...)
	}

	return signals, errs
}
