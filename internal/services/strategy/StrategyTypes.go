package strategy

import (
	"context"

	"CryptoSignalBot/internal/models"
)

// DataAccess is the market data surface strategies read. The exchange
// adapters satisfy it; tests substitute fixtures.
type DataAccess interface {
	GetCandlestickData(ctx context.Context, symbol string, timeframe models.Timeframe, count int) (models.CandleSeries, error)
}

// Strategy evaluates one symbol and returns the signals it produced this
// cycle. Implementations are stateless across cycles: output depends only
// on the fetched series and configuration.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, access DataAccess, symbol models.Symbol) ([]models.SignalModel, error)
}

// Registry holds strategies in registration order. Registering a name
// again replaces the earlier entry without moving its slot.
type Registry struct {
	order      []string
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

func (r *Registry) Register(s Strategy) {
	name := s.Name()
	if _, exists := r.strategies[name]; !exists {
		r.order = append(r.order, name)
	}
	r.strategies[name] = s
}

// All returns the registered strategies in registration order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}

// screenResult is one screen's verdict: the direction it endorses (hold
// when its conditions are not met), a [0,1] score feeding confidence,
// and a human-readable detail line.
type screenResult struct {
	direction models.SignalDirection
	score     float64
	detail    string
}
