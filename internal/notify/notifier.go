package notify

import (
	"context"

	"CryptoSignalBot/internal/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Notifier delivers a produced signal to an external sink.
type Notifier interface {
	Notify(ctx context.Context, signal models.SignalModel) error
}

// LogNotifier writes every signal to the process log. It is always
// wired, so a run without any other sink still leaves a trace.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("signals")}
}

func (n *LogNotifier) Notify(ctx context.Context, signal models.SignalModel) error {
	n.logger.Info("signal",
		zap.String("symbol", signal.Symbol),
		zap.String("strategy", signal.Strategy),
		zap.String("direction", string(signal.Direction)),
		zap.String("timeframe", signal.Timeframe.String()),
		zap.Float64("price", signal.Price),
		zap.Float64("confidence", signal.Confidence),
		zap.String("rationale", signal.Rationale),
	)
	return nil
}

// Multi fans a signal out to every notifier. All sinks are attempted;
// failures come back combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, signal models.SignalModel) error {
	var errs error
	for _, n := range m {
		errs = multierr.Append(errs, n.Notify(ctx, signal))
	}
	return errs
}
