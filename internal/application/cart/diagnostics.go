package cart

import (
	"context"

	"github.com/amishe1/lubex-bot/internal/infrastructure/logger"
	"github.com/amishe1/lubex-bot/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DiagnosticSink is told when a stored cart could not be restored. The
// shopper is never shown these.
type DiagnosticSink interface {
	Report(ctx context.Context, key string, err error)
}

// LogSink logs reports at WARN and counts them
type LogSink struct {
	logger  *zap.Logger
	metrics *telemetry.Metrics
}

// NewLogSink creates a sink; both arguments may be nil
func NewLogSink(l *zap.Logger, m *telemetry.Metrics) *LogSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogSink{logger: l, metrics: m}
}

// Report implements DiagnosticSink
func (s *LogSink) Report(ctx context.Context, key string, err error) {
	logger.Enrich(ctx, s.logger).Warn("Discarding stored cart",
		zap.String("key", key),
		zap.Error(err),
	)
	s.metrics.ObserveCartCorruption()
}
