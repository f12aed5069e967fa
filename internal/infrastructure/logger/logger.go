// Package logger builds the zap loggers used by the storefront and admin
// commands. Logs never go to stdout by default; stdout belongs to the views.
package logger

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stderr, stdout, none, or a file path
}

// DefaultConfig logs warnings and up to stderr in console form
func DefaultConfig() *Config {
	return &Config{Level: "warn", Format: "console", Output: "stderr"}
}

// New builds a logger from cfg. A nil cfg uses DefaultConfig and output
// "none" returns a no-op logger.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if strings.EqualFold(cfg.Output, "none") {
		return zap.NewNop(), nil
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoderFor(cfg.Format), sink, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// parseLevel accepts zap's level names plus "warning". Blank or unknown
// names fall back to warn.
func parseLevel(level string) zapcore.Level {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, "warning") {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.WarnLevel
	}
	return l
}

func encoderFor(format string) zapcore.Encoder {
	if strings.EqualFold(format, "json") {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "time"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeDuration = zapcore.MillisDurationEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	// interactive sessions: no timestamp column
	ec := zap.NewDevelopmentEncoderConfig()
	ec.TimeKey = ""
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		output = "stderr"
	case "stdout":
		output = "stdout"
	}
	ws, _, err := zap.Open(output)
	if err != nil {
		return nil, fmt.Errorf("opening log output %s: %w", output, err)
	}
	return ws, nil
}

// Sync flushes buffered entries. The error a terminal returns for fsync is
// dropped.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
