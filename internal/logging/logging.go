// Package logging builds the zap logger shared by every service.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cleared-dev/ledger/internal/config"
)

// Logging profiles.
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// New returns a logger for cfg writing JSON lines to w, tagged with a fresh
// run_id so every line of one invocation can be correlated.
func New(cfg config.LoggingConfig, w io.Writer) (*zap.Logger, error) {
	encoderCfg, err := encoderConfig(cfg.Environment)
	if err != nil {
		return nil, err
	}
	level, err := resolveLevel(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core).With(zap.String("run_id", uuid.NewString())), nil
}

func encoderConfig(environment string) (zapcore.EncoderConfig, error) {
	var ec zapcore.EncoderConfig
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case EnvironmentDevelopment, "local":
		ec = zap.NewDevelopmentEncoderConfig()
	case EnvironmentProduction, "":
		ec = zap.NewProductionEncoderConfig()
	default:
		return ec, fmt.Errorf("invalid logging environment %q", environment)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec, nil
}

func resolveLevel(cfg config.LoggingConfig) (zap.AtomicLevel, error) {
	if strings.TrimSpace(cfg.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(cfg.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}
	if strings.EqualFold(cfg.Environment, EnvironmentDevelopment) {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}
