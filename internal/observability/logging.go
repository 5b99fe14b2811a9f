// Package observability provides zap logger construction for the CLI and
// pipeline components.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger for command execution. It defaults
// to console output at info level on stderr and is reconfigured by Init
// once configuration is loaded.
var CLILogger *zap.Logger

func init() {
	logger, err := NewLogger("info", "CONSOLE")
	if err != nil {
		logger = zap.NewNop()
	}
	CLILogger = logger
}

// Init reconfigures CLILogger from loaded configuration.
func Init(level, profile string) error {
	logger, err := NewLogger(level, profile)
	if err != nil {
		return err
	}
	CLILogger = logger
	return nil
}

// NewLogger builds a zap logger.
//
// profile selects the encoder: STRUCTURED emits JSON for log aggregation,
// CONSOLE emits human-readable output. Both write to stderr so stdout stays
// clean for command output.
func NewLogger(level, profile string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch profile {
	case "STRUCTURED":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "CONSOLE", "":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown logging profile %q", profile)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
	return zap.New(core), nil
}

// Sync flushes buffered log entries. Called on process exit.
func Sync() {
	if CLILogger != nil {
		_ = CLILogger.Sync()
	}
}
