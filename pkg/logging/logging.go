package logging

import (
	"go.uber.org/zap"
)

// Logger is the process-wide diagnostic logger. User-facing output goes
// through pkg/output/terminal; this logger carries orchestrator and server
// diagnostics.
var Logger = zap.NewNop().Sugar()

// Init builds the logger. In debug mode it logs at debug level with
// development formatting; otherwise warnings and above.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = logger.Sugar()
	return nil
}
