package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeFormat = "2006-01-02 15:04:05.999"

var (
	mu          sync.RWMutex
	global      *zap.Logger
	atomicLevel = zap.NewAtomicLevel()
)

func init() {
	_ = atomicLevel.UnmarshalText([]byte(os.Getenv("LOG_LEVEL")))
	global = MustNew(os.Getenv("GO_ENV") == "production")
}

// MustNew builds a zap logger sharing the package level. Production uses JSON
// encoding, everything else the console encoder.
func MustNew(production bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if !production {
		cfg.Encoding = "console"
	}
	cfg.Level = atomicLevel
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeFormat)
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the process-wide logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Set replaces the process-wide logger; tests use zap.NewNop() or an observer.
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// SetLevel changes the level of every logger built by MustNew at runtime.
func SetLevel(level string) {
	if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
		L().Warn("invalid log level", zap.String("level", level))
		return
	}
	L().Info("logger level updated", zap.String("level", level))
}

// Sync flushes buffered entries; errors on stdout/stderr are ignored.
func Sync() {
	_ = L().Sync()
}
