// Package logging provides category-based structured logging for the
// scoring engine and its CLI, wrapping go.uber.org/zap the way the teacher
// repository wraps a logger per subsystem, but backed by zap's structured
// core and gopkg.in/natefinch/lumberjack.v2 rotation instead of a hand-rolled
// file writer.
package logging

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Category names one of the logger's fixed subsystems.
type Category string

const (
	CategoryScoring Category = "scoring"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryIO      Category = "io"
)

// Config drives logger construction; it is decoded from the YAML config's
// logging section.
type Config struct {
	Level    string // debug|info|warn|error
	Format   string // console|json
	FilePath string // optional; empty means stderr only
	MaxSizeMB int
	MaxBackups int
	MaxAgeDays int
}

// Logger dispenses a *zap.SugaredLogger per category, all sharing one
// underlying zap core so a single Sync/rotation policy governs all of them.
type Logger struct {
	base *zap.Logger
	mu   sync.RWMutex
	byCat map[Category]*zap.SugaredLogger
}

// New builds a Logger from cfg. Never returns a nil *Logger; a zero Config
// falls back to info/console/stderr.
func New(cfg Config) (*Logger, error) {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var writer zapcore.WriteSyncer
	if cfg.FilePath != "" {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	} else {
		writer = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	core := zapcore.NewCore(encoder, writer, level)
	base := zap.New(core)

	return &Logger{base: base, byCat: make(map[Category]*zap.SugaredLogger)}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// For returns the sugared logger for category, creating and caching it on
// first use.
func (l *Logger) For(category Category) *zap.SugaredLogger {
	l.mu.RLock()
	sl, ok := l.byCat[category]
	l.mu.RUnlock()
	if ok {
		return sl
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if sl, ok := l.byCat[category]; ok {
		return sl
	}
	sl = l.base.With(zap.String("category", string(category))).Sugar()
	l.byCat[category] = sl
	return sl
}

// Sync flushes the underlying zap core; call once at process shutdown.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Timer measures one named phase's elapsed time, mirroring the original
// implementation's c.time_block instrumentation.
type Timer struct {
	log   *zap.SugaredLogger
	label string
	start time.Time
}

// StartTimer begins timing label under category and logs its start at debug.
func (l *Logger) StartTimer(category Category, label string) *Timer {
	sl := l.For(category)
	sl.Debugw("phase started", "phase", label)
	return &Timer{log: sl, label: label, start: time.Now()}
}

// Stop logs the elapsed time since StartTimer at info level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.log.Infow("phase completed", "phase", t.label, "elapsedMs", elapsed.Milliseconds())
	return elapsed
}
