// Package logging provides categorized zap loggers for logicmake. Each
// subsystem logs under its own named logger so traces from the resolver,
// the build actions and the watcher can be filtered apart.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryEngine  Category = "engine"  // resolution search
	CategoryPattern Category = "pattern" // string alignment
	CategoryBuild   Category = "build"   // satisfier, test/commands hooks
	CategoryActions Category = "actions" // shell command execution
	CategoryWatch   Category = "watch"   // filesystem watcher
	CategoryCLI     Category = "cli"     // command surface
)

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.Logger)
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Development switches to the human-oriented console encoder.
	Development bool
}

// Init builds the root logger. Safe to call more than once; later calls
// replace the root and drop cached category loggers.
func Init(opts Options) error {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return fmt.Errorf("logging: bad level %q: %w", opts.Level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logging: build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	root = logger
	loggers = make(map[Category]*zap.Logger)
	return nil
}

// Get returns the logger for a category, creating it on first use. Before
// Init it returns a no-op logger, so library code can log unconditionally.
func Get(c Category) *zap.Logger {
	mu.RLock()
	l, ok := loggers[c]
	mu.RUnlock()
	if ok {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	l = root.Named(string(c))
	loggers[c] = l
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
