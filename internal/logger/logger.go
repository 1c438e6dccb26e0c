// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	mu    sync.Mutex
)

// Init builds the global logger. Production emits JSON, anything else
// uses the console encoder. Calling Init again is a no-op.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return
	}

	var base *zap.Logger
	var err error
	if env == "production" {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		base = zap.NewNop()
	}
	sugar = base.Sugar()
}

// Replace swaps the global logger, returning a func that restores the previous one.
func Replace(l *zap.SugaredLogger) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := sugar
	sugar = l
	return func() {
		mu.Lock()
		sugar = prev
		mu.Unlock()
	}
}

// Get returns the global sugared logger, initialising a development logger on first use.
func Get() *zap.SugaredLogger {
	mu.Lock()
	l := sugar
	mu.Unlock()
	if l == nil {
		Init("development")
		return Get()
	}
	return l
}

// Named returns a child logger for one component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes buffered entries. Call before exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}
