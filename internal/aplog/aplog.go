// Package aplog provides the structured logger used across INTERCEPT:
// a zap development encoder with a compact timestamp and caller
// annotation, plus a throttled-warning helper for noisy subprocess
// chatter.
package aplog

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var atomicLevel = zap.NewAtomicLevel()

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006/01/02 15:04:05.000"))
}

// New returns a sugared logger tagged with the given component name.
func New(name string) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = timeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("aplog: can't build logger: %v", err))
	}

	return logger.Sugar().Named(name)
}

// NewChild returns a sugared logger intended for tagging the captured
// stdout/stderr of a spawned decoder process. It omits the caller
// annotation since every line already carries the process name.
func NewChild(mode string) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeTime = timeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("aplog: can't build child logger: %v", err))
	}

	return logger.Sugar().Named(mode)
}

// SetLevel adjusts the global log level at runtime.
func SetLevel(level string) error {
	var l zapcore.Level
	if err := (&l).UnmarshalText([]byte(level)); err != nil {
		return err
	}
	atomicLevel.SetLevel(l)
	return nil
}

// Throttled wraps a sugared logger to suppress redundant warnings,
// backing off exponentially between repeats of the same call site. It
// is meant for parser decode-failure paths that could otherwise flood
// the log during a noisy capture.
type Throttled struct {
	mu        sync.Mutex
	slog      *zap.SugaredLogger
	next      time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	curDelay  time.Duration
}

var (
	throttledMu sync.Mutex
	throttled   = make(map[string]*Throttled)
)

// GetThrottled returns a Throttled logger unique to the call site,
// allocating one on first use. Safe for concurrent use by multiple
// parser goroutines sharing the same call site.
func GetThrottled(slog *zap.SugaredLogger, start, max time.Duration) *Throttled {
	var key string
	if _, file, line, ok := runtime.Caller(1); ok {
		key = file + ":" + strconv.Itoa(line)
	} else {
		key = "unknown"
	}

	throttledMu.Lock()
	defer throttledMu.Unlock()
	t, ok := throttled[key]
	if !ok {
		t = &Throttled{
			next:      time.Now(),
			baseDelay: start,
			curDelay:  start,
			maxDelay:  max,
		}
		throttled[key] = t
	}
	t.slog = slog
	return t
}

func (t *Throttled) ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now := time.Now(); now.After(t.next) {
		t.next = now.Add(t.curDelay)
		t.curDelay *= 2
		if t.curDelay > t.maxDelay {
			t.curDelay = t.maxDelay
		}
		return true
	}
	return false
}

// Warnf issues a WARN message if the throttle window has elapsed.
func (t *Throttled) Warnf(format string, args ...interface{}) {
	if t.ready() {
		t.slog.Warnf(format, args...)
	}
}

// Clear resets the throttle window to its base delay.
func (t *Throttled) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next = time.Now()
	t.curDelay = t.baseDelay
}
