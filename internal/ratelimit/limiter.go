package ratelimit

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// Class identifies a category of request with its own rate-limit budget.
type Class string

const (
	ClassAPI    Class = "API"
	ClassLogin  Class = "LOGIN"
	ClassUpload Class = "UPLOAD"
)

// ClassConfig holds the fixed-window budget for a single class.
type ClassConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultClasses returns the default per-class budgets.
func DefaultClasses() map[Class]ClassConfig {
	return map[Class]ClassConfig{
		ClassAPI:    {Window: 60 * time.Second, MaxRequests: 100},
		ClassLogin:  {Window: 60 * time.Second, MaxRequests: 5},
		ClassUpload: {Window: 60 * time.Second, MaxRequests: 10},
	}
}

// unknownClassDenyWindow backs the RetryAfter/ResetAt advertised when a
// check arrives for a class with no configured budget.
const unknownClassDenyWindow = 60 * time.Second

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter int       // whole seconds until the window resets; set when rejected
	ResetAt    time.Time // end of the current window
}

type record struct {
	class       Class
	count       int
	windowStart time.Time
}

// Config holds limiter construction options.
type Config struct {
	Classes map[Class]ClassConfig // defaults to DefaultClasses when nil
	Now     func() time.Time      // injectable clock; defaults to time.Now
}

// Limiter is an in-memory fixed-window request counter keyed by
// (identity, class). Counters live for the process lifetime; idle entries
// are evicted by Sweep, which the background cleanup manager calls
// periodically.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	classes map[Class]ClassConfig
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Limiter with an empty counter table.
func New(cfg Config, logger *slog.Logger) *Limiter {
	classes := cfg.Classes
	if classes == nil {
		classes = DefaultClasses()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		records: make(map[string]*record),
		classes: classes,
		now:     now,
		logger:  logger,
	}
}

func recordKey(identity string, class Class) string {
	return identity + "|" + string(class)
}

// Check counts one request for (identity, class) and returns the decision.
// The MaxRequests-th request in a window is the last one allowed; rejected
// requests do not advance the counter, so the caller sees exactly
// MaxRequests allowed checks per window. An unknown class is denied rather
// than failing open; misconfiguration must not disable limiting.
func (l *Limiter) Check(identity string, class Class) Decision {
	cfg, ok := l.classes[class]
	if !ok {
		l.logger.Error("rate limit check for unknown class",
			slog.String("class", string(class)),
			slog.String("identity", identity))
		return Decision{
			Allowed:    false,
			RetryAfter: int(unknownClassDenyWindow.Seconds()),
			ResetAt:    l.now().Add(unknownClassDenyWindow),
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := recordKey(identity, class)

	rec, exists := l.records[key]
	if !exists || !now.Before(rec.windowStart.Add(cfg.Window)) {
		rec = &record{class: class, windowStart: now}
		l.records[key] = rec
	}

	resetAt := rec.windowStart.Add(cfg.Window)

	if rec.count >= cfg.MaxRequests {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: int(math.Ceil(resetAt.Sub(now).Seconds())),
			ResetAt:    resetAt,
		}
	}

	rec.count++
	return Decision{
		Allowed:   true,
		Remaining: cfg.MaxRequests - rec.count,
		ResetAt:   resetAt,
	}
}

// Reset drops the counter for (identity, class). Used by administrative
// reset and tests.
func (l *Limiter) Reset(identity string, class Class) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, recordKey(identity, class))
}

// Sweep evicts counters whose window started at least two full windows ago,
// bounding the table's memory over the process lifetime. Returns the number
// of entries removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, rec := range l.records {
		cfg, ok := l.classes[rec.class]
		if !ok || !now.Before(rec.windowStart.Add(2*cfg.Window)) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked (identity, class) entries.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
