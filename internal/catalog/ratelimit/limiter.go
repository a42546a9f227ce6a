// Package ratelimit guards the catalog API quota with a sliding
// per-minute window and a rolling daily counter.
package ratelimit

import (
	"context"
	"sync"
	"time"

	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

type Config struct {
	ShortLimit   int `envconfig:"CATALOG_RATE_SHORT_LIMIT" default:"5"`
	ShortWindow  int `envconfig:"CATALOG_RATE_SHORT_WINDOW_SECONDS" default:"60"`
	DailyLimit   int `envconfig:"CATALOG_RATE_DAILY_LIMIT" default:"50000"`
	SafetyMargin int `envconfig:"CATALOG_RATE_SAFETY_MARGIN_MS" default:"50"`
}

// Stats is a point-in-time snapshot of limiter usage.
type Stats struct {
	CallsLastWindow int
	ShortLimit      int
	CallsToday      int
	DailyLimit      int
	DailyResetIn    time.Duration
}

// Limiter admits calls only while both the short window and the daily
// budget have room, blocking the caller otherwise. A blocked Acquire
// releases the lock while it sleeps so concurrent callers are not
// serialized behind the wait.
type Limiter struct {
	mu         sync.Mutex
	shortLimit int
	window     time.Duration
	dailyLimit int
	margin     time.Duration

	recent     []time.Time
	daily      int
	dailyReset time.Time

	now func() time.Time
}

func New(cfg Config) *Limiter {
	if cfg.ShortLimit <= 0 {
		cfg.ShortLimit = 5
	}
	if cfg.ShortWindow <= 0 {
		cfg.ShortWindow = 60
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = 50000
	}
	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = 50
	}
	l := &Limiter{
		shortLimit: cfg.ShortLimit,
		window:     time.Duration(cfg.ShortWindow) * time.Second,
		dailyLimit: cfg.DailyLimit,
		margin:     time.Duration(cfg.SafetyMargin) * time.Millisecond,
		now:        time.Now,
	}
	l.dailyReset = l.now().Add(24 * time.Hour)
	return l
}

// Acquire blocks until a call slot is available or ctx is done.
// On success exactly one slot is consumed in both counters.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !now.Before(l.dailyReset) {
		l.daily = 0
		l.dailyReset = now.Add(24 * time.Hour)
	}

	for l.daily >= l.dailyLimit {
		wait := l.dailyReset.Sub(now)
		logx.Warn().
			Dur("wait", wait).
			Int("daily_limit", l.dailyLimit).
			Msg("catalog daily quota exhausted, waiting for reset")
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		now = l.now()
		l.daily = 0
		l.dailyReset = now.Add(24 * time.Hour)
	}

	l.evict(now)
	for len(l.recent) >= l.shortLimit {
		wait := l.window - now.Sub(l.recent[0]) + l.margin
		logx.Debug().
			Dur("wait", wait).
			Int("short_limit", l.shortLimit).
			Msg("catalog per-minute quota reached, waiting")
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		now = l.now()
		l.evict(now)
	}

	l.recent = append(l.recent, now)
	l.daily++
	return nil
}

// Stats reports current usage. Expired window entries are evicted
// before counting.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)
	resetIn := l.dailyReset.Sub(now)
	if resetIn < 0 {
		resetIn = 0
	}
	return Stats{
		CallsLastWindow: len(l.recent),
		ShortLimit:      l.shortLimit,
		CallsToday:      l.daily,
		DailyLimit:      l.dailyLimit,
		DailyResetIn:    resetIn,
	}
}

// evict drops window timestamps older than the window. Callers hold l.mu.
func (l *Limiter) evict(now time.Time) {
	i := 0
	for i < len(l.recent) && now.Sub(l.recent[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.recent = append(l.recent[:0], l.recent[i:]...)
	}
}

// sleep waits for d with the lock released so other goroutines can
// read stats or queue up. The lock is re-acquired before returning.
func (l *Limiter) sleep(ctx context.Context, d time.Duration) error {
	l.mu.Unlock()
	defer l.mu.Lock()

	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
