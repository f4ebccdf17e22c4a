package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Limiter bounds the number of spend attempts per card within a fixed
// time bucket. The whole counter map is replaced once per interval by a
// background sweep aligned to Start time, so the window boundary is
// coarse rather than sliding: a card spending at second 59 and again at
// second 61 sees a fresh counter.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	cron   *cron.Cron
}

// New creates a limiter allowing up to limit attempts per key per window
func New(limit int) *Limiter {
	return &Limiter{
		counts: make(map[string]int),
		limit:  limit,
	}
}

// Start launches the background sweep clearing all counters every interval
func (l *Limiter) Start(interval time.Duration) error {
	l.cron = cron.New()
	if _, err := l.cron.AddFunc(fmt.Sprintf("@every %s", interval), l.Clear); err != nil {
		return fmt.Errorf("failed to schedule counter sweep: %w", err)
	}
	l.cron.Start()
	return nil
}

// Stop halts the background sweep
func (l *Limiter) Stop() {
	if l.cron != nil {
		l.cron.Stop()
	}
}

// Allow increments the counter for key and reports whether the
// post-increment count is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[key]++
	return l.counts[key] <= l.limit
}

// Rollback decrements the counter for key by one, so a spend attempt that
// failed downstream is not held against the card.
func (l *Limiter) Rollback(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[key] > 0 {
		l.counts[key]--
	}
}

// Clear replaces the whole counter map in one exclusive step
func (l *Limiter) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts = make(map[string]int)
}
