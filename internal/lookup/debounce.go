// Package lookup coordinates remote lookups that feed wizard selectors:
// debounced free-text search and per-scope result caching.
package lookup

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is sent.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces rapid query changes. Every Trigger supersedes the
// previous one; Wait only lets the latest trigger through after the delay.
// A lookup that was already issued may still complete, but IsCurrent tells
// the caller whether its result should be shown.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	token uint64
	query string
}

// NewDebouncer creates a debouncer. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger records query as the latest input and returns its token.
func (d *Debouncer) Trigger(query string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.token++
	d.query = normalize(query)
	return d.token
}

// Wait blocks for the quiet period and returns the query to look up if
// token is still the latest trigger.
func (d *Debouncer) Wait(ctx context.Context, token uint64) (string, bool) {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", false
	case <-timer.C:
	}
	return d.Ready(token)
}

// Ready reports the query for token if no later trigger happened. It is
// the non-blocking half of Wait, for callers that run their own timers.
func (d *Debouncer) Ready(token uint64) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.token || d.query == "" {
		return "", false
	}
	return d.query, true
}

// IsCurrent reports whether a result for query still matches the input.
func (d *Debouncer) IsCurrent(query string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.query != "" && normalize(query) == d.query
}

// Query returns the latest input.
func (d *Debouncer) Query() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.query
}

func normalize(q string) string {
	return strings.Join(strings.Fields(q), " ")
}
