package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/recruitdash/recruitdash/internal/logger"
)

// Persister stores the encoded snapshot blob. Load returns (nil, nil) when
// nothing has been stored yet.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

const saveTimeout = 5 * time.Second

type flushWaiter struct {
	gen  uint64
	done chan struct{}
}

// writer saves snapshots on one background goroutine. Only the most recent
// snapshot is kept; older unsaved ones are skipped.
type writer struct {
	p   Persister
	log *logger.Logger

	mu      sync.Mutex
	latest  []byte
	queued  uint64
	saved   uint64
	waiters []flushWaiter
	closed  bool

	kick chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newWriter(p Persister, log *logger.Logger) *writer {
	w := &writer{
		p:    p,
		log:  log,
		kick: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// schedule queues data and returns immediately.
func (w *writer) schedule(data []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.latest = data
	w.queued++
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.kick:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if w.saved == w.queued {
			w.mu.Unlock()
			return
		}
		data, gen := w.latest, w.queued
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := w.p.Save(ctx, data); err != nil {
			w.log.Warn("persist draft snapshot: %v", err)
		}
		cancel()

		w.mu.Lock()
		w.saved = gen
		kept := w.waiters[:0]
		for _, fw := range w.waiters {
			if fw.gen <= gen {
				close(fw.done)
				continue
			}
			kept = append(kept, fw)
		}
		w.waiters = kept
		w.mu.Unlock()
	}
}

// flush waits until everything scheduled before the call has been written.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.saved >= w.queued {
		w.mu.Unlock()
		return nil
	}
	fw := flushWaiter{gen: w.queued, done: make(chan struct{})}
	w.waiters = append(w.waiters, fw)
	w.mu.Unlock()

	select {
	case <-fw.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close writes anything pending and stops the goroutine.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.quit)
	<-w.done
}
