package crawler

import (
	"context"
	"sync"
	"time"
)

// Frontier is a thread-safe FIFO of candidate URLs plus the set of claimed URLs.
//
// Enqueue never deduplicates; the same URL may sit in the queue many times.
// Deduplication happens in TryClaim, which pops and marks visited under one
// lock, so each URL is handed out at most once for the Frontier's lifetime.
type Frontier struct {
	mu        sync.Mutex
	items     []string
	visited   map[string]struct{}
	running   bool
	discarded int

	claimWait time.Duration
	notify    chan struct{} // buffered(1), poked on every enqueue
	stopped   chan struct{}
	stopOnce  sync.Once
}

// FrontierStats is a point-in-time view of the frontier
type FrontierStats struct {
	Running   bool `json:"running"`
	Pending   int  `json:"pending"`
	Visited   int  `json:"visited"`
	Discarded int  `json:"discarded"`
}

// NewFrontier creates a running frontier whose TryClaim waits up to claimWait
// for work when the queue is empty.
func NewFrontier(claimWait time.Duration) *Frontier {
	return &Frontier{
		items:     make([]string, 0),
		visited:   make(map[string]struct{}),
		running:   true,
		claimWait: claimWait,
		notify:    make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}
}

// Enqueue appends url to the pending queue. It is accepted even after Stop;
// the queue is kept but no longer claimed from.
func (f *Frontier) Enqueue(url string) {
	f.mu.Lock()
	f.items = append(f.items, url)
	f.mu.Unlock()

	f.wake()
}

// TryClaim pops URLs head to tail, discarding any already visited, and returns
// the first unvisited one after marking it visited. When the queue is empty it
// waits up to the claim timeout for an enqueue. It returns false on timeout,
// after Stop, or when ctx is done.
func (f *Frontier) TryClaim(ctx context.Context) (string, bool) {
	var timer *time.Timer

	for {
		url, ok, more := f.claimNext()
		if ok {
			if more {
				// Pass the wake-up on to another waiting worker
				f.wake()
			}
			return url, true
		}
		if !f.Running() {
			return "", false
		}

		if timer == nil {
			timer = time.NewTimer(f.claimWait)
			defer timer.Stop()
		}

		select {
		case <-f.notify:
		case <-f.stopped:
			return "", false
		case <-ctx.Done():
			return "", false
		case <-timer.C:
			return "", false
		}
	}
}

// claimNext performs one atomic pop-and-mark pass over the queue.
// more reports whether items remain after a successful claim.
func (f *Frontier) claimNext() (url string, ok, more bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return "", false, false
	}

	for len(f.items) > 0 {
		url = f.items[0]
		f.items[0] = ""
		f.items = f.items[1:]

		if _, seen := f.visited[url]; seen {
			f.discarded++
			continue
		}

		f.visited[url] = struct{}{}
		return url, true, len(f.items) > 0
	}

	return "", false, false
}

// Visited reports whether url has been claimed. The answer may be stale by the
// time the caller acts on it; TryClaim is the authoritative check.
func (f *Frontier) Visited(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, seen := f.visited[url]
	return seen
}

// Stop flips the running flag off and wakes every waiting claimer.
// Safe to call multiple times. Queue and visited set are kept.
func (f *Frontier) Stop() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()

		close(f.stopped)
	})
}

// Running reports whether claims are still being handed out
func (f *Frontier) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Stats returns a snapshot of the frontier counters
func (f *Frontier) Stats() FrontierStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	return FrontierStats{
		Running:   f.running,
		Pending:   len(f.items),
		Visited:   len(f.visited),
		Discarded: f.discarded,
	}
}

func (f *Frontier) wake() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}
