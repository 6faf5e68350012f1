// Package sink persists crawl results and republishes them to observers.
package sink

import (
	"fmt"
	"sync"

	"github.com/alvmarrod/lead-weaver/internal/events"
	"github.com/alvmarrod/lead-weaver/internal/metrics"
	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// Store is the row store the recorder writes to
type Store interface {
	SaveLead(lead storage.Lead) (int64, error)
	SaveError(crawlErr storage.CrawlError) (int64, error)
}

type record struct {
	lead     *storage.Lead
	crawlErr *storage.CrawlError
}

// Recorder is the crawl result sink. Record calls only enqueue; a single
// goroutine persists each record and then broadcasts it.
type Recorder struct {
	store   Store
	hub     *events.Hub
	tracker *metrics.Tracker

	mu     sync.RWMutex // guards closed against sends on queue
	closed bool
	queue  chan record
	done   chan struct{}
}

// NewRecorder creates a recorder and starts its writer goroutine
func NewRecorder(store Store, hub *events.Hub, tracker *metrics.Tracker, buffer int) *Recorder {
	if buffer < 1 {
		buffer = 1
	}
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	r := &Recorder{
		store:   store,
		hub:     hub,
		tracker: tracker,
		queue:   make(chan record, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// RecordLead queues a lead for persistence and broadcast
func (r *Recorder) RecordLead(lead storage.Lead) {
	r.submit(record{lead: &lead}, "lead "+lead.Email)
}

// RecordError queues a crawl error for persistence and broadcast
func (r *Recorder) RecordError(crawlErr storage.CrawlError) {
	r.submit(record{crawlErr: &crawlErr}, "error for "+crawlErr.URL)
}

// Progress broadcasts a best-effort log line; it is not persisted
func (r *Recorder) Progress(message string) {
	r.hub.Publish(events.LogEvent(message))
}

func (r *Recorder) submit(rec record, what string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		logrus.Warnf("Recorder closed, dropping %s", what)
		r.tracker.IncrementRecordsDropped()
		return
	}

	select {
	case r.queue <- rec:
	default:
		logrus.Warnf("Recorder buffer full, dropping %s", what)
		r.tracker.IncrementRecordsDropped()
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for rec := range r.queue {
		switch {
		case rec.lead != nil:
			id, err := r.store.SaveLead(*rec.lead)
			if err != nil {
				// Observers get the failure instead of a lead that was never stored
				logrus.Errorf("Failed to save lead %s: %v", rec.lead.Email, err)
				r.tracker.IncrementRecordsDropped()
				r.hub.Publish(events.ErrorEvent(storage.CrawlError{
					URL:     rec.lead.URL,
					Message: fmt.Sprintf("save lead %s: %v", rec.lead.Email, err),
				}))
				continue
			}
			rec.lead.ID = id
			r.hub.Publish(events.LeadEvent(*rec.lead))

		case rec.crawlErr != nil:
			id, err := r.store.SaveError(*rec.crawlErr)
			if err != nil {
				logrus.Errorf("Failed to save error for %s: %v", rec.crawlErr.URL, err)
				r.tracker.IncrementRecordsDropped()
				continue
			}
			rec.crawlErr.ID = id
			r.hub.Publish(events.ErrorEvent(*rec.crawlErr))
		}
	}
}

// Close stops accepting records and waits until the buffer is drained.
// Safe to call multiple times.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	<-r.done
}
