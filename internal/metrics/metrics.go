package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/storage"
)

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu               sync.Mutex
	data             storage.Metrics
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementURLsClaimed increments the claimed URL counter
func (t *Tracker) IncrementURLsClaimed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.URLsClaimed++
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// AddLeadsFound adds n to the lead counter
func (t *Tracker) AddLeadsFound(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LeadsFound += n
}

// AddLinksEnqueued adds n to the enqueued link counter
func (t *Tracker) AddLinksEnqueued(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksEnqueued += n
}

// IncrementRecordsDropped counts a sink record that was never persisted
func (t *Tracker) IncrementRecordsDropped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RecordsDropped++
}

// SetDuplicatesDiscarded stores the frontier's running discard count
func (t *Tracker) SetDuplicatesDiscarded(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.DuplicatesDiscarded = n
}

// RecordFetchTime records a page fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Finalize metrics
	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.data.TotalFetchTimeMs = t.totalFetchTimeMs

	if t.fetchCount > 0 {
		t.data.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for periodic console updates
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("URLs: %d claimed, %d duplicates | Pages: %d fetched, %d failed | Leads: %d | Links: %d enqueued",
		t.data.URLsClaimed,
		t.data.DuplicatesDiscarded,
		t.data.PagesFetched,
		t.data.PagesFailed,
		t.data.LeadsFound,
		t.data.LinksEnqueued,
	)
}
