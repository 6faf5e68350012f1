package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// Store holds leads and crawl errors in memory for fast access
type Store struct {
	leads     []storage.Lead
	errs      []storage.CrawlError
	idCounter int64 // shared auto-increment for both tables
	mu        sync.RWMutex
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		leads: make([]storage.Lead, 0),
		errs:  make([]storage.CrawlError, 0),
	}
}

// SaveLead appends a lead and returns its id
func (s *Store) SaveLead(lead storage.Lead) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idCounter++
	lead.ID = s.idCounter
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	s.leads = append(s.leads, lead)

	return lead.ID, nil
}

// SaveError appends a crawl error and returns its id
func (s *Store) SaveError(crawlErr storage.CrawlError) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idCounter++
	crawlErr.ID = s.idCounter
	if crawlErr.CreatedAt.IsZero() {
		crawlErr.CreatedAt = time.Now().UTC()
	}
	s.errs = append(s.errs, crawlErr)

	return crawlErr.ID, nil
}

// ListLeads returns up to limit leads, newest first (matches storage behavior)
func (s *Store) ListLeads(limit int) ([]storage.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.leads)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]storage.Lead, 0, n)
	for i := len(s.leads) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.leads[i])
	}
	return out, nil
}

// ListErrors returns up to limit crawl errors in insertion order
func (s *Store) ListErrors(limit int) ([]storage.CrawlError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.errs)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]storage.CrawlError, n)
	copy(out, s.errs[:n])
	return out, nil
}

// GetStats returns current row counts
func (s *Store) GetStats() (leadCount, errorCount int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.leads), len(s.errs)
}

// Flush writes all in-memory rows to SQLite storage.
// Rows are written in insertion order; ids are reassigned by the database.
func (s *Store) Flush(store *storage.Storage) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startTime := time.Now()
	logrus.Info("Starting flush to database...")

	leadsWritten := 0
	errsWritten := 0
	var firstErr error

	for _, lead := range s.leads {
		if _, err := store.SaveLead(lead); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("flush lead %s: %w", lead.Email, err)
			}
			logrus.Warnf("Failed to flush lead %s: %v", lead.Email, err)
			continue
		}
		leadsWritten++
	}

	for _, ce := range s.errs {
		if _, err := store.SaveError(ce); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("flush error for %s: %w", ce.URL, err)
			}
			logrus.Warnf("Failed to flush error for %s: %v", ce.URL, err)
			continue
		}
		errsWritten++
	}

	logrus.Infof("Flush complete: %d leads, %d errors written in %v", leadsWritten, errsWritten, time.Since(startTime))

	return firstErr
}
