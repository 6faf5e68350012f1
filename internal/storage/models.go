package storage

import "time"

// Lead is one contact email found on a crawled page
type Lead struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	URL         string    `json:"url"`
	User        string    `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
}

// CrawlError records a URL whose fetch or parse failed
type CrawlError struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Message   string    `json:"error_message"`
	CreatedAt time.Time `json:"created_at"`
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	URLsClaimed         int       `json:"urls_claimed"`
	PagesFetched        int       `json:"pages_fetched"`
	PagesFailed         int       `json:"pages_failed"`
	LeadsFound          int       `json:"leads_found"`
	LinksEnqueued       int       `json:"links_enqueued"`
	DuplicatesDiscarded int       `json:"duplicates_discarded"`
	RecordsDropped      int       `json:"records_dropped"`
	TotalFetchTimeMs    int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs      int64     `json:"avg_fetch_time_ms"`
	TerminationReason   string    `json:"termination_reason,omitempty"`
}
