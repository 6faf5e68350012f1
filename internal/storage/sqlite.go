package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT,
		company_name TEXT,
		url TEXT,
		user TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT,
		error_message TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_emails_email ON emails(email);
	CREATE INDEX IF NOT EXISTS idx_errors_url ON errors(url);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveLead inserts a lead row and returns its id.
// Leads are never deduplicated; the same email may be stored once per page and run.
func (s *Storage) SaveLead(lead Lead) (int64, error) {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO emails (email, company_name, url, user, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, lead.Email, lead.CompanyName, lead.URL, lead.User, lead.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve lead id: %w", err)
	}
	return id, nil
}

// SaveError inserts a crawl error row and returns its id
func (s *Storage) SaveError(crawlErr CrawlError) (int64, error) {
	if crawlErr.CreatedAt.IsZero() {
		crawlErr.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO errors (url, error_message, created_at)
		VALUES (?, ?, ?)
	`, crawlErr.URL, crawlErr.Message, crawlErr.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve error id: %w", err)
	}
	return id, nil
}

// ListLeads returns up to limit leads, newest first. A limit <= 0 returns all rows.
func (s *Storage) ListLeads(limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, email, company_name, url, user, created_at
		FROM emails
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.ID, &lead.Email, &lead.CompanyName, &lead.URL, &lead.User, &lead.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// ListErrors returns up to limit crawl errors in insertion order. A limit <= 0 returns all rows.
func (s *Storage) ListErrors(limit int) ([]CrawlError, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, url, error_message, created_at
		FROM errors
		ORDER BY id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list errors: %w", err)
	}
	defer rows.Close()

	crawlErrs := make([]CrawlError, 0)
	for rows.Next() {
		var ce CrawlError
		if err := rows.Scan(&ce.ID, &ce.URL, &ce.Message, &ce.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan error: %w", err)
		}
		crawlErrs = append(crawlErrs, ce)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating errors: %w", err)
	}

	return crawlErrs, nil
}

// Ping verifies the database connection is alive
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
