package crawler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/metrics"
	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// Sink receives crawl results. Implementations must not block the caller.
type Sink interface {
	RecordLead(lead storage.Lead)
	RecordError(crawlErr storage.CrawlError)
	Progress(message string)
}

// Crawler pulls URLs from the frontier, fetches them, reports leads and
// errors to the sink and feeds discovered links back into the frontier.
type Crawler struct {
	frontier *Frontier
	fetcher  Fetcher
	links    LinkSource
	sink     Sink
	tracker  *metrics.Tracker
	workers  int

	started atomic.Bool
	wg      sync.WaitGroup
	done    chan struct{}
}

// Status is the crawler state exposed to the control surface
type Status struct {
	FrontierStats
	Workers int `json:"workers"`
}

// NewCrawler creates a crawler with the given number of workers.
// A nil tracker gets a private one.
func NewCrawler(workers int, frontier *Frontier, fetcher Fetcher, sink Sink, tracker *metrics.Tracker) *Crawler {
	if workers < 1 {
		workers = 1
	}
	if tracker == nil {
		tracker = metrics.NewTracker()
	}

	return &Crawler{
		frontier: frontier,
		fetcher:  fetcher,
		links:    DocumentLinks{},
		sink:     sink,
		tracker:  tracker,
		workers:  workers,
		done:     make(chan struct{}),
	}
}

// Start launches the workers. Cancelling ctx is equivalent to calling Stop.
func (c *Crawler) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	logrus.Infof("Starting %d crawler workers", c.workers)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i+1)
	}

	go func() {
		c.wg.Wait()
		close(c.done)
	}()

	return nil
}

// Stop prevents any further claims. Fetches already in flight finish and
// report their results. Safe to call multiple times.
func (c *Crawler) Stop() {
	if c.frontier.Running() {
		logrus.Info("Stopping crawler...")
	}
	c.frontier.Stop()
}

// Wait blocks until every worker has returned or ctx is done.
// It returns immediately for a crawler that was never started.
func (c *Crawler) Wait(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	select {
	case <-c.done:
		logrus.Info("Crawler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once all workers have exited
func (c *Crawler) Done() <-chan struct{} {
	return c.done
}

// Enqueue adds a URL to the frontier
func (c *Crawler) Enqueue(url string) {
	c.frontier.Enqueue(url)
}

// Running reports whether the crawler still claims new work
func (c *Crawler) Running() bool {
	return c.frontier.Running()
}

// Status returns a snapshot of the crawl state
func (c *Crawler) Status() Status {
	return Status{
		FrontierStats: c.frontier.Stats(),
		Workers:       c.workers,
	}
}

// worker claims and processes URLs until the frontier stops
func (c *Crawler) worker(ctx context.Context, id int) {
	defer c.wg.Done()

	logrus.Infof("Worker %d started", id)

	for c.frontier.Running() && ctx.Err() == nil {
		pageURL, ok := c.frontier.TryClaim(ctx)
		if !ok {
			continue
		}
		c.process(id, pageURL)
	}

	if ctx.Err() != nil {
		c.Stop()
	}
	logrus.Infof("Worker %d received stop signal", id)
}

// process handles one claimed URL. No error escapes it.
func (c *Crawler) process(id int, pageURL string) {
	c.tracker.IncrementURLsClaimed()
	c.tracker.SetDuplicatesDiscarded(c.frontier.Stats().Discarded)

	baseOrigin, pagePath := SplitURL(pageURL)

	logrus.Infof("Worker %d: scraping %s", id, pageURL)
	c.sink.Progress("Scraping URL: " + pageURL)

	start := time.Now()
	body, err := c.fetcher.Fetch(pageURL)
	c.tracker.RecordFetchTime(time.Since(start))
	if err != nil {
		logrus.Warnf("Worker %d: error processing %s: %v", id, pageURL, err)
		c.tracker.IncrementPagesFailed()
		c.sink.RecordError(storage.CrawlError{URL: pageURL, Message: err.Error()})
		return
	}
	c.tracker.IncrementPagesFetched()

	emails := ExtractEmails(body)
	for _, email := range emails {
		c.sink.RecordLead(NewLead(email, pageURL))
	}
	c.tracker.AddLeadsFound(len(emails))

	hrefs, err := c.links.Links(body)
	if err != nil {
		perr := &ParseError{URL: pageURL, Err: err}
		logrus.Warnf("Worker %d: %v", id, perr)
		c.sink.RecordError(storage.CrawlError{URL: pageURL, Message: perr.Error()})
		return
	}

	enqueued := 0
	for _, href := range hrefs {
		link := Normalize(href, baseOrigin, pagePath)
		// Advisory only; TryClaim enforces single processing
		if c.frontier.Visited(link) {
			continue
		}
		c.frontier.Enqueue(link)
		enqueued++
	}
	c.tracker.AddLinksEnqueued(enqueued)

	logrus.Debugf("Worker %d: %s gave %d leads, %d links enqueued", id, pageURL, len(emails), enqueued)
}
