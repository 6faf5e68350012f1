package crawler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	ctxStatus = "status"
	ctxBody   = "body"
)

var errNoResponse = errors.New("no response received")

// Fetcher downloads a page body. Non-2xx responses are errors.
type Fetcher interface {
	Fetch(pageURL string) (string, error)
}

// CollyFetcher is a Fetcher backed by a synchronous colly collector.
// It is safe for concurrent use by several workers.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a fetcher with an explicit request timeout.
// The frontier decides what gets revisited, so colly's own visited tracking is off.
func NewCollyFetcher(timeout time.Duration, userAgent string, maxBodyBytes int) *CollyFetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.UserAgent(userAgent),
		colly.MaxBodySize(maxBodyBytes),
	)
	c.SetRequestTimeout(timeout)

	// Hand the response back through the request context
	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, string(r.Body))
	})

	return &CollyFetcher{collector: c}
}

// Fetch performs a single GET. It is never retried.
func (f *CollyFetcher) Fetch(pageURL string) (string, error) {
	ctx := colly.NewContext()

	if err := f.collector.Request(http.MethodGet, pageURL, nil, ctx, nil); err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	status, ok := ctx.GetAny(ctxStatus).(int)
	if !ok {
		return "", &FetchError{URL: pageURL, Err: errNoResponse}
	}
	if status < 200 || status > 299 {
		return "", &FetchError{URL: pageURL, StatusCode: status}
	}

	return ctx.Get(ctxBody), nil
}
