package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAlreadyStarted is returned by Start on a crawler that was started before
var ErrAlreadyStarted = errors.New("crawler already started")

// FetchError reports a page that could not be downloaded: transport failure,
// timeout, malformed URL or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a body that could not be parsed for links.
// It is not recorded; the page simply contributes no links.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
