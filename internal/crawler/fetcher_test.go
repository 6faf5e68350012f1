package crawler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollyFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lead-weaver-test", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body>jane@acme.com</body></html>`)
	}))
	defer srv.Close()

	f := NewCollyFetcher(2*time.Second, "lead-weaver-test", 0)

	body, err := f.Fetch(srv.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, body, "jane@acme.com")

	// the same URL can be fetched again; the frontier owns revisit policy
	_, err = f.Fetch(srv.URL + "/")
	assert.NoError(t, err)
}

func TestCollyFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewCollyFetcher(2*time.Second, "lead-weaver-test", 0)

	_, err := f.Fetch(srv.URL + "/missing")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, srv.URL+"/missing", fetchErr.URL)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func TestCollyFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewCollyFetcher(200*time.Millisecond, "lead-weaver-test", 0)

	start := time.Now()
	_, err := f.Fetch(srv.URL + "/slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestCollyFetcher_MalformedURL(t *testing.T) {
	f := NewCollyFetcher(time.Second, "lead-weaver-test", 0)

	_, err := f.Fetch("team.html")
	require.Error(t, err)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
