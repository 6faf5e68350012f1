package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/config"
	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "leadweaver", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Version)

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "config.json", flag.DefValue)

	assert.NotNil(t, cmd.Flags().Lookup("seed"))
}

func TestRootCmd_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"workers": "two"}`), 0o600))

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"--config", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestConfigureLogging(t *testing.T) {
	assert.NoError(t, configureLogging("debug"))
	assert.NoError(t, configureLogging("info"))
	assert.Error(t, configureLogging("loud"))
}

func TestRun_CrawlsSeedAndShutsDown(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<a href="/contact">Contact</a>`)
		case "/contact":
			fmt.Fprint(w, `Reach jane@acme.com`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer site.Close()

	dir := t.TempDir()
	cfg := &config.Config{
		SeedURLs:         []string{site.URL + "/"},
		Workers:          1,
		RequestTimeoutMs: 2000,
		ClaimTimeoutMs:   100,
		UserAgent:        "lead-weaver-test",
		Store:            config.StoreSQLite,
		DBPath:           filepath.Join(dir, "leads.db"),
		MetricsPath:      filepath.Join(dir, "metrics.json"),
		ListenAddr:       "127.0.0.1:0",
		EventBuffer:      16,
		LogLevel:         "warn",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- run(ctx, cfg) }()

	require.Eventually(t, func() bool {
		db, err := storage.NewStorage(cfg.DBPath)
		if err != nil {
			return false
		}
		defer db.Close()
		leads, err := db.ListLeads(0)
		return err == nil && len(leads) == 1
	}, 10*time.Second, 100*time.Millisecond)

	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	_, err := os.Stat(cfg.MetricsPath)
	assert.NoError(t, err)

	db, err := storage.NewStorage(cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()
	leads, err := db.ListLeads(0)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "jane@acme.com", leads[0].Email)
	assert.Equal(t, site.URL+"/contact", leads[0].URL)
}
