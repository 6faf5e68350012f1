package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/lead-weaver/internal/config"
	"github.com/alvmarrod/lead-weaver/internal/crawler"
	"github.com/alvmarrod/lead-weaver/internal/events"
	"github.com/alvmarrod/lead-weaver/internal/memory"
	"github.com/alvmarrod/lead-weaver/internal/metrics"
	"github.com/alvmarrod/lead-weaver/internal/server"
	"github.com/alvmarrod/lead-weaver/internal/sink"
	"github.com/alvmarrod/lead-weaver/internal/storage"
	"github.com/alvmarrod/lead-weaver/internal/version"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewRootCmd creates the leadweaver command
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		seeds      []string
	)

	cmd := &cobra.Command{
		Use:   "leadweaver",
		Short: "Crawl websites for contact emails and stream leads live",
		Long: `Lead Weaver crawls pages reachable from seed URLs, extracts contact email
addresses, stores them as leads and streams progress to connected clients.

Seeds can be given on the command line, in the config file, or posted to
/add_url while the crawler runs.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.SeedURLs = append(cfg.SeedURLs, seeds...)
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "Path to the JSON config file")
	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "Seed URL to crawl (repeatable)")

	return cmd
}

// resultStore is what the sink writes to and the HTTP layer reads from
type resultStore interface {
	sink.Store
	server.Reader
}

func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return nil
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	if err := configureLogging(cfg.LogLevel); err != nil {
		return err
	}

	logrus.Infof("Lead Weaver v%s starting...", version.Version)
	logrus.Infof("Configuration loaded: seeds=%d, workers=%d, store=%s, listen=%s",
		len(cfg.SeedURLs), cfg.Workers, cfg.Store, cfg.ListenAddr)

	// Initialize storage
	db, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer db.Close()
	logrus.Infof("Database initialized: %s", cfg.DBPath)

	var store resultStore = db
	var mem *memory.Store
	if cfg.Store == config.StoreMemory {
		mem = memory.NewStore()
		store = mem
		logrus.Info("Keeping results in memory until shutdown")
	}

	tracker := metrics.NewTracker()
	hub := events.NewHub(cfg.EventBuffer)
	recorder := sink.NewRecorder(store, hub, tracker, cfg.EventBuffer)

	frontier := crawler.NewFrontier(cfg.ClaimTimeout())
	fetcher := crawler.NewCollyFetcher(cfg.RequestTimeout(), cfg.UserAgent, cfg.MaxBodyBytes)
	c := crawler.NewCrawler(cfg.Workers, frontier, fetcher, recorder, tracker)

	for _, seed := range cfg.SeedURLs {
		c.Enqueue(seed)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to start crawler: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.NewRouter(server.NewHandler(c, store, hub, tracker)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.Infof("HTTP server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Progress logger
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Hub first so open event streams return and the server can drain
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("HTTP server shutdown: %v", err)
		}
		return nil
	})

	runErr := g.Wait()
	terminationReason := "signal"
	if runErr != nil {
		terminationReason = "error"
	}

	logrus.Info("Step 1/4: Stopping crawler workers...")
	c.Stop()
	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout()+5*time.Second)
	if err := c.Wait(waitCtx); err != nil {
		logrus.Warnf("Workers timeout - abandoning in-flight fetches: %v", err)
	}
	cancel()

	logrus.Info("Step 2/4: Draining result sink...")
	recorder.Close()

	if mem != nil {
		logrus.Info("Step 3/4: Flushing in-memory results to database...")
		if err := mem.Flush(db); err != nil {
			logrus.Errorf("Failed to flush memory store: %v", err)
		}
	} else {
		logrus.Info("Step 3/4: Results already persisted")
	}

	logrus.Info("Step 4/4: Writing final metrics...")
	tracker.SetDuplicatesDiscarded(frontier.Stats().Discarded)
	logrus.Info("Final stats: " + tracker.LogProgress())
	if err := tracker.WriteToFile(cfg.MetricsPath, terminationReason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	logrus.Info("Graceful shutdown complete. Goodbye!")
	return runErr
}
