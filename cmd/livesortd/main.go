// Command livesortd runs the full stack against a real HTTP API: sqlite
// storage, resty remote client, Prometheus metrics, and a periodic
// refresh loop. The sorted snapshots are logged as they arrive.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/livesort/metrics/prom"
	"github.com/IvanBrykalov/livesort/policy"
	"github.com/IvanBrykalov/livesort/remote/restyclient"
	"github.com/IvanBrykalov/livesort/repo"
	"github.com/IvanBrykalov/livesort/store/sqlitestore"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:9000", "remote API base URL")
		dsn      = flag.String("dsn", "file:livesort.db", "sqlite DSN")
		every    = flag.Duration("every", 30*time.Second, "refresh trigger interval")
		maxAge   = flag.Duration("max-age", time.Minute, "refresh gate TTL (0 = always refresh)")
		metrics  = flag.String("metrics", ":8080", "Prometheus listen address (empty = off)")
		logLevel = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           parseLevel(*logLevel),
		Prefix:          "livesortd",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := sqlitestore.Open(ctx, sqlitestore.Config{DSN: *dsn})
	if err != nil {
		logger.Fatal("open store", "err", err)
	}
	defer st.Close()

	client, err := restyclient.New(restyclient.Config{BaseURL: *apiURL})
	if err != nil {
		logger.Fatal("build client", "err", err)
	}

	var gate policy.Refresh = policy.Always{}
	if *maxAge > 0 {
		gate = policy.NewTTL(*maxAge, nil)
	}

	r := repo.New(repo.Options{
		Store:   st,
		Remote:  client,
		Gate:    gate,
		Metrics: prom.New(nil, "livesort", "daemon", nil),
		Logger:  logger,
	})

	if *metrics != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metrics, nil); err != nil {
				logger.Error("metrics endpoint", "err", err)
			}
		}()
	}

	ch, err := r.Sorted(ctx)
	if err != nil {
		logger.Fatal("subscribe", "err", err)
	}
	go func() {
		for recs := range ch {
			logger.Info("sorted snapshot", "count", len(recs))
			for i, rec := range recs {
				logger.Debug("entry", "pos", i, "id", rec.ID, "name", rec.Name)
			}
		}
	}()

	// Fire-and-forget refresh triggers; failures only affect the trigger,
	// the stream keeps serving the last stored state.
	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		if err := r.RefreshAll(ctx); err != nil {
			logger.Warn("refresh failed", "err", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
