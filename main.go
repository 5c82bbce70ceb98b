package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"f1databridge/pkg/bridge"
	"f1databridge/pkg/cache"
	"f1databridge/pkg/caster"
	"f1databridge/pkg/config"
	"f1databridge/pkg/ergast"
	"f1databridge/pkg/f1"
	"f1databridge/pkg/fetch"
	"f1databridge/pkg/logging"
	"f1databridge/pkg/openf1"
)

func main() {
	// the caller reads the envelope, so the exit code stays 0
	run(context.Background(), os.Args[1:], os.Stdout)
}

// run answers one request and writes its envelope to stdout.
func run(ctx context.Context, args []string, stdout io.Writer) {
	env := handle(ctx, args)

	line, err := caster.JSONCaster[bridge.Envelope]{}.To(env)
	if err != nil {
		line, _ = caster.JSONCaster[bridge.Envelope]{}.To(bridge.Failure(err))
	}
	fmt.Fprintln(stdout, line)
}

func handle(ctx context.Context, args []string) bridge.Envelope {
	if _, env, ok := bridge.Route(args); !ok {
		return env
	}

	cfg, err := config.Load()
	if err != nil {
		return bridge.Failure(err)
	}

	// an unwritable log file yields a discarding logger; the request still runs
	logger, logCloser, _ := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath()})
	defer logCloser.Close()

	var store fetch.Store
	if !cfg.CacheDisabled {
		manager, err := cache.Open(cfg.CachePath())
		if err != nil {
			logger.Error("failed to open cache", slog.String("path", cfg.CachePath()), slog.String("error", err.Error()))
			return bridge.Failure(err)
		}
		defer manager.Close()
		store = manager
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	newFetcher := func(ratePerSecond float64) *fetch.Client {
		return fetch.NewClient(fetch.Options{
			HTTPClient: httpClient,
			Store:      store,
			TTL:        cfg.CacheTTL,
			Rate:       ratePerSecond,
			UserAgent:  cfg.UserAgent,
			Logger:     logger,
		})
	}

	source := f1.NewClient(
		ergast.NewClient(cfg.ErgastURL, newFetcher(cfg.ErgastRate)),
		openf1.NewClient(cfg.OpenF1URL, newFetcher(cfg.OpenF1Rate)),
		logger,
	)
	return bridge.New(source, logger).Dispatch(ctx, args)
}
