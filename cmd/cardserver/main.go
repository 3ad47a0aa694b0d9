package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/five82/cardwatch/internal/memserver"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:4000", "listen address")
	failEvery := flag.Int("fail-every", 0, "fail every Nth query (0 disables)")
	latency := flag.Duration("latency", 0, "delay added to every operation")
	seed := flag.Bool("seed", true, "start with the demo cards")
	debug := flag.Bool("debug", false, "log every operation")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *failEvery < 0 || *latency < 0 {
		fmt.Fprintln(os.Stderr, "cardserver: -fail-every and -latency must not be negative")
		return 2
	}

	opts := memserver.Options{
		Latency:   *latency,
		FailEvery: *failEvery,
		Logger:    logger,
	}
	if *seed {
		opts.Seed = memserver.DemoSeed()
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", memserver.New(opts))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		logger.Info("cardserver listening", "addr", *addr, "fail_every", *failEvery, "latency", *latency)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return 1
		}
		logger.Info("cardserver stopped")
	}
	return 0
}
