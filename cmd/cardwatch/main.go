package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/cardwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override prefs path (optional)")
	poll := flag.Duration("poll", 0, "polling interval when polling is on (optional, defaults to poll_interval)")
	demo := flag.Bool("demo", false, "use an in-process card backend instead of the endpoint")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Demo:       *demo,
	}
	if *poll > 0 {
		opts.PollEvery = *poll
	} else if *poll < 0 {
		fmt.Fprintf(os.Stderr, "cardwatch: -poll must be positive, got %v\n", *poll)
		return 2
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "cardwatch: %v\n", err)
		return 1
	}
	return 0
}
