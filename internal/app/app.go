package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/config"
	"github.com/five82/cardwatch/internal/memserver"
	"github.com/five82/cardwatch/internal/prefs"
	"github.com/five82/cardwatch/internal/query"
	"github.com/five82/cardwatch/internal/remote"
	"github.com/five82/cardwatch/internal/ui"
)

// Options configure the cardwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/cardwatch/prefs.toml
	PollEvery  time.Duration // zero uses the configured poll_interval
	Demo       bool          // serve cards from an in-process backend
}

// demoLatency makes loading and refetching visible in demo mode.
const demoLatency = 300 * time.Millisecond

// Run boots the cardwatch TUI until the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg.LogPath(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := newClient(cfg, opts.Demo, logger)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	manager := query.NewManager(client, logger)
	svc := cards.NewService(manager, &cache.Store[cards.Card]{})
	watch := svc.Watch()
	defer watch.Close()

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	logger.Info("cardwatch starting",
		"endpoint", cfg.Endpoint,
		"demo", opts.Demo,
		"poll_interval", interval,
		"polling", userPrefs.Polling,
	)

	return ui.Run(ui.Options{
		Context:      ctx,
		Watch:        watch,
		Service:      svc,
		PollInterval: interval,
		ThemeName:    userPrefs.Theme,
		Polling:      userPrefs.Polling,
		PrefsPath:    opts.PrefsPath,
		Logger:       logger,
	})
}

func newClient(cfg config.Config, demo bool, logger *slog.Logger) (remote.Client, error) {
	if demo {
		return memserver.New(memserver.Options{
			Seed:    memserver.DemoSeed(),
			Latency: demoLatency,
			Logger:  logger.With("component", "memserver"),
		}), nil
	}
	return remote.NewHTTPClient(cfg.Endpoint, cfg.RequestTimeout)
}
