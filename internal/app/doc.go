// Package app is the composition root of cardwatch.
//
// # Overview
//
// Run loads configuration, opens the log file, builds the remote client, the
// query manager and the cards cache, and hands a cards list subscription to
// the UI. Nothing here is global: every dependency is constructed in Run and
// passed down explicitly.
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read config.toml and CARDWATCH_* env
//	       ├─────> openLogger()           slog text handler on cardwatch.log
//	       ├─────> prefs.Load()           Theme and polling choice
//	       ├─────> newClient()            HTTP GraphQL client, or memserver in demo mode
//	       ├─────> query.NewManager()     Shared single-flight and refetch registry
//	       ├─────> cards.NewService()     Mutations with cache policies
//	       └─────> ui.Run()               Start TUI (blocks)
//
// # Polling
//
// Polling belongs to the list subscription, not to this package. The UI
// subscribes on start and enables polling when prefs say so; the interval is
// Options.PollEvery when set, otherwise the configured poll_interval.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration file or environment
//   - Log file cannot be created
//   - Endpoint URL cannot be parsed
//
// Everything after startup is recoverable: failed loads and polls are shown
// in the UI with the last good list kept on screen, and logged.
package app
