// Package config loads cardwatch's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/cardwatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. CARDWATCH_* environment variables override whatever the file said
//
// # Default Values
//
//   - Endpoint: http://127.0.0.1:4000/graphql
//   - Poll interval: 500ms (used when polling is switched on)
//   - Request timeout: 5s
//   - Log directory: ~/.local/share/cardwatch
//   - Log level: info
//
// # TOML Format
//
//	endpoint = "http://127.0.0.1:4000/graphql"
//	poll_interval = "500ms"
//	request_timeout = "5s"
//	log_dir = "~/.local/share/cardwatch"
//	log_level = "debug"
//
// Durations use Go syntax and must be positive. Tilde expansion is performed
// on log_dir.
//
// # Environment
//
//   - CARDWATCH_ENDPOINT
//   - CARDWATCH_POLL_INTERVAL
//   - CARDWATCH_LOG_LEVEL
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - Invalid TOML or durations ("parse config: ...")
//   - Invalid environment values ("parse env: ...")
package config
