package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/config"
	"github.com/five82/cardwatch/internal/memserver"
	"github.com/five82/cardwatch/internal/remote"
)

func TestOpenLogger_CreatesDirAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cardwatch.log")

	logger, closeLog, err := openLogger(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("openLogger returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("first", "n", 1)
	closeLog()

	logger, closeLog, err = openLogger(path, slog.LevelDebug)
	if err != nil {
		t.Fatalf("openLogger reopen returned error: %v", err)
	}
	logger.Debug("second")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "hidden") {
		t.Fatalf("log contains debug line below level:\n%s", got)
	}
	if !strings.Contains(got, "msg=first n=1") || !strings.Contains(got, "msg=second") {
		t.Fatalf("log missing lines:\n%s", got)
	}
}

func TestNewClient_DemoServesSeedCards(t *testing.T) {
	client, err := newClient(config.Config{}, true, slog.Default())
	if err != nil {
		t.Fatalf("newClient returned error: %v", err)
	}
	if _, ok := client.(*memserver.Server); !ok {
		t.Fatalf("client = %T, want *memserver.Server", client)
	}

	payload, err := client.Query(context.Background(), cards.ListOperation, nil)
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	var got []cards.Card
	if err := payload.Decode("cards", &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(memserver.DemoSeed()) {
		t.Fatalf("cards = %d, want %d", len(got), len(memserver.DemoSeed()))
	}
}

func TestNewClient_UsesConfiguredEndpoint(t *testing.T) {
	client, err := newClient(config.Config{Endpoint: "localhost:4100"}, false, slog.Default())
	if err != nil {
		t.Fatalf("newClient returned error: %v", err)
	}
	if _, ok := client.(*remote.HTTPClient); !ok {
		t.Fatalf("client = %T, want *remote.HTTPClient", client)
	}
}

func TestRun_FailsOnInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`poll_interval = "never"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want load config error", err)
	}
}
