package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/query"
)

// snapshotMsg carries the latest state of the cards list.
type snapshotMsg query.Snapshot[cards.Card]

// subscribedMsg is sent once the initial subscribe has finished.
type subscribedMsg struct {
	snapshot query.Snapshot[cards.Card]
}

// actionMsg reports the outcome of a user action.
type actionMsg struct {
	text     string
	err      error
	mutation bool
}

// foundMsg reports a find-by-name lookup.
type foundMsg struct {
	name string
	card *cards.Card
	err  error
}

// waitForSnapshot blocks until the watcher signals a change, then reads the
// current snapshot so bursts of changes collapse into one render.
func waitForSnapshot(updates <-chan struct{}, w Watcher) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return snapshotMsg(w.Snapshot())
	}
}

// subscribeCmd activates the list. A failed first load is already visible
// through the snapshot, so it is only logged here; polling still starts.
func subscribeCmd(ctx context.Context, w Watcher, polling bool, interval time.Duration, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if err := w.Subscribe(ctx); err != nil {
			logger.Warn("initial cards load failed", "error", err)
		}
		if polling {
			if err := w.StartPolling(interval); err != nil {
				logger.Warn("start polling failed", "interval", interval, "error", err)
			}
		}
		return subscribedMsg{snapshot: w.Snapshot()}
	}
}

func refetchCmd(ctx context.Context, w Watcher) tea.Cmd {
	return func() tea.Msg {
		if err := w.Refetch(ctx); err != nil {
			return actionMsg{text: "Refetch", err: err}
		}
		return actionMsg{text: "Refetched"}
	}
}

func addCmd(ctx context.Context, svc CardService, in cards.NewCard) tea.Cmd {
	return func() tea.Msg {
		created, err := svc.Add(ctx, in)
		if err != nil {
			return actionMsg{text: "Add card", err: err, mutation: true}
		}
		return actionMsg{text: fmt.Sprintf("Added %s", created.CaseName), mutation: true}
	}
}

func deleteCmd(ctx context.Context, svc CardService, id string) tea.Cmd {
	return func() tea.Msg {
		deleted, err := svc.Delete(ctx, id)
		if err != nil {
			return actionMsg{text: "Delete card", err: err, mutation: true}
		}
		name := deleted.CaseName
		if name == "" {
			name = id
		}
		return actionMsg{text: fmt.Sprintf("Deleted %s", name), mutation: true}
	}
}

func findCmd(ctx context.Context, svc CardService, name string) tea.Cmd {
	return func() tea.Msg {
		card, err := svc.Find(ctx, name)
		return foundMsg{name: name, card: card, err: err}
	}
}
