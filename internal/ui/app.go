package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/prefs"
	"github.com/five82/cardwatch/internal/query"
)

// Watcher is the cards list subscription the UI renders.
// *query.Lifecycle[cards.Card] implements it.
type Watcher interface {
	Subscribe(ctx context.Context) error
	Snapshot() query.Snapshot[cards.Card]
	Observe(fn func(query.Snapshot[cards.Card])) func()
	Refetch(ctx context.Context) error
	StartPolling(interval time.Duration) error
	StopPolling()
	PollInterval() time.Duration
}

// CardService runs card mutations and lookups. *cards.Service implements it.
type CardService interface {
	Add(ctx context.Context, in cards.NewCard) (cards.Card, error)
	Delete(ctx context.Context, id string) (cards.Card, error)
	Find(ctx context.Context, name string) (*cards.Card, error)
}

var (
	_ Watcher     = (*query.Lifecycle[cards.Card])(nil)
	_ CardService = (*cards.Service)(nil)
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultFindName     = "snow"
)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Watch        Watcher
	Service      CardService
	PollInterval time.Duration
	ThemeName    string
	Polling      bool
	PrefsPath    string
	Logger       *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	watch        Watcher
	service      CardService
	pollInterval time.Duration
	prefsPath    string
	logger       *slog.Logger

	// Snapshot delivery
	updates       chan struct{}
	stopObserving func()

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int

	// Data state
	snapshot query.Snapshot[cards.Card]
	selected int
	polling  bool
	pending  int

	// Find state
	finding   bool
	findInput textinput.Model
	found     *foundResult

	// Last action outcome
	status    string
	statusErr bool
}

type foundResult struct {
	name string
	card *cards.Card
}

// New creates a new Bubble Tea model and starts observing opts.Watch.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	input := textinput.New()
	input.Placeholder = defaultFindName
	input.Prompt = "find: "
	input.CharLimit = 64

	// Observers must not block, so they only signal; the model pulls the
	// latest snapshot when it gets around to it.
	updates := make(chan struct{}, 1)
	stop := opts.Watch.Observe(func(query.Snapshot[cards.Card]) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:           ctx,
		watch:         opts.Watch,
		service:       opts.Service,
		pollInterval:  pollInterval,
		prefsPath:     prefsPath,
		logger:        logger,
		updates:       updates,
		stopObserving: stop,
		theme:         GetTheme(themeName),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		spinner:       sp,
		snapshot:      opts.Watch.Snapshot(),
		polling:       opts.Polling,
		findInput:     input,
	}
}

// Close stops observing the watcher.
func (m Model) Close() {
	if m.stopObserving != nil {
		m.stopObserving()
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		subscribeCmd(m.ctx, m.watch, m.polling, m.pollInterval, m.logger),
		waitForSnapshot(m.updates, m.watch),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finding {
			return m.handleFindKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(query.Snapshot[cards.Card](msg))
		return m, waitForSnapshot(m.updates, m.watch)

	case subscribedMsg:
		m.applySnapshot(msg.snapshot)
		return m, nil

	case actionMsg:
		if msg.mutation && m.pending > 0 {
			m.pending--
		}
		m.setStatus(msg.text, msg.err)
		return m, nil

	case foundMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Find %q", msg.name), msg.err)
			return m, nil
		}
		m.found = &foundResult{name: msg.name, card: msg.card}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.pending++
		return m, addCmd(m.ctx, m.service, cards.DemoCard)

	case key.Matches(msg, m.keys.Delete):
		card, ok := m.selectedCard()
		if !ok {
			m.setStatus("Nothing to delete", nil)
			return m, nil
		}
		m.pending++
		return m, deleteCmd(m.ctx, m.service, card.ID)

	case key.Matches(msg, m.keys.Refetch):
		return m, refetchCmd(m.ctx, m.watch)

	case key.Matches(msg, m.keys.TogglePoll):
		m.togglePolling()
		return m, nil

	case key.Matches(msg, m.keys.Find):
		m.finding = true
		m.findInput.SetValue("")
		return m, m.findInput.Focus()

	case key.Matches(msg, m.keys.Left):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.selected < len(m.snapshot.Data)-1 {
			m.selected++
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleFindKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.finding = false
		m.findInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		m.finding = false
		m.findInput.Blur()
		name := strings.TrimSpace(m.findInput.Value())
		if name == "" {
			name = defaultFindName
		}
		return m, findCmd(m.ctx, m.service, name)
	}

	var cmd tea.Cmd
	m.findInput, cmd = m.findInput.Update(msg)
	return m, cmd
}

func (m *Model) applySnapshot(snap query.Snapshot[cards.Card]) {
	m.snapshot = snap
	if m.selected >= len(snap.Data) {
		m.selected = max(len(snap.Data)-1, 0)
	}
}

func (m *Model) togglePolling() {
	if m.watch.PollInterval() > 0 {
		m.watch.StopPolling()
		m.polling = false
		m.setStatus("Polling stopped", nil)
	} else {
		if err := m.watch.StartPolling(m.pollInterval); err != nil {
			m.setStatus("Start polling", err)
			return
		}
		m.polling = true
		m.setStatus(fmt.Sprintf("Polling every %s", m.pollInterval), nil)
	}
	m.snapshot = m.watch.Snapshot()
	m.savePrefs()
}

func (m *Model) setStatus(text string, err error) {
	if err != nil {
		m.status = fmt.Sprintf("%s failed: %v", text, err)
		m.statusErr = true
		return
	}
	m.status = text
	m.statusErr = false
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, Polling: m.polling}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "error", err)
	}
}

func (m Model) selectedCard() (cards.Card, bool) {
	if m.selected < 0 || m.selected >= len(m.snapshot.Data) {
		return cards.Card{}, false
	}
	return m.snapshot.Data[m.selected], true
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
