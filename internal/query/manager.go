package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/remote"
)

// ErrNoActiveQuery is returned by Manager.Refetch when nothing is subscribed
// to the requested signature.
var ErrNoActiveQuery = errors.New("no active query for signature")

type refetcher interface {
	Refetch(ctx context.Context) error
}

// Manager is the shared context for every lifecycle in a process: it owns the
// remote client, the single-flight group (keyed by store and signature) and
// the set of active subscriptions.
type Manager struct {
	client remote.Client
	logger *slog.Logger

	flight singleflight.Group

	mu       sync.Mutex
	inflight map[cache.Signature]int
	active   map[cache.Signature]map[refetcher]struct{}
}

// NewManager builds a Manager. A nil logger uses slog.Default().
func NewManager(client remote.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client:   client,
		logger:   logger,
		inflight: make(map[cache.Signature]int),
		active:   make(map[cache.Signature]map[refetcher]struct{}),
	}
}

// Client returns the remote client used for fetches.
func (m *Manager) Client() remote.Client {
	return m.client
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *slog.Logger {
	return m.logger
}

// InFlight reports whether a fetch for sig is outstanding.
func (m *Manager) InFlight(sig cache.Signature) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight[sig] > 0
}

// Refetch re-runs every active lifecycle subscribed to sig. Lifecycles for
// the same signature share a single remote call.
func (m *Manager) Refetch(ctx context.Context, sig cache.Signature) error {
	m.mu.Lock()
	targets := make([]refetcher, 0, len(m.active[sig]))
	for r := range m.active[sig] {
		targets = append(targets, r)
	}
	m.mu.Unlock()

	if len(targets) == 0 {
		return fmt.Errorf("refetch %s: %w", sig, ErrNoActiveQuery)
	}

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, r := range targets {
		i, r := i, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.Refetch(ctx)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// do runs fn at most once concurrently per key. Callers arriving while a call
// is outstanding wait for and share its result. In-flight counts are kept per
// signature.
func (m *Manager) do(sig cache.Signature, key string, fn func() (any, error)) (any, error) {
	m.mu.Lock()
	m.inflight[sig]++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inflight[sig]--
		if m.inflight[sig] <= 0 {
			delete(m.inflight, sig)
		}
		m.mu.Unlock()
	}()

	v, err, _ := m.flight.Do(key, fn)
	return v, err
}

func (m *Manager) register(sig cache.Signature, r refetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[sig] == nil {
		m.active[sig] = make(map[refetcher]struct{})
	}
	m.active[sig][r] = struct{}{}
}

func (m *Manager) deregister(sig cache.Signature, r refetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active[sig], r)
	if len(m.active[sig]) == 0 {
		delete(m.active, sig)
	}
}
