package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/remote"
)

var errNotSubscribed = errors.New("lifecycle is not subscribed")

// Lifecycle tracks one active subscription to a query signature.
type Lifecycle[T any] struct {
	m      *Manager
	store  *cache.Store[T]
	q      Query[T]
	sig    cache.Signature
	logger *slog.Logger

	mu         sync.Mutex
	state      NetworkState
	lastErr    error
	failures   int
	fetching   int
	subscribed bool
	ctx        context.Context
	cancel     context.CancelFunc
	unwatch    func()
	poll       *poller
	observers  map[int]func(Snapshot[T])
	nextObs    int
}

// NewLifecycle returns an Idle lifecycle for q. Nothing is fetched until
// Subscribe is called.
func NewLifecycle[T any](m *Manager, store *cache.Store[T], q Query[T]) *Lifecycle[T] {
	sig := q.Signature()
	return &Lifecycle[T]{
		m:         m,
		store:     store,
		q:         q,
		sig:       sig,
		logger:    m.logger.With("query", q.Operation.Name),
		observers: make(map[int]func(Snapshot[T])),
	}
}

// Signature returns the cache key this lifecycle reads and writes.
func (l *Lifecycle[T]) Signature() cache.Signature {
	return l.sig
}

// Subscribe activates the lifecycle. With a cache hit under CacheFirst it is
// Ready immediately; otherwise it loads from the network. A failed load leaves
// the lifecycle subscribed in the Error state and returns the error.
func (l *Lifecycle[T]) Subscribe(ctx context.Context) error {
	l.mu.Lock()
	if l.subscribed {
		l.mu.Unlock()
		return nil
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.subscribed = true
	l.unwatch = l.store.Watch(l.sig, func(cache.Entry[T]) { l.notify() })
	l.mu.Unlock()

	l.m.register(l.sig, l)

	var err error
	_, cached := l.store.Read(l.sig)
	if cached && l.q.FetchPolicy == CacheFirst {
		l.setState(Ready)
	} else {
		if !l.begin(Loading) {
			return errNotSubscribed
		}
		err = l.load(l.subscriptionContext())
		l.finish(err)
	}

	if l.q.PollInterval > 0 {
		if perr := l.StartPolling(l.q.PollInterval); perr != nil {
			return errors.Join(err, perr)
		}
	}
	return err
}

// Refetch re-runs the query and overwrites the cache on success. Concurrent
// calls for the same signature share one remote request. On failure the last
// good data stays visible and the error is returned. A lifecycle that is not
// subscribed does not fetch.
func (l *Lifecycle[T]) Refetch(ctx context.Context) error {
	if !l.begin(Refetching) {
		return errNotSubscribed
	}
	err := l.load(ctx)
	l.finish(err)
	return err
}

// StartPolling refetches every interval until StopPolling or Close. Calling
// it again replaces the previous schedule.
func (l *Lifecycle[T]) StartPolling(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", interval)
	}

	l.mu.Lock()
	if !l.subscribed {
		l.mu.Unlock()
		return errNotSubscribed
	}
	if l.poll != nil {
		l.poll.stop()
	}
	l.poll = startPoller(l.ctx, interval, l.pollTick)
	l.mu.Unlock()

	l.logger.Debug("polling started", "interval", interval)
	l.notify()
	return nil
}

// StopPolling cancels future ticks. A poll already in flight still completes
// and applies its result. Stopping when not polling is a no-op.
func (l *Lifecycle[T]) StopPolling() {
	l.mu.Lock()
	p := l.poll
	l.poll = nil
	l.mu.Unlock()

	if p == nil {
		return
	}
	p.stop()
	l.logger.Debug("polling stopped")
	l.notify()
}

// PollInterval returns the active polling interval, zero when disabled.
func (l *Lifecycle[T]) PollInterval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.poll == nil {
		return 0
	}
	return l.poll.interval
}

// Snapshot returns the current observable state.
func (l *Lifecycle[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	snap := Snapshot[T]{
		State:               l.state,
		ConsecutiveFailures: l.failures,
	}
	if l.state == Error {
		snap.Err = l.lastErr
	}
	if l.poll != nil {
		snap.PollInterval = l.poll.interval
	}
	l.mu.Unlock()

	if ent, ok := l.store.Read(l.sig); ok {
		snap.Data = ent.Data
		snap.HasData = true
		snap.LastUpdated = ent.LastUpdated
	}
	return snap
}

// Observe registers fn to receive a snapshot on every state change and every
// cache commit for the signature. fn runs on the goroutine that caused the
// change and must not block.
func (l *Lifecycle[T]) Observe(fn func(Snapshot[T])) func() {
	l.mu.Lock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}

// Close ends the subscription: polling stops, the lifecycle is forgotten by
// the manager and observers are dropped. Cached data is left in place.
func (l *Lifecycle[T]) Close() {
	l.StopPolling()

	l.mu.Lock()
	if !l.subscribed {
		l.mu.Unlock()
		return
	}
	l.subscribed = false
	l.cancel()
	unwatch := l.unwatch
	l.unwatch = nil
	l.state = Idle
	l.observers = make(map[int]func(Snapshot[T]))
	l.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	l.m.deregister(l.sig, l)
}

func (l *Lifecycle[T]) pollTick(ctx context.Context) {
	if !l.beginPoll() {
		l.logger.Debug("poll tick skipped, fetch in flight")
		return
	}
	err := l.load(ctx)
	l.finish(err)
	if err != nil {
		l.logger.Warn("poll failed", "error", err)
	}
}

// load fetches through the manager's single-flight group and writes the
// result to the store.
func (l *Lifecycle[T]) load(ctx context.Context) error {
	_, err := l.m.do(l.sig, flightKey(l.store, l.sig), func() (any, error) {
		return fetchAndStore(ctx, l.m.client, l.store, l.q, l.sig)
	})
	return err
}

func (l *Lifecycle[T]) subscriptionContext() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

// begin marks a fetch as started and reports false, without starting
// anything, when the lifecycle is not subscribed. A fetch joining one that
// already owns the state leaves it alone, so Loading is not overwritten by a
// coalesced refetch.
func (l *Lifecycle[T]) begin(state NetworkState) bool {
	l.mu.Lock()
	if !l.subscribed {
		l.mu.Unlock()
		return false
	}
	if l.fetching == 0 {
		l.state = state
	}
	l.fetching++
	l.mu.Unlock()
	l.notify()
	return true
}

// beginPoll starts a poll fetch unless one is already running. The check and
// the claim happen under l.mu, so two ticks or a tick racing this lifecycle's
// own Refetch never both fetch. A fetch for the same signature started
// elsewhere right after the check still joins this one through single-flight.
func (l *Lifecycle[T]) beginPoll() bool {
	l.mu.Lock()
	if !l.subscribed || l.fetching > 0 || l.m.InFlight(l.sig) {
		l.mu.Unlock()
		return false
	}
	l.state = PollingRefetch
	l.fetching++
	l.mu.Unlock()
	l.notify()
	return true
}

func (l *Lifecycle[T]) finish(err error) {
	l.mu.Lock()
	l.fetching--
	if err != nil {
		l.lastErr = err
		l.failures++
	} else {
		l.lastErr = nil
		l.failures = 0
	}
	if l.fetching == 0 && l.subscribed {
		if err != nil {
			l.state = Error
		} else {
			l.state = Ready
		}
	}
	l.mu.Unlock()
	l.notify()
}

func (l *Lifecycle[T]) setState(state NetworkState) {
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	l.notify()
}

func (l *Lifecycle[T]) notify() {
	l.mu.Lock()
	if len(l.observers) == 0 {
		l.mu.Unlock()
		return
	}
	obs := make([]func(Snapshot[T]), 0, len(l.observers))
	for _, fn := range l.observers {
		obs = append(obs, fn)
	}
	l.mu.Unlock()

	snap := l.Snapshot()
	for _, fn := range obs {
		fn(snap)
	}
}

// Fetch performs a one-shot read of q: a cached entry is returned as is under
// CacheFirst, otherwise the query runs through the manager's single-flight
// group and the result is cached.
func Fetch[T any](ctx context.Context, m *Manager, store *cache.Store[T], q Query[T]) ([]T, error) {
	sig := q.Signature()
	if q.FetchPolicy == CacheFirst {
		if ent, ok := store.Read(sig); ok {
			return ent.Data, nil
		}
	}
	v, err := m.do(sig, flightKey(store, sig), func() (any, error) {
		return fetchAndStore(ctx, m.client, store, q, sig)
	})
	if err != nil {
		return nil, err
	}
	data, ok := v.([]T)
	if !ok {
		return nil, fmt.Errorf("fetch %s: shared result has type %T", sig, v)
	}
	dup := make([]T, len(data))
	copy(dup, data)
	return dup, nil
}

// flightKey scopes single-flight to one store: callers sharing a signature
// but not a store must each fill their own.
func flightKey[T any](store *cache.Store[T], sig cache.Signature) string {
	return fmt.Sprintf("%p\x00%s", store, sig)
}

func fetchAndStore[T any](ctx context.Context, client remote.Client, store *cache.Store[T], q Query[T], sig cache.Signature) ([]T, error) {
	payload, err := client.Query(ctx, q.Operation, q.Variables)
	if err != nil {
		return nil, err
	}
	data, err := q.Decode(payload)
	if err != nil {
		return nil, &remote.Error{Op: q.Operation.Name, Message: fmt.Sprintf("decode result: %v", err), Err: err}
	}
	if data == nil {
		data = []T{}
	}
	ent := store.Write(sig, data)
	return ent.Data, nil
}
