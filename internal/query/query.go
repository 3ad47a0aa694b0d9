package query

import (
	"time"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/remote"
)

// FetchPolicy controls whether a subscription may be satisfied from cache.
type FetchPolicy int

const (
	// CacheFirst uses a cached entry when one exists and only goes to the
	// network on a miss.
	CacheFirst FetchPolicy = iota
	// NetworkOnly always fetches on subscribe and still writes the result.
	NetworkOnly
)

// Query describes a list-shaped read operation.
type Query[T any] struct {
	Operation remote.Operation
	Variables remote.Variables
	// Decode extracts the list from the response payload.
	Decode func(remote.Payload) ([]T, error)

	FetchPolicy FetchPolicy
	// PollInterval starts polling on subscribe when positive.
	PollInterval time.Duration
}

// Signature returns the cache key for the query.
func (q Query[T]) Signature() cache.Signature {
	return cache.NewSignature(q.Operation.Name, q.Variables)
}

// NetworkState is the network status of a single subscription.
type NetworkState int

const (
	Idle NetworkState = iota
	Loading
	Refetching
	PollingRefetch
	Error
	Ready
)

func (s NetworkState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Refetching:
		return "refetching"
	case PollingRefetch:
		return "polling"
	case Error:
		return "error"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// InFlight reports whether the state has a fetch outstanding.
func (s NetworkState) InFlight() bool {
	return s == Loading || s == Refetching || s == PollingRefetch
}

// Snapshot is what a subscriber sees at a point in time. Data is always the
// last good cached result, including while a refetch is running or after a
// failed one.
type Snapshot[T any] struct {
	State               NetworkState
	Data                []T
	HasData             bool
	Err                 error
	LastUpdated         time.Time
	ConsecutiveFailures int
	PollInterval        time.Duration
}

// IsOffline returns true when the endpoint has failed several fetches in a row.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}
