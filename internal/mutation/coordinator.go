package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/query"
	"github.com/five82/cardwatch/internal/remote"
)

// Outcome is what a success handler asks the coordinator to do once the
// server has confirmed a mutation: a CachePatch, a RefetchRequest, or nil for
// nothing.
type Outcome interface {
	outcome()
}

// CachePatch rewrites one cache entry locally, without a network round trip.
type CachePatch[T any] struct {
	Signature cache.Signature
	Apply     cache.UpdateFunc[T]
}

func (CachePatch[T]) outcome() {}

// RefetchRequest re-runs the active queries for each signature and lets
// their results overwrite the cache.
type RefetchRequest struct {
	Signatures []cache.Signature
}

func (RefetchRequest) outcome() {}

// SuccessFunc inspects a confirmed mutation result. A non-nil error aborts
// before any cache change and is returned from Execute.
type SuccessFunc func(remote.Payload) (Outcome, error)

// Refetcher re-runs the active queries for a signature.
type Refetcher interface {
	Refetch(ctx context.Context, sig cache.Signature) error
}

// Ensure the query manager can serve refetch requests.
var _ Refetcher = (*query.Manager)(nil)

// Coordinator issues mutations and applies their cache consequences after the
// server confirms them.
type Coordinator[T any] struct {
	client    remote.Client
	store     *cache.Store[T]
	refetcher Refetcher
	logger    *slog.Logger
}

// NewCoordinator builds a Coordinator. A nil logger uses slog.Default().
func NewCoordinator[T any](client remote.Client, store *cache.Store[T], refetcher Refetcher, logger *slog.Logger) *Coordinator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator[T]{
		client:    client,
		store:     store,
		refetcher: refetcher,
		logger:    logger,
	}
}

// Execute sends the mutation. On success onSuccess (if any) decides how the
// cache follows: a patch is applied before Execute returns, a refetch is
// awaited before Execute returns. A remote failure is returned as is and the
// cache is not touched.
func (c *Coordinator[T]) Execute(ctx context.Context, op remote.Operation, vars remote.Variables, onSuccess SuccessFunc) (remote.Payload, error) {
	payload, err := c.client.Mutate(ctx, op, vars)
	if err != nil {
		c.logger.Warn("mutation failed", "mutation", op.Name, "error", err)
		return nil, err
	}
	if onSuccess == nil {
		return payload, nil
	}

	out, err := onSuccess(payload)
	if err != nil {
		return payload, fmt.Errorf("%s success handler: %w", op.Name, err)
	}

	switch o := out.(type) {
	case nil:
	case CachePatch[T]:
		if o.Apply == nil {
			return payload, fmt.Errorf("%s: unsupported outcome: cache patch without Apply", op.Name)
		}
		c.store.Update(o.Signature, o.Apply)
	case *CachePatch[T]:
		if o == nil || o.Apply == nil {
			return payload, fmt.Errorf("%s: unsupported outcome: nil cache patch", op.Name)
		}
		c.store.Update(o.Signature, o.Apply)
	case RefetchRequest:
		c.refetch(ctx, op.Name, o.Signatures)
	case *RefetchRequest:
		if o == nil {
			return payload, fmt.Errorf("%s: unsupported outcome: nil refetch request", op.Name)
		}
		c.refetch(ctx, op.Name, o.Signatures)
	default:
		return payload, fmt.Errorf("%s: unsupported outcome %T", op.Name, out)
	}
	return payload, nil
}

// refetch runs the requested refetches in parallel and waits for all of
// them. Failures are logged: the mutation itself already succeeded and each
// lifecycle reports its own error state.
func (c *Coordinator[T]) refetch(ctx context.Context, mutation string, sigs []cache.Signature) {
	if c.refetcher == nil || len(sigs) == 0 {
		return
	}
	var g errgroup.Group
	for _, sig := range sigs {
		sig := sig
		g.Go(func() error {
			err := c.refetcher.Refetch(ctx, sig)
			switch {
			case err == nil:
			case errors.Is(err, query.ErrNoActiveQuery):
				c.logger.Warn("refetch skipped, query not active", "mutation", mutation, "query", string(sig))
			default:
				c.logger.Warn("refetch after mutation failed", "mutation", mutation, "query", string(sig), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
