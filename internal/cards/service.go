package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/mutation"
	"github.com/five82/cardwatch/internal/query"
	"github.com/five82/cardwatch/internal/remote"
)

// Service exposes the card operations on top of a shared query manager and
// cache.
type Service struct {
	m     *query.Manager
	store *cache.Store[Card]
	co    *mutation.Coordinator[Card]
}

// NewService wires a Service. The manager supplies the remote client and the
// logger.
func NewService(m *query.Manager, store *cache.Store[Card]) *Service {
	return &Service{
		m:     m,
		store: store,
		co:    mutation.NewCoordinator(m.Client(), store, m, m.Logger()),
	}
}

// Watch returns an unsubscribed lifecycle for the cards list.
func (s *Service) Watch() *query.Lifecycle[Card] {
	return query.NewLifecycle(s.m, s.store, ListQuery())
}

// Add creates a card and refetches the list so the cache holds exactly what
// the server has.
func (s *Service) Add(ctx context.Context, in NewCard) (Card, error) {
	var created Card
	_, err := s.co.Execute(ctx, AddOperation, remote.Variables{"i": in},
		func(p remote.Payload) (mutation.Outcome, error) {
			if err := p.Decode("addCard", &created); err != nil {
				return nil, err
			}
			return mutation.RefetchRequest{Signatures: []cache.Signature{ListSignature}}, nil
		})
	if err != nil {
		return Card{}, err
	}
	return created, nil
}

// Delete removes a card on the server and patches the cached list locally,
// using the id the server reports as deleted.
func (s *Service) Delete(ctx context.Context, id string) (Card, error) {
	if strings.TrimSpace(id) == "" {
		return Card{}, fmt.Errorf("card id required")
	}
	var deleted Card
	_, err := s.co.Execute(ctx, DeleteOperation, remote.Variables{"id": id},
		func(p remote.Payload) (mutation.Outcome, error) {
			if err := p.Decode("deleteCard", &deleted); err != nil {
				return nil, err
			}
			removed := deleted.ID
			if removed == "" {
				removed = id
			}
			return mutation.CachePatch[Card]{Signature: ListSignature, Apply: RemoveByID(removed)}, nil
		})
	if err != nil {
		return Card{}, err
	}
	return deleted, nil
}

// Find looks a card up by name, serving repeated lookups from cache. It
// returns nil when no card matches.
func (s *Service) Find(ctx context.Context, name string) (*Card, error) {
	found, err := query.Fetch(ctx, s.m, s.store, FindQuery(name))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}
