package cards_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/cardwatch/internal/cache"
	"github.com/five82/cardwatch/internal/cards"
	"github.com/five82/cardwatch/internal/memserver"
	"github.com/five82/cardwatch/internal/query"
	"github.com/five82/cardwatch/internal/remote"
)

// countingClient records how many queries reach the backend.
type countingClient struct {
	remote.Client
	queries atomic.Int32
}

func (c *countingClient) Query(ctx context.Context, op remote.Operation, vars remote.Variables) (remote.Payload, error) {
	c.queries.Add(1)
	return c.Client.Query(ctx, op, vars)
}

func newService(t *testing.T, opts memserver.Options) (*cards.Service, *countingClient, *cache.Store[cards.Card]) {
	t.Helper()
	client := &countingClient{Client: memserver.New(opts)}
	store := &cache.Store[cards.Card]{}
	return cards.NewService(query.NewManager(client, nil), store), client, store
}

func TestService_AddRefetchesList(t *testing.T) {
	svc, client, _ := newService(t, memserver.Options{NewID: func() string { return "1" }})
	ctx := context.Background()

	list := svc.Watch()
	require.NoError(t, list.Subscribe(ctx))
	t.Cleanup(list.Close)

	snap := list.Snapshot()
	assert.Equal(t, query.Ready, snap.State)
	assert.Empty(t, snap.Data)

	created, err := svc.Add(ctx, cards.DemoCard)
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	snap = list.Snapshot()
	assert.Equal(t, query.Ready, snap.State)
	assert.Equal(t, []cards.Card{{ID: "1", CaseName: "HT-18TEST", Name: "test", Sex: "male"}}, snap.Data)
	assert.Equal(t, int32(2), client.queries.Load())
}

func TestService_DeletePatchesWithoutRequery(t *testing.T) {
	seed := []cards.Card{
		{ID: "1", CaseName: "HT-1", Name: "arya", Sex: "female"},
		{ID: "2", CaseName: "HT-2", Name: "snow", Sex: "male"},
	}
	svc, client, store := newService(t, memserver.Options{Seed: seed})
	ctx := context.Background()

	list := svc.Watch()
	require.NoError(t, list.Subscribe(ctx))
	t.Cleanup(list.Close)
	require.Len(t, list.Snapshot().Data, 2)

	deleted, err := svc.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", deleted.ID)

	ent, ok := store.Read(cards.ListSignature)
	require.True(t, ok)
	assert.Equal(t, []cards.Card{seed[1]}, ent.Data)
	assert.Equal(t, []cards.Card{seed[1]}, list.Snapshot().Data)
	assert.Equal(t, int32(1), client.queries.Load(), "delete patches locally")
}

func TestService_DeleteFailureKeepsCache(t *testing.T) {
	seed := []cards.Card{{ID: "1", CaseName: "HT-1"}}
	svc, _, store := newService(t, memserver.Options{Seed: seed})
	ctx := context.Background()

	list := svc.Watch()
	require.NoError(t, list.Subscribe(ctx))
	t.Cleanup(list.Close)

	_, err := svc.Delete(ctx, "missing")
	var rerr *remote.Error
	require.ErrorAs(t, err, &rerr)

	ent, _ := store.Read(cards.ListSignature)
	assert.Equal(t, seed, ent.Data)

	_, err = svc.Delete(ctx, " ")
	assert.Error(t, err)
}

func TestService_FindIsCached(t *testing.T) {
	seed := []cards.Card{{ID: "7", CaseName: "HT-7", Name: "snow", Sex: "male"}}
	svc, client, _ := newService(t, memserver.Options{Seed: seed})
	ctx := context.Background()

	found, err := svc.Find(ctx, "snow")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, seed[0], *found)

	_, err = svc.Find(ctx, "snow")
	require.NoError(t, err)
	assert.Equal(t, int32(1), client.queries.Load())

	missing, err := svc.Find(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRemoveHelpers(t *testing.T) {
	two := []cards.Card{{ID: "1"}, {ID: "2"}, {ID: "1"}}

	assert.Equal(t, []cards.Card{{ID: "2"}}, cards.RemoveByID("1")(two))
	assert.Equal(t, []cards.Card{{ID: "2"}, {ID: "1"}}, cards.RemoveFirst(two))
	assert.Empty(t, cards.RemoveFirst(nil))
	assert.Len(t, two, 3, "helpers must not modify their input")

	var store cache.Store[cards.Card]
	ent := store.Update(cards.ListSignature, cards.RemoveFirst)
	assert.Empty(t, ent.Data)
}
