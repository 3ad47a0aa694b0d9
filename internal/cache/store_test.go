package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func TestNewSignature_SameInputsSameSlot(t *testing.T) {
	a := NewSignature("CardQuery", map[string]any{"name": "snow", "limit": 1})
	b := NewSignature("CardQuery", map[string]any{"limit": 1, "name": "snow"})
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, NewSignature("CardQuery", map[string]any{"name": "arya", "limit": 1}))
	assert.Equal(t, Signature("CardsListQuery"), NewSignature("CardsListQuery", nil))
	assert.NotEqual(t, NewSignature("CardQuery", nil), a)
}

func TestStore_ReadAbsent(t *testing.T) {
	var s Store[item]
	_, ok := s.Read("cards")
	assert.False(t, ok)
}

func TestStore_LastWriteWins(t *testing.T) {
	var s Store[item]

	before := time.Now()
	s.Write("cards", []item{{ID: "1"}})
	s.Write("cards", []item{{ID: "2"}, {ID: "3"}})

	ent, ok := s.Read("cards")
	require.True(t, ok)
	assert.Equal(t, []item{{ID: "2"}, {ID: "3"}}, ent.Data)
	assert.Equal(t, Signature("cards"), ent.Signature)
	assert.Equal(t, uint64(2), ent.Version)
	assert.False(t, ent.LastUpdated.Before(before))
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	var s Store[item]
	input := []item{{ID: "1", Name: "a"}}
	s.Write("cards", input)

	input[0].Name = "mutated"
	ent, _ := s.Read("cards")
	assert.Equal(t, "a", ent.Data[0].Name, "Write should copy its input")

	ent.Data[0].Name = "mutated"
	again, _ := s.Read("cards")
	assert.Equal(t, "a", again.Data[0].Name, "Read should return a copy")
}

func TestStore_UpdateAbsentStartsFromEmpty(t *testing.T) {
	var s Store[item]

	var seen []item
	ent := s.Update("cards", func(current []item) []item {
		seen = current
		return append(current, item{ID: "1"})
	})

	require.NotNil(t, seen)
	assert.Empty(t, seen)
	assert.Equal(t, []item{{ID: "1"}}, ent.Data)

	stored, ok := s.Read("cards")
	require.True(t, ok)
	assert.Equal(t, []item{{ID: "1"}}, stored.Data)
}

func TestStore_UpdateRetriesOnConcurrentWrite(t *testing.T) {
	var s Store[item]
	s.Write("cards", []item{{ID: "1"}})

	var calls int
	ent := s.Update("cards", func(current []item) []item {
		calls++
		if calls == 1 {
			// A write that lands between the read and the commit.
			s.Write("cards", []item{{ID: "1"}, {ID: "2"}})
		}
		return append(current, item{ID: "x"})
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, []item{{ID: "1"}, {ID: "2"}, {ID: "x"}}, ent.Data)
}

func TestStore_UpdateRetriesAfterInvalidateAndRewrite(t *testing.T) {
	var s Store[item]
	s.Write("cards", []item{{ID: "old"}})

	var calls int
	ent := s.Update("cards", func(current []item) []item {
		calls++
		if calls == 1 {
			// The entry is dropped and recreated with a single write, which
			// must not look like the entry read above.
			s.Invalidate("cards")
			s.Write("cards", []item{{ID: "new"}})
		}
		return append(current, item{ID: "x"})
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, []item{{ID: "new"}, {ID: "x"}}, ent.Data)
}

func TestStore_ConcurrentUpdatesLoseNothing(t *testing.T) {
	var s Store[int]
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Update("nums", func(current []int) []int {
				return append(current, n)
			})
		}(i)
	}
	wg.Wait()

	ent, ok := s.Read("nums")
	require.True(t, ok)
	assert.Len(t, ent.Data, workers)
}

func TestStore_WatchAndInvalidate(t *testing.T) {
	var s Store[item]

	var hits atomic.Int32
	var last Entry[item]
	cancel := s.Watch("cards", func(e Entry[item]) {
		hits.Add(1)
		last = e
	})

	s.Write("cards", []item{{ID: "1"}})
	s.Update("cards", func(current []item) []item { return current[:0] })
	s.Write("other", []item{{ID: "9"}})

	assert.Equal(t, int32(2), hits.Load())
	assert.Empty(t, last.Data)

	cancel()
	s.Write("cards", []item{{ID: "2"}})
	assert.Equal(t, int32(2), hits.Load())

	s.Invalidate("cards")
	_, ok := s.Read("cards")
	assert.False(t, ok)
}
