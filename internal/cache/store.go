package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Signature identifies a query and its variables. Equal operation names and
// variables always produce the same Signature.
type Signature string

// NewSignature builds the cache key for an operation. Variables are encoded
// with sorted keys so map ordering never matters.
func NewSignature(operation string, variables map[string]any) Signature {
	if len(variables) == 0 {
		return Signature(operation)
	}
	encoded, err := json.Marshal(variables)
	if err != nil {
		// Unencodable variables are a programming error; fall back to a key
		// that still separates them from the variable-free query.
		return Signature(operation + "(?)")
	}
	return Signature(operation + string(encoded))
}

// Entry is the last known result for a Signature.
type Entry[T any] struct {
	Signature   Signature
	Data        []T
	LastUpdated time.Time
	// Version increases on every commit. It is unique within a Store.
	Version uint64
}

// UpdateFunc derives new data from the current data. It must be pure: Update
// may call it more than once when a concurrent write wins the race.
type UpdateFunc[T any] func(current []T) []T

// Store coordinates concurrent access to cached query results. The zero value
// is ready to use.
type Store[T any] struct {
	mu       sync.RWMutex
	entries  map[Signature]*Entry[T]
	watchers map[Signature]map[int]func(Entry[T])
	nextID   int
	// version is store-wide so an entry recreated after Invalidate never
	// reuses a version an in-progress Update may have read.
	version uint64
}

// Read returns a copy of the entry for sig.
func (s *Store[T]) Read(sig Signature) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ent, ok := s.entries[sig]
	if !ok {
		return Entry[T]{}, false
	}
	return cloneEntry(ent), true
}

// Write replaces the data for sig, creating the entry when absent.
func (s *Store[T]) Write(sig Signature, data []T) Entry[T] {
	s.mu.Lock()
	ent := s.commitLocked(sig, data)
	notify := s.watchersLocked(sig)
	s.mu.Unlock()

	for _, fn := range notify {
		fn(cloneEntry(&ent))
	}
	return ent
}

// Update applies fn to the current data (an empty slice when absent) and
// commits the result atomically.
func (s *Store[T]) Update(sig Signature, fn UpdateFunc[T]) Entry[T] {
	for {
		s.mu.RLock()
		var (
			current []T
			version uint64
		)
		if ent, ok := s.entries[sig]; ok {
			current = cloneData(ent.Data)
			version = ent.Version
		} else {
			current = []T{}
		}
		s.mu.RUnlock()

		next := fn(current)

		s.mu.Lock()
		var have uint64
		if ent, ok := s.entries[sig]; ok {
			have = ent.Version
		}
		if have != version {
			s.mu.Unlock()
			continue
		}
		ent := s.commitLocked(sig, next)
		notify := s.watchersLocked(sig)
		s.mu.Unlock()

		for _, w := range notify {
			w(cloneEntry(&ent))
		}
		return ent
	}
}

// Invalidate drops the entry for sig. Watchers are not notified.
func (s *Store[T]) Invalidate(sig Signature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sig)
}

// Watch registers fn to be called after every commit for sig. The returned
// function removes the watcher.
func (s *Store[T]) Watch(sig Signature, fn func(Entry[T])) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchers == nil {
		s.watchers = make(map[Signature]map[int]func(Entry[T]))
	}
	if s.watchers[sig] == nil {
		s.watchers[sig] = make(map[int]func(Entry[T]))
	}
	id := s.nextID
	s.nextID++
	s.watchers[sig][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[sig], id)
		if len(s.watchers[sig]) == 0 {
			delete(s.watchers, sig)
		}
	}
}

func (s *Store[T]) commitLocked(sig Signature, data []T) Entry[T] {
	if s.entries == nil {
		s.entries = make(map[Signature]*Entry[T])
	}
	ent, ok := s.entries[sig]
	if !ok {
		ent = &Entry[T]{Signature: sig}
		s.entries[sig] = ent
	}
	ent.Data = cloneData(data)
	ent.LastUpdated = time.Now()
	s.version++
	ent.Version = s.version
	return cloneEntry(ent)
}

func (s *Store[T]) watchersLocked(sig Signature) []func(Entry[T]) {
	ws := s.watchers[sig]
	if len(ws) == 0 {
		return nil
	}
	out := make([]func(Entry[T]), 0, len(ws))
	for _, fn := range ws {
		out = append(out, fn)
	}
	return out
}

func cloneEntry[T any](ent *Entry[T]) Entry[T] {
	dup := *ent
	dup.Data = cloneData(ent.Data)
	return dup
}

func cloneData[T any](items []T) []T {
	if items == nil {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
