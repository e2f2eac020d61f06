package persist

import (
	"context"
	"sync"
)

// LoadFunc fetches the remote value for identity. Returning found=false means
// "no data yet" and the zero value is used.
type LoadFunc[T any] func(ctx context.Context, identity string) (value T, found bool, err error)

type stateEntry[T any] struct {
	mutex  sync.Mutex
	loaded bool
	exists bool
	value  T
}

// LocalState is the authoritative in-process copy of per-identity documents.
// Updates are applied here first; remote writes follow through the Queue.
// All access for one identity is serialized.
type LocalState[T any] struct {
	load  LoadFunc[T]
	clone func(T) T

	mutex   sync.Mutex
	entries map[string]*stateEntry[T]
}

func NewLocalState[T any](load LoadFunc[T], clone func(T) T) *LocalState[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &LocalState[T]{
		load:    load,
		clone:   clone,
		entries: make(map[string]*stateEntry[T]),
	}
}

func (s *LocalState[T]) entry(identity string) *stateEntry[T] {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.entries[identity]
	if !ok {
		e = &stateEntry[T]{}
		s.entries[identity] = e
	}
	return e
}

// must hold e.mutex
func (s *LocalState[T]) ensureLoaded(ctx context.Context, identity string, e *stateEntry[T]) error {
	if e.loaded {
		return nil
	}
	value, found, err := s.load(ctx, identity)
	if err != nil {
		return err
	}
	e.value = value
	e.exists = found
	e.loaded = true
	return nil
}

// Get returns a copy of the current value, loading it on first access.
func (s *LocalState[T]) Get(ctx context.Context, identity string) (T, error) {
	value, _, err := s.Lookup(ctx, identity)
	return value, err
}

// Lookup is like Get, but also reports whether a value was ever loaded or stored.
func (s *LocalState[T]) Lookup(ctx context.Context, identity string) (T, bool, error) {
	e := s.entry(identity)
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if err := s.ensureLoaded(ctx, identity, e); err != nil {
		var zero T
		return zero, false, err
	}
	return s.clone(e.value), e.exists, nil
}

// Update runs fn on the current value and keeps the result if fn succeeds.
// The returned value is a copy of the new state.
func (s *LocalState[T]) Update(ctx context.Context, identity string, fn func(*T) error) (T, error) {
	e := s.entry(identity)
	e.mutex.Lock()
	defer e.mutex.Unlock()

	var zero T
	if err := s.ensureLoaded(ctx, identity, e); err != nil {
		return zero, err
	}

	working := s.clone(e.value)
	if err := fn(&working); err != nil {
		return zero, err
	}
	e.value = working
	e.exists = true
	return s.clone(working), nil
}

// Set replaces the value without loading the remote one first.
func (s *LocalState[T]) Set(identity string, value T) {
	e := s.entry(identity)
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.value = s.clone(value)
	e.loaded = true
	e.exists = true
}

// Forget drops the local copy; the next access reloads it.
func (s *LocalState[T]) Forget(identity string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, identity)
}
