package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps sessions in process. Values are stored encoded so
// callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	locks *keyedMutex
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), locks: newKeyedMutex()}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	s.mu.RLock()
	raw, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return New(id), nil
	}
	d, err := decode(id, raw)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return d, nil
}

func (s *MemoryStore) Save(_ context.Context, d *Data) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	raw, err := encode(d)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.mu.Lock()
	s.data[d.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return s.locks.lock(ctx, id)
}

// keyedMutex hands out one lock per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[string]*slot)}
}

func (k *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	sl, ok := k.slots[key]
	if !ok {
		sl = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = sl
	}
	sl.refs++
	k.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
	case <-ctx.Done():
		k.drop(key, sl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-sl.ch
			k.drop(key, sl)
		})
	}, nil
}

func (k *keyedMutex) drop(key string, sl *slot) {
	k.mu.Lock()
	sl.refs--
	if sl.refs == 0 {
		delete(k.slots, key)
	}
	k.mu.Unlock()
}
