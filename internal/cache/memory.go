package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memEntry struct {
	value   []byte
	hash    map[string]string
	expires time.Time // zéro = pas d'expiration
}

// MemoryStore est un Store en mémoire de process (STORE_BACKEND=memory, tests)
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	now     func() time.Time

	psMu sync.Mutex
	subs map[string]map[*memSubscription]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memEntry),
		now:     time.Now,
		subs:    make(map[string]map[*memSubscription]struct{}),
	}
}

// lookup retourne l'entrée vivante ; l'appelant tient le verrou
func (s *MemoryStore) lookup(key string) (*memEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false
	}
	return e, true
}

func (s *MemoryStore) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(ttl)
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok || e.hash != nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.entries[key] = &memEntry{value: v, expires: s.expiry(ttl)}
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.lookup(key)
	return ok, nil
}

func (s *MemoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return 0, ErrNotFound
	}
	if e.expires.IsZero() {
		return 0, nil
	}
	return e.expires.Sub(s.now()), nil
}

func (s *MemoryStore) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok || e.hash == nil {
		return "", ErrNotFound
	}
	v, ok := e.hash[field]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) HSetNX(_ context.Context, key, field, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok || e.hash == nil {
		e = &memEntry{hash: make(map[string]string)}
		s.entries[key] = e
	}
	if _, taken := e.hash[field]; taken {
		return false, nil
	}
	e.hash[field] = value
	return true, nil
}

func (s *MemoryStore) HDel(_ context.Context, key, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.lookup(key); ok && e.hash != nil {
		delete(e.hash, field)
	}
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	expires := s.expiry(window)
	if e, ok := s.lookup(key); ok && e.hash == nil {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
		if !e.expires.IsZero() {
			expires = e.expires
		}
	}
	n++
	s.entries[key] = &memEntry{value: []byte(strconv.FormatInt(n, 10)), expires: expires}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close ferme les abonnements en cours
func (s *MemoryStore) Close() error {
	s.psMu.Lock()
	defer s.psMu.Unlock()

	for channel, set := range s.subs {
		for sub := range set {
			close(sub.out)
		}
		delete(s.subs, channel)
	}
	return nil
}
