// Package cache memoizes pipeline output keyed by a content fingerprint of
// the input sources. The transformation is deterministic, so a result stays
// valid until a source file is replaced.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fingerprint identifies the exact state of a set of source files.
type Fingerprint string

// FingerprintSources derives a fingerprint from the size and modification
// time of every path. A missing file contributes its error text, so the
// fingerprint still changes when a source appears or disappears.
func FingerprintSources(paths ...string) Fingerprint {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var sb []byte
	for _, path := range sorted {
		info, err := os.Stat(path)
		if err != nil {
			sb = append(sb, fmt.Sprintf("%s|absent:%v;", path, err)...)
			continue
		}
		sb = append(sb, fmt.Sprintf("%s|%d|%d;", path, info.Size(), info.ModTime().UnixNano())...)
	}
	return Fingerprint(sb)
}

// Store is a read-mostly result cache. A miss recomputes under singleflight
// so at most one recomputation runs per fingerprint at a time; concurrent
// callers share the in-flight result.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[Fingerprint]T
	group   singleflight.Group
	logger  *slog.Logger

	onInvalidate []func()
}

// NewStore creates an empty store.
func NewStore[T any](logger *slog.Logger) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		entries: make(map[Fingerprint]T),
		logger:  logger.With(slog.String("component", "result_cache")),
	}
}

// GetOrCompute returns the cached value for fp, computing it once on miss.
// A new fingerprint invalidates every older entry: source files were
// replaced, so stale results can never be served again.
func (s *Store[T]) GetOrCompute(fp Fingerprint, compute func() (T, error)) (T, bool, error) {
	s.mu.RLock()
	val, ok := s.entries[fp]
	s.mu.RUnlock()
	if ok {
		return val, true, nil
	}

	v, err, _ := s.group.Do(string(fp), func() (interface{}, error) {
		s.mu.RLock()
		cached, hit := s.entries[fp]
		s.mu.RUnlock()
		if hit {
			return cached, nil
		}

		computed, err := compute()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		stale := len(s.entries)
		s.entries = map[Fingerprint]T{fp: computed}
		s.mu.Unlock()

		if stale > 0 {
			s.logger.Info("source fingerprint changed, cache invalidated",
				slog.Int("stale_entries", stale))
			s.notifyInvalidate()
		}
		return computed, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v.(T), false, nil
}

// OnInvalidate registers a callback fired after the cache drops stale
// entries for a new fingerprint. Used to push refresh events to clients.
func (s *Store[T]) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = append(s.onInvalidate, fn)
}

func (s *Store[T]) notifyInvalidate() {
	s.mu.RLock()
	callbacks := append([]func(){}, s.onInvalidate...)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// Invalidate drops every entry, forcing the next access to recompute.
func (s *Store[T]) Invalidate() {
	s.mu.Lock()
	s.entries = make(map[Fingerprint]T)
	s.mu.Unlock()
}

// Len reports the number of cached fingerprints.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
