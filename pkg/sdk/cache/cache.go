// Package cache implements the client-side entity cache: a keyed store of
// fetched collections and records with per-key staleness, family-wide
// invalidation, and coalescing of concurrent fetches for the same key.
//
// The cache never patches values in place. All consistency flows through
// Invalidate, InvalidateFamily, and Reset; a stale entry is re-fetched on the
// next read rather than evicted eagerly.
package cache

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Family names one cached query shape. Parameterized families hold one entry
// per parameter value.
type Family string

const (
	FamilyPublishedJobs           Family = "published-jobs"
	FamilyJobSearch               Family = "job-search"
	FamilyJob                     Family = "job"
	FamilyJobsByEmployer          Family = "jobs-by-employer"
	FamilyApplicationsByCandidate Family = "applications-by-candidate"
	FamilyApplicationsByJob       Family = "applications-by-job"
	FamilyMessagesByApplication   Family = "messages-by-application"
	FamilyCallerProfile           Family = "caller-profile"
	FamilyCallerRole              Family = "caller-role"
	FamilyProfile                 Family = "profile"
	FamilyMemberCount             Family = "member-count"
)

// Key is a structured cache key: a family tag plus an optional parameter.
// Structured keys (rather than concatenated strings) keep family-wide
// invalidation type-checked.
type Key struct {
	Family Family
	Param  string
}

// String renders the key for use as a map key. Parameterized keys use a "/"
// separator so family prefix matching cannot collide with other families.
func (k Key) String() string {
	if k.Param == "" {
		return string(k.Family)
	}
	return string(k.Family) + "/" + k.Param
}

func matchesFamily(id string, f Family) bool {
	return id == string(f) || strings.HasPrefix(id, string(f)+"/")
}

type entry struct {
	key   Key
	value any
	stale bool
}

// generation orders fetch completions against invalidations. A fetch that
// started before an invalidation of its key stores its result stale.
type generation struct {
	epoch uint64
	gen   uint64
}

// Store is the process-wide entity cache. It is safe for concurrent use.
//
// The backing store is a bounded LRU: eviction of a live entry only costs a
// re-fetch, never correctness.
type Store struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	gens    map[string]uint64
	epoch   uint64
	flights singleflight.Group
}

// DefaultSize bounds the number of cached keys. The key space of a single
// client session is small; the bound exists to keep long sessions from
// accumulating per-parameter entries without limit.
const DefaultSize = 512

// NewStore creates an empty cache bounded to size entries.
func NewStore(size int) (*Store, error) {
	entries, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, err
	}
	return &Store{
		entries: entries,
		gens:    make(map[string]uint64),
	}, nil
}

func (s *Store) generationLocked(id string) generation {
	return generation{epoch: s.epoch, gen: s.gens[id]}
}

// Read returns the cached value for key when a fresh entry exists. Otherwise
// it invokes fetch exactly once, shared across all concurrent readers of the
// same key, stores the result, and returns it. Fetch errors are returned to
// every waiting reader and cache nothing, so the next read retries.
func Read[T any](ctx context.Context, s *Store, key Key, fetch func(context.Context) (T, error)) (T, error) {
	id := key.String()

	s.mu.Lock()
	if e, ok := s.entries.Get(id); ok && !e.stale {
		value := e.value.(T)
		s.mu.Unlock()
		return value, nil
	}
	gen := s.generationLocked(id)
	s.mu.Unlock()

	result, err, _ := s.flights.Do(id, func() (any, error) {
		// A reader that raced ahead of us may have completed the fetch
		// between our freshness check and joining the flight.
		s.mu.Lock()
		if e, ok := s.entries.Get(id); ok && !e.stale {
			value := e.value
			s.mu.Unlock()
			return value, nil
		}
		s.mu.Unlock()

		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		stale := s.generationLocked(id) != gen
		s.entries.Add(id, &entry{key: key, value: value, stale: stale})
		s.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// Invalidate marks the entry for key stale. The entry is not evicted; the
// next Read for the key re-fetches. An in-flight fetch for the key is
// detached so later readers start a fresh fetch.
func (s *Store) Invalidate(key Key) {
	id := key.String()

	s.mu.Lock()
	s.gens[id]++
	if e, ok := s.entries.Peek(id); ok {
		e.stale = true
	}
	s.mu.Unlock()

	s.flights.Forget(id)
}

// InvalidateFamily marks every entry of the family stale, whatever its
// parameter. Used when a mutation affects a key family without the mutator
// knowing every parameter touched.
func (s *Store) InvalidateFamily(family Family) {
	var forget []string

	s.mu.Lock()
	for _, id := range s.entries.Keys() {
		if e, ok := s.entries.Peek(id); ok && matchesFamily(id, family) {
			e.stale = true
		}
	}
	for id := range s.gens {
		if matchesFamily(id, family) {
			s.gens[id]++
			forget = append(forget, id)
		}
	}
	// Entries may exist without a recorded generation bump; cover them too.
	for _, id := range s.entries.Keys() {
		if matchesFamily(id, family) {
			s.gens[id]++
			forget = append(forget, id)
		}
	}
	s.mu.Unlock()

	for _, id := range forget {
		s.flights.Forget(id)
	}
}

// Reset clears every entry. Called on identity change: no per-identity data
// may survive a session transition. In-flight fetches started before the
// reset store their results stale.
func (s *Store) Reset() {
	var forget []string

	s.mu.Lock()
	s.epoch++
	for _, id := range s.entries.Keys() {
		forget = append(forget, id)
	}
	for id := range s.gens {
		forget = append(forget, id)
	}
	s.entries.Purge()
	s.gens = make(map[string]uint64)
	s.mu.Unlock()

	for _, id := range forget {
		s.flights.Forget(id)
	}
}

// Len reports the number of cached entries, fresh or stale.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}
