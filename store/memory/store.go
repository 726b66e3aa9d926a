// Package memory is an in-process store for tests, simulations and the CLI.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/xraph/elastic/journal"
	"github.com/xraph/elastic/store"
)

// ErrClosed is returned by every call on a closed store.
var ErrClosed = errors.New("elastic/memory: store is closed")

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store keeps journal entries in a slice ordered by Seq.
type Store struct {
	mu      sync.RWMutex
	entries []*journal.Entry
	seqs    map[uint64]struct{}
	closed  bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make([]*journal.Entry, 0),
		seqs:    make(map[uint64]struct{}),
	}
}

// AppendEntry stores a copy of e.
func (s *Store) AppendEntry(_ context.Context, e *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, exists := s.seqs[e.Seq]; exists {
		return journal.ErrDuplicateEntry
	}

	cp := cloneEntry(e)
	s.seqs[e.Seq] = struct{}{}

	// Appends normally arrive in order.
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Seq > e.Seq })
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = cp
	return nil
}

func (s *Store) ListEntries(_ context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	result := make([]*journal.Entry, 0)
	for _, e := range s.entries {
		if e.Seq <= opts.AfterSeq {
			continue
		}
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		result = append(result, cloneEntry(e))
		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) LastEntry(_ context.Context) (*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	if len(s.entries) == 0 {
		return nil, journal.ErrEntryNotFound
	}
	return cloneEntry(s.entries[len(s.entries)-1]), nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed. Stored entries are kept.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneEntry(e *journal.Entry) *journal.Entry {
	cp := *e
	cp.Accounts = append([]journal.Account(nil), e.Accounts...)
	cp.Allowances = append([]journal.Allowance(nil), e.Allowances...)
	cp.Settings.PreLaunchAllowed = append(cp.Settings.PreLaunchAllowed[:0:0], e.Settings.PreLaunchAllowed...)
	return &cp
}
