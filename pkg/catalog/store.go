package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/data"
)

// ErrStaleRefresh is returned by Refresh when its result was discarded because
// a newer refresh started or the caller's context ended first.
var ErrStaleRefresh = errors.New("stale catalog refresh discarded")

// Lister fetches the full catalog ordered by creation time, newest first.
type Lister interface {
	ListManga(ctx context.Context) ([]data.Manga, error)
}

// Store holds the catalog entries fetched for the session. Entries are only
// ever replaced wholesale by Refresh.
type Store struct {
	source Lister
	log    *zap.Logger

	tickets atomic.Uint64

	mu         sync.RWMutex
	entries    []data.Manga
	generation uint64
}

func NewStore(source Lister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{source: source, log: log.Named("catalog")}
}

// Refresh fetches the catalog and swaps it in. On failure the previous list
// stays in place and the error is logged and returned. A result that arrives
// after a newer Refresh began, or after ctx was cancelled, is dropped with
// ErrStaleRefresh.
func (s *Store) Refresh(ctx context.Context) error {
	ticket := s.tickets.Add(1)

	entries, err := s.source.ListManga(ctx)
	if err != nil {
		if ctx.Err() != nil || ticket != s.tickets.Load() {
			s.log.Debug("dropping failed stale refresh", zap.Uint64("ticket", ticket), zap.Error(err))
			return ErrStaleRefresh
		}
		s.log.Error("catalog refresh failed", zap.Uint64("ticket", ticket), zap.Error(err))
		return fmt.Errorf("refresh catalog: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || ticket != s.tickets.Load() {
		s.log.Debug("dropping stale refresh",
			zap.Uint64("ticket", ticket),
			zap.Uint64("latest", s.tickets.Load()),
			zap.Int("entries", len(entries)))
		return ErrStaleRefresh
	}

	s.entries = entries
	s.generation++
	s.log.Info("catalog refreshed",
		zap.Int("entries", len(entries)),
		zap.Uint64("generation", s.generation))
	return nil
}

// Entries returns a copy of the current list.
func (s *Store) Entries() []data.Manga {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Snapshot returns the current list together with its generation. The slice
// is shared and must not be modified.
func (s *Store) Snapshot() ([]data.Manga, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, s.generation
}

// Generation counts the successful refreshes applied so far.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
