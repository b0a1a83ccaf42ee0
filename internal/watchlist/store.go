// Package watchlist keeps the persisted set of tracked (item, platform) pairs.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PriceSentinel/internal/kvstore"
	"PriceSentinel/internal/model"
)

const storeKey = "watchlist"

// ErrInvalidEntry is returned when an item id or platform is empty.
var ErrInvalidEntry = errors.New("item id and platform are required")

// Store is a watchlist persisted as a single list in a key-value medium.
// Every operation is a synchronous read-modify-write of the whole list.
type Store struct {
	kv  kvstore.Store
	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a Store backed by kv.
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Add appends the pair unless it is already tracked. It reports whether an entry was added.
func (s *Store) Add(ctx context.Context, itemID, platform string) (model.WatchlistEntry, bool, error) {
	if itemID == "" || platform == "" {
		return model.WatchlistEntry{}, false, ErrInvalidEntry
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return model.WatchlistEntry{}, false, err
	}
	for _, e := range entries {
		if e.Matches(itemID, platform) {
			return e, false, nil
		}
	}

	entry := model.WatchlistEntry{ItemID: itemID, Platform: platform, AddedAt: s.now()}
	entries = append(entries, entry)
	if err := s.save(ctx, entries); err != nil {
		return model.WatchlistEntry{}, false, err
	}
	return entry, true, nil
}

// Remove deletes the pair if present. It reports whether anything was removed.
func (s *Store) Remove(ctx context.Context, itemID, platform string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if !e.Matches(itemID, platform) {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	if err := s.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the entries in insertion order.
func (s *Store) List(ctx context.Context) ([]model.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Contains reports whether the pair is tracked.
func (s *Store) Contains(ctx context.Context, itemID, platform string) (bool, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Matches(itemID, platform) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) load(ctx context.Context) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	if _, err := kvstore.GetJSON(ctx, s.kv, storeKey, &entries); err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	return entries, nil
}

func (s *Store) save(ctx context.Context, entries []model.WatchlistEntry) error {
	if entries == nil {
		entries = []model.WatchlistEntry{}
	}
	if err := kvstore.SetJSON(ctx, s.kv, storeKey, entries); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}
