// Package liststore holds the grocery list and pantry for a running process and
// keeps a durable snapshot of them in sync after every mutation.
//
// Mutations are synchronous and apply to memory immediately. Each successful
// mutation captures a full copy of the state and hands it to a background
// writer, so callers never wait on or see storage failures. Call Flush before
// the process exits; writes still in flight when it dies are lost.
package liststore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/grocer/internal/model"
)

// Store is the list and pantry state plus its persistence side channel.
type Store struct {
	mu     sync.RWMutex
	snap   model.Snapshot
	loaded bool
	seq    uint64 // bumped on every applied mutation

	loadOnce sync.Once
	ready    chan struct{}

	kv  Storage
	key string
	log *log.Logger
	obs Observer

	writeMu sync.Mutex
	latest  uint64 // highest sequence handed to storage
	pending sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithSeed replaces the default seed data.
func WithSeed(snap model.Snapshot) Option {
	return func(s *Store) { s.snap = normalize(snap.Clone()) }
}

// WithCategories seeds an empty list with the given category names.
func WithCategories(names []string) Option {
	return func(s *Store) { s.snap = model.EmptySnapshot(names) }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithObserver registers an observer for mutations, saves and the startup load.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.obs = o }
}

// New returns a store seeded with default data. It is not loaded: call Load
// once at startup before letting users mutate it.
func New(st Storage, opts ...Option) *Store {
	s := &Store{
		snap:  model.DefaultSnapshot(),
		ready: make(chan struct{}),
		kv:    st,
		key:   DefaultKey,
		log:   log.New(io.Discard),
		obs:   nopObserver{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads the persisted snapshot and, if one exists, replaces the in-memory
// state with it. The store is marked loaded whatever the outcome, so a broken
// backend never blocks the UI. Only the first call does anything; the returned
// error is informational and means defaults were kept.
func (s *Store) Load(ctx context.Context) error {
	var err error
	s.loadOnce.Do(func() {
		snap, ok, rerr := ReadSnapshot(ctx, s.kv, s.key)
		if rerr != nil {
			s.log.Warn("load snapshot, keeping defaults", "key", s.key, "err", rerr)
			err = rerr
		}

		s.mu.Lock()
		if ok {
			s.snap = snap
		}
		s.loaded = true
		s.mu.Unlock()

		s.obs.Loaded(ok, rerr)
		close(s.ready)
	})
	return err
}

// IsLoaded reports whether Load has completed.
func (s *Store) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Ready is closed once Load has completed.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// List returns a copy of the active list.
func (s *Store) List() model.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.List.Clone()
}

// Pantry returns a copy of the pantry history.
func (s *Store) Pantry() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.snap.Pantry...)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// AddItem appends an incomplete item to the end of category. Duplicate names are kept.
func (s *Store) AddItem(category, name string) error {
	return s.mutate(OpAdd, func(snap *model.Snapshot) error {
		i, err := categoryIndex(snap.List, category)
		if err != nil {
			return err
		}
		snap.List[i].Items = append(snap.List[i].Items, model.Item{Name: name})
		return nil
	})
}

// CompleteItem flips the complete flag of the first item named name in category.
// Calling it twice restores the original state.
func (s *Store) CompleteItem(category, name string) error {
	return s.mutate(OpComplete, func(snap *model.Snapshot) error {
		i, err := categoryIndex(snap.List, category)
		if err != nil {
			return err
		}
		j := snap.List[i].FirstItem(name)
		if j < 0 {
			return fmt.Errorf("%w: %q in %s", ErrItemNotFound, name, category)
		}
		snap.List[i].Items[j].Complete = !snap.List[i].Items[j].Complete
		return nil
	})
}

// RemoveItem drops every item named name from category. A missing name is not an error.
func (s *Store) RemoveItem(category, name string) error {
	return s.mutate(OpRemove, func(snap *model.Snapshot) error {
		i, err := categoryIndex(snap.List, category)
		if err != nil {
			return err
		}
		items := snap.List[i].Items
		kept := make([]model.Item, 0, len(items))
		for _, it := range items {
			if it.Name != name {
				kept = append(kept, it)
			}
		}
		snap.List[i].Items = kept
		return nil
	})
}

// RefreshList moves completed items out of every category and appends their
// names to the pantry, in category then item order.
func (s *Store) RefreshList() error {
	return s.mutate(OpRefresh, func(snap *model.Snapshot) error {
		for i := range snap.List {
			items := snap.List[i].Items
			kept := make([]model.Item, 0, len(items))
			for _, it := range items {
				if it.Complete {
					snap.Pantry = append(snap.Pantry, it.Name)
					continue
				}
				kept = append(kept, it)
			}
			snap.List[i].Items = kept
		}
		return nil
	})
}

// mutate applies fn under the write lock. fn must validate before changing
// anything: on error the state is left as it was and nothing is saved.
func (s *Store) mutate(op Op, fn func(*model.Snapshot) error) error {
	s.mu.Lock()
	if err := fn(&s.snap); err != nil {
		s.mu.Unlock()
		s.obs.Mutated(op, err)
		return err
	}
	s.seq++
	seq, snap := s.seq, s.snap.Clone()
	s.mu.Unlock()

	s.obs.Mutated(op, nil)
	s.saveData(seq, snap)
	return nil
}

func categoryIndex(l model.List, category string) (int, error) {
	i := l.Index(category)
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}
	return i, nil
}
