package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/idilsaglam/grocer/internal/kv"
	"github.com/idilsaglam/grocer/internal/model"
)

// DefaultKey is the storage key the snapshot lives under.
const DefaultKey = "grocer.list"

// Storage is the durable key-value capability the store writes snapshots to.
type Storage = kv.Store

// WriteSnapshot encodes snap as JSON and stores it under key.
func WriteSnapshot(ctx context.Context, st Storage, key string, snap model.Snapshot) error {
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := st.Set(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ReadSnapshot reads the snapshot stored under key. ok is false when nothing
// usable is there: the key was never written, or reading or decoding failed
// (err says which).
func ReadSnapshot(ctx context.Context, st Storage, key string) (snap model.Snapshot, ok bool, err error) {
	b, err := st.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("json unmarshal: %w", err)
	}
	if snap.List == nil {
		return model.Snapshot{}, false, errNoList
	}
	return normalize(snap), true, nil
}

// normalize replaces null slices with empty ones so decoded state behaves like seeded state.
func normalize(snap model.Snapshot) model.Snapshot {
	for i := range snap.List {
		if snap.List[i].Items == nil {
			snap.List[i].Items = []model.Item{}
		}
	}
	if snap.Pantry == nil {
		snap.Pantry = []string{}
	}
	return snap
}
