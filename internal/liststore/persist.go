package liststore

import (
	"context"

	"github.com/idilsaglam/grocer/internal/model"
)

// saveData writes snap in the background. snap must already be a private copy.
//
// Writers serialize on writeMu and drop any snapshot older than the newest one
// already handed to storage, so goroutines finishing out of order can never
// replace newer state with older state.
func (s *Store) saveData(seq uint64, snap model.Snapshot) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		if seq <= s.latest {
			s.log.Debug("skip stale snapshot", "seq", seq, "latest", s.latest)
			return
		}
		s.latest = seq

		// not tied to any caller: a started write runs to completion or failure
		err := WriteSnapshot(context.Background(), s.kv, s.key, snap)
		if err != nil {
			s.log.Error("save snapshot", "key", s.key, "seq", seq, "err", err)
		}
		s.obs.Saved(err)
	}()
}

// Flush blocks until every background write started so far has finished.
func (s *Store) Flush() {
	s.pending.Wait()
}
