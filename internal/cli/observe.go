package cli

import (
	"sync"

	"github.com/idilsaglam/grocer/internal/liststore"
)

// observers fans store events out to several observers.
type observers []liststore.Observer

func (o observers) Mutated(op liststore.Op, err error) {
	for _, x := range o {
		x.Mutated(op, err)
	}
}

func (o observers) Saved(err error) {
	for _, x := range o {
		x.Saved(err)
	}
}

func (o observers) Loaded(found bool, err error) {
	for _, x := range o {
		x.Loaded(found, err)
	}
}

// saveTracker counts background writes so the CLI can report lost changes
// before it exits.
type saveTracker struct {
	mu     sync.Mutex
	total  int
	failed int
}

func (s *saveTracker) Mutated(liststore.Op, error) {}
func (s *saveTracker) Loaded(bool, error)          {}

func (s *saveTracker) Saved(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	if err != nil {
		s.failed++
	}
}

func (s *saveTracker) counts() (failed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed, s.total
}
