package liststore

// Op names a mutation.
type Op string

const (
	OpAdd      Op = "add"
	OpComplete Op = "complete"
	OpRemove   Op = "remove"
	OpRefresh  Op = "refresh"
)

// Observer is told about store activity. Implementations must be safe for
// concurrent use: Saved is called from background writers.
type Observer interface {
	// Mutated reports a mutation attempt; err is nil when it was applied.
	Mutated(op Op, err error)
	// Saved reports the outcome of a background snapshot write.
	Saved(err error)
	// Loaded reports the startup load; found is false when defaults were kept.
	Loaded(found bool, err error)
}

type nopObserver struct{}

func (nopObserver) Mutated(Op, error)  {}
func (nopObserver) Saved(error)        {}
func (nopObserver) Loaded(bool, error) {}
