package liststore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocer/internal/kv"
	"github.com/idilsaglam/grocer/internal/kv/memory"
	"github.com/idilsaglam/grocer/internal/model"
)

func TestAddItem_AppendsToCategoryOnly(t *testing.T) {
	t.Parallel()

	for _, category := range model.DefaultCategories {
		t.Run(category, func(t *testing.T) {
			t.Parallel()

			s, _ := newLoadedStore(t)
			before := s.List()

			require.NoError(t, s.AddItem(category, "x"))
			s.Flush()

			after := s.List()
			i := after.Index(category)
			require.Len(t, after[i].Items, len(before[i].Items)+1)
			assert.Equal(t, model.Item{Name: "x"}, after[i].Items[len(after[i].Items)-1])

			// every other category unchanged
			after[i] = before[i]
			require.Empty(t, cmp.Diff(before, after))
		})
	}
}

func TestAddItem_DuplicateNamesKept(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)
	require.NoError(t, s.AddItem("Produce", "pear"))
	require.NoError(t, s.AddItem("Produce", "pear"))
	s.Flush()

	items := s.List()[0].Items
	require.GreaterOrEqual(t, len(items), 2)
	assert.Equal(t, []model.Item{{Name: "pear"}, {Name: "pear"}}, items[len(items)-2:])
}

func TestCompleteItem_Toggles(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)

	// milk starts complete in the seed data
	require.NoError(t, s.CompleteItem("Dairy", "milk"))
	assert.False(t, s.List()[1].Items[0].Complete)

	require.NoError(t, s.CompleteItem("Dairy", "milk"))
	assert.True(t, s.List()[1].Items[0].Complete)
	s.Flush()
}

func TestCompleteItem_IsInvolution(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)
	before := s.List()
	for _, c := range before {
		for _, it := range c.Items {
			require.NoError(t, s.CompleteItem(c.Name, it.Name))
			require.NoError(t, s.CompleteItem(c.Name, it.Name))
		}
	}
	s.Flush()
	require.Empty(t, cmp.Diff(before, s.List()))
}

func TestCompleteItem_FirstMatchOnly(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t, WithCategories([]string{"Produce"}))
	require.NoError(t, s.AddItem("Produce", "pear"))
	require.NoError(t, s.AddItem("Produce", "pear"))
	require.NoError(t, s.CompleteItem("Produce", "pear"))
	s.Flush()

	assert.Equal(t, []model.Item{{Name: "pear", Complete: true}, {Name: "pear"}}, s.List()[0].Items)
}

func TestCompleteItem_UnknownItem(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s, _ := newLoadedStore(t, WithObserver(rec))
	before := s.Snapshot()

	err := s.CompleteItem("Dairy", "cheese")
	require.ErrorIs(t, err, ErrItemNotFound)
	s.Flush()

	require.Empty(t, cmp.Diff(before, s.Snapshot()))
	assert.Equal(t, []Op{OpComplete}, rec.rejected)
	assert.Zero(t, rec.saves)
}

func TestRemoveItem_RemovesAllMatches(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)
	require.NoError(t, s.AddItem("Produce", "pear"))
	require.NoError(t, s.AddItem("Dairy", "pear"))
	require.NoError(t, s.RemoveItem("Produce", "pear"))
	s.Flush()

	l := s.List()
	for _, it := range l[0].Items {
		assert.NotEqual(t, "pear", it.Name)
	}
	assert.Equal(t, []model.Item{{Name: "apples"}, {Name: "grapes", Complete: true}, {Name: "onion"}}, l[0].Items)
	assert.Equal(t, "pear", l[1].Items[len(l[1].Items)-1].Name)
}

func TestRemoveItem_MissingNameIsNoop(t *testing.T) {
	t.Parallel()

	s, mem := newLoadedStore(t)
	before := s.List()

	require.NoError(t, s.RemoveItem("Frozen", "peas"))
	s.Flush()

	require.Empty(t, cmp.Diff(before, s.List()))
	// still persisted
	require.Empty(t, cmp.Diff(before, storedSnapshot(t, mem).List))
}

func TestRefreshList_MovesCompletedToPantry(t *testing.T) {
	t.Parallel()

	seed := model.Snapshot{
		List: model.List{
			{Name: "Produce", Items: []model.Item{{Name: "apples"}, {Name: "grapes", Complete: true}}},
			{Name: "Dairy", Items: []model.Item{{Name: "milk", Complete: true}, {Name: "yogurt"}, {Name: "butter", Complete: true}}},
		},
		Pantry: []string{"rice"},
	}
	s, mem := newLoadedStore(t, WithSeed(seed))

	require.NoError(t, s.RefreshList())
	s.Flush()

	want := model.Snapshot{
		List: model.List{
			{Name: "Produce", Items: []model.Item{{Name: "apples"}}},
			{Name: "Dairy", Items: []model.Item{{Name: "yogurt"}}},
		},
		Pantry: []string{"rice", "grapes", "milk", "butter"},
	}
	require.Empty(t, cmp.Diff(want, s.Snapshot()))
	require.Empty(t, cmp.Diff(want, storedSnapshot(t, mem)))
}

func TestRefreshList_SeedScenario(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t, WithSeed(model.Snapshot{
		List: model.List{{Name: "Produce", Items: []model.Item{{Name: "apples"}, {Name: "grapes", Complete: true}}}},
	}))
	require.NoError(t, s.RefreshList())
	s.Flush()

	assert.Equal(t, []model.Item{{Name: "apples"}}, s.List()[0].Items)
	p := s.Pantry()
	require.NotEmpty(t, p)
	assert.Equal(t, "grapes", p[len(p)-1])
}

func TestRefreshList_IdempotentOnceNothingComplete(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)
	require.NoError(t, s.RefreshList())
	first := s.Snapshot()

	require.NoError(t, s.RefreshList())
	s.Flush()
	require.Empty(t, cmp.Diff(first, s.Snapshot()))
}

func TestMutations_UnknownCategory(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	s, mem := newLoadedStore(t, WithObserver(rec))
	before := s.Snapshot()

	require.ErrorIs(t, s.AddItem("Nonexistent", "x"), ErrCategoryNotFound)
	require.ErrorIs(t, s.CompleteItem("Nonexistent", "x"), ErrCategoryNotFound)
	require.ErrorIs(t, s.RemoveItem("Nonexistent", "x"), ErrCategoryNotFound)
	s.Flush()

	require.Empty(t, cmp.Diff(before, s.Snapshot()))
	_, err := mem.Get(context.Background(), DefaultKey)
	require.ErrorIs(t, err, kv.ErrNotFound, "rejected mutations must not persist")
	assert.Equal(t, []Op{OpAdd, OpComplete, OpRemove}, rec.rejected)
}

func TestLoad_ReplacesDefaultsWithStoredSnapshot(t *testing.T) {
	t.Parallel()

	mem := memory.New()
	stored := model.Snapshot{
		List:   model.List{{Name: "Bakery", Items: []model.Item{{Name: "pie"}}}},
		Pantry: []string{"cumin"},
	}
	require.NoError(t, WriteSnapshot(context.Background(), mem, DefaultKey, stored))

	rec := &recorder{}
	s := New(mem, WithObserver(rec))
	assert.False(t, s.IsLoaded())
	assert.Equal(t, model.DefaultCategories, s.List().Names())

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.IsLoaded())
	require.Empty(t, cmp.Diff(stored, s.Snapshot()))
	assert.Equal(t, []bool{true}, rec.loads)

	select {
	case <-s.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
}

func TestLoad_OnlyFirstCallApplies(t *testing.T) {
	t.Parallel()

	s, mem := newLoadedStore(t)
	require.NoError(t, WriteSnapshot(context.Background(), mem, DefaultKey, model.EmptySnapshot([]string{"Other"})))

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, model.DefaultCategories, s.List().Names())
}

func TestLoad_FailureKeepsDefaultsAndMarksLoaded(t *testing.T) {
	t.Parallel()

	cases := map[string]Storage{
		"read error":   failingStorage{err: errBackend},
		"corrupt json": rawStorage{data: []byte("{not json")},
		"no list":      rawStorage{data: []byte(`{"pantry":["x"]}`)},
	}
	for name, st := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := New(st, WithLogger(log.New(&buf)))
			err := s.Load(context.Background())
			require.Error(t, err)
			assert.True(t, s.IsLoaded())
			require.Empty(t, cmp.Diff(model.DefaultSnapshot(), s.Snapshot()))
			assert.Contains(t, buf.String(), "load snapshot")
		})
	}
}

func TestSave_FailureIsSwallowed(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &recorder{}
	s := New(failingStorage{err: errBackend}, WithLogger(log.New(&buf)), WithObserver(rec))
	_ = s.Load(context.Background())

	require.NoError(t, s.AddItem("Frozen", "peas"))
	s.Flush()

	assert.Equal(t, "peas", s.List()[4].Items[0].Name, "memory stays the source of truth")
	assert.Equal(t, 1, rec.saveErrs)
	assert.Contains(t, buf.String(), "save snapshot")
}

func TestSave_WritesAfterEveryMutation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newChanStorage(t)
	s := New(fake)

	loaded := make(chan error)
	go func() { loaded <- s.Load(ctx) }()
	fake.AssertGet(DefaultKey, nil, kv.ErrNotFound)
	require.NoError(t, <-loaded)

	require.NoError(t, s.AddItem("Frozen", "peas"))
	snap := fake.AssertSet(DefaultKey, nil)
	assert.Equal(t, []model.Item{{Name: "peas"}}, snap.List[4].Items)

	require.NoError(t, s.CompleteItem("Frozen", "peas"))
	snap = fake.AssertSet(DefaultKey, nil)
	assert.True(t, snap.List[4].Items[0].Complete)

	require.NoError(t, s.RefreshList())
	snap = fake.AssertSet(DefaultKey, errBackend)
	assert.Equal(t, []string{"grapes", "milk", "peas"}, snap.Pantry)

	require.NoError(t, s.RemoveItem("Produce", "onion"))
	snap = fake.AssertSet(DefaultKey, nil)
	assert.Equal(t, []model.Item{{Name: "apples"}, {Name: "pear"}}, snap.List[0].Items)

	s.Flush()
	fake.Close()
	fake.AssertDone()
}

func TestSave_StaleSnapshotNeverOverwritesNewer(t *testing.T) {
	t.Parallel()

	mem := memory.New()
	s := New(mem)
	older := model.EmptySnapshot([]string{"older"})
	newer := model.EmptySnapshot([]string{"newer"})

	s.saveData(2, newer)
	s.Flush()
	s.saveData(1, older)
	s.Flush()

	require.Empty(t, cmp.Diff(newer, storedSnapshot(t, mem)))
}

func TestSave_ConcurrentWritesLeaveLatestState(t *testing.T) {
	t.Parallel()

	s, mem := newLoadedStore(t)
	for i := 0; i < 50; i++ {
		require.NoError(t, s.AddItem("Pantry", "item"))
		if i%3 == 0 {
			require.NoError(t, s.CompleteItem("Pantry", "item"))
		}
	}
	s.Flush()

	require.Empty(t, cmp.Diff(s.Snapshot(), storedSnapshot(t, mem)))
}

// Writes still in flight when the process dies are lost: state that was never
// flushed is not on storage.
func TestSave_UnflushedWriteIsNotDurable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newChanStorage(t)
	s := New(fake, WithKey("k"))
	go func() { _ = s.Load(ctx) }()
	fake.AssertGet("k", nil, kv.ErrNotFound)
	<-s.Ready()

	require.NoError(t, s.AddItem("Frozen", "peas"))
	// the write is blocked inside storage; memory already has the item
	assert.Equal(t, "peas", s.List()[4].Items[0].Name)

	snap := fake.AssertSet("k", errors.New("process died"))
	assert.Equal(t, "peas", snap.List[4].Items[0].Name)
	s.Flush()
}

func TestReadWriteSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := memory.New()

	_, ok, err := ReadSnapshot(ctx, mem, DefaultKey)
	require.NoError(t, err)
	require.False(t, ok, "never written is distinct from an empty list")

	snap := model.DefaultSnapshot()
	snap.Pantry = append(snap.Pantry, "bread", "bread")
	require.NoError(t, WriteSnapshot(ctx, mem, DefaultKey, snap))

	got, ok, err := ReadSnapshot(ctx, mem, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, cmp.Diff(snap, got))
}

func TestReadSnapshot_WireFormat(t *testing.T) {
	t.Parallel()

	raw := `{"list":[{"name":"Produce","items":[{"name":"apples","complete":false},{"name":"grapes","complete":true}]},{"name":"Frozen","items":null}],"pantry":null}`
	got, ok, err := ReadSnapshot(context.Background(), rawStorage{data: []byte(raw)}, DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	want := model.Snapshot{
		List: model.List{
			{Name: "Produce", Items: []model.Item{{Name: "apples"}, {Name: "grapes", Complete: true}}},
			{Name: "Frozen", Items: []model.Item{}},
		},
		Pantry: []string{},
	}
	require.Empty(t, cmp.Diff(want, got))
}

func TestReaders_ReturnCopies(t *testing.T) {
	t.Parallel()

	s, _ := newLoadedStore(t)
	l := s.List()
	l[0].Items[0].Name = "mutated"
	p := s.Pantry()
	p = append(p, "mutated")
	_ = p

	assert.Equal(t, "apples", s.List()[0].Items[0].Name)
	assert.Empty(t, s.Pantry())
}
