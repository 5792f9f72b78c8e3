package liststore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/idilsaglam/grocer/internal/kv"
	"github.com/idilsaglam/grocer/internal/kv/memory"
	"github.com/idilsaglam/grocer/internal/model"
)

// newLoadedStore returns a store over an empty memory backend that has
// completed Load, so it holds the default seed data.
func newLoadedStore(t *testing.T, opts ...Option) (*Store, *memory.Store) {
	t.Helper()
	mem := memory.New()
	s := New(mem, opts...)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, mem
}

func storedSnapshot(t *testing.T, st Storage) model.Snapshot {
	t.Helper()
	snap, ok, err := ReadSnapshot(context.Background(), st, DefaultKey)
	if err != nil || !ok {
		t.Fatalf("read stored snapshot: ok=%v err=%v", ok, err)
	}
	return snap
}

// failingStorage fails every call with err.
type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStorage) Set(context.Context, string, []byte) error   { return f.err }

// rawStorage returns fixed bytes from Get and discards writes.
type rawStorage struct{ data []byte }

func (r rawStorage) Get(context.Context, string) ([]byte, error) { return r.data, nil }
func (r rawStorage) Set(context.Context, string, []byte) error   { return nil }

// chanStorage hands every call to the test over a channel and waits for the
// reply, so a test can assert exactly which storage calls happen and in what order.
type chanStorage struct {
	t     *testing.T
	calls chan any
}

type getCall struct{ key string }
type getResp struct {
	value []byte
	err   error
}
type setCall struct {
	key   string
	value []byte
}
type setResp struct{ err error }

func newChanStorage(t *testing.T) *chanStorage {
	return &chanStorage{t: t, calls: make(chan any)}
}

func (c *chanStorage) Get(_ context.Context, key string) ([]byte, error) {
	c.calls <- &getCall{key}
	resp := (<-c.calls).(*getResp)
	return resp.value, resp.err
}

func (c *chanStorage) Set(_ context.Context, key string, value []byte) error {
	c.calls <- &setCall{key, value}
	return (<-c.calls).(*setResp).err
}

func (c *chanStorage) AssertGet(key string, value []byte, err error) {
	c.t.Helper()
	call, ok := (<-c.calls).(*getCall)
	if !ok {
		c.t.Fatalf("expected get call")
	}
	if call.key != key {
		c.t.Errorf("get key %q, want %q", call.key, key)
	}
	c.calls <- &getResp{value, err}
}

// AssertSet waits for the next write, replies with err and returns the decoded snapshot.
func (c *chanStorage) AssertSet(key string, err error) model.Snapshot {
	c.t.Helper()
	call, ok := (<-c.calls).(*setCall)
	if !ok {
		c.t.Fatalf("expected set call")
	}
	if call.key != key {
		c.t.Errorf("set key %q, want %q", call.key, key)
	}
	var snap model.Snapshot
	if uerr := json.Unmarshal(call.value, &snap); uerr != nil {
		c.t.Fatalf("decode written snapshot: %v", uerr)
	}
	c.calls <- &setResp{err}
	return snap
}

func (c *chanStorage) Close() { close(c.calls) }

func (c *chanStorage) AssertDone() {
	c.t.Helper()
	if _, more := <-c.calls; more {
		c.t.Fatal("did not expect more storage calls")
	}
}

// recorder is an Observer that remembers what it saw.
type recorder struct {
	mu       sync.Mutex
	mutated  []Op
	rejected []Op
	saves    int
	saveErrs int
	loads    []bool
}

func (r *recorder) Mutated(op Op, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.rejected = append(r.rejected, op)
		return
	}
	r.mutated = append(r.mutated, op)
}

func (r *recorder) Saved(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if err != nil {
		r.saveErrs++
	}
}

func (r *recorder) Loaded(found bool, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, found)
}

var errBackend = errors.New("backend down")

var _ Storage = (*chanStorage)(nil)
var _ kv.Store = failingStorage{}
