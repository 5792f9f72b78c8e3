package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/idilsaglam/grocer/internal/kv"
)

func TestStore_GetMissing(t *testing.T) {
	s := New()
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetCopiesValue(t *testing.T) {
	s := New()
	ctx := context.Background()
	v := []byte("abc")
	if err := s.Set(ctx, "k", v); err != nil {
		t.Fatalf("set: %v", err)
	}
	v[0] = 'x'
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("value aliased caller buffer: %q", got)
	}
	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("value aliased returned buffer: %q", again)
	}
}
