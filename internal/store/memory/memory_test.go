package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/billkhata/api/internal/store"
	"github.com/billkhata/api/internal/store/memory"
)

func TestGet_MissingKey(t *testing.T) {
	s := memory.NewStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("value: got %s", got)
	}
}

func TestSet_BumpsVersion(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("one"))
	_, v1, err := s.GetVersioned(ctx, "k")
	if err != nil {
		t.Fatalf("get versioned: %v", err)
	}

	s.Set(ctx, "k", []byte("two"))
	_, v2, _ := s.GetVersioned(ctx, "k")
	if v2 <= v1 {
		t.Errorf("version did not advance: %d -> %d", v1, v2)
	}
}

func TestCompareAndSet_AbsentKeyUsesVersionZero(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	if err := s.CompareAndSet(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("cas on absent key: %v", err)
	}
	// A second version-0 write must conflict.
	if err := s.CompareAndSet(ctx, "k", []byte("w"), 0); !errors.Is(err, store.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
}

func TestCompareAndSet_StaleVersionRejected(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("one"))
	_, v, _ := s.GetVersioned(ctx, "k")

	// Another writer sneaks in.
	s.Set(ctx, "k", []byte("two"))

	if err := s.CompareAndSet(ctx, "k", []byte("three"), v); !errors.Is(err, store.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
	got, _ := s.Get(ctx, "k")
	if string(got) != "two" {
		t.Errorf("stale write must not land, value is %s", got)
	}
}

func TestRemove_IsIdempotent(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"))
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("abc"))
	got, _ := s.Get(ctx, "k")
	got[0] = 'X'

	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("caller mutation leaked into store: %s", again)
	}
}

func TestConcurrentWriters(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(ctx, "k", []byte("v"))
			s.Get(ctx, "k")
		}()
	}
	wg.Wait()

	_, v, err := s.GetVersioned(ctx, "k")
	if err != nil {
		t.Fatalf("get versioned: %v", err)
	}
	if v != 50 {
		t.Errorf("version: got %d, want 50", v)
	}
}
