package local

import (
	"context"
	"errors"
	"testing"
)

func TestHashOps(t *testing.T) {
	ctx := context.Background()
	s := New()
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, ok, err := s.HGet(ctx, "h", "a"); err != nil || ok {
		t.Fatalf("miss expected, ok=%v err=%v", ok, err)
	}
	if err := s.HSet(ctx, "h", map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.HSet(ctx, "h", map[string]string{"c": "3"}); err != nil {
		t.Fatal(err)
	}
	all, err := s.HGetAll(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all["a"] != "1" || all["c"] != "3" {
		t.Fatalf("HGetAll = %v", all)
	}
	// returned map is a copy
	all["a"] = "x"
	if v, _, _ := s.HGet(ctx, "h", "a"); v != "1" {
		t.Fatalf("HGetAll leaked internal map")
	}
	if ok, _ := s.HExists(ctx, "h", "b"); !ok {
		t.Fatalf("HExists(b) = false")
	}
	if err := s.Del(ctx, "h"); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.HGetAll(ctx, "h"); len(all) != 0 {
		t.Fatalf("after Del: %v", all)
	}
}

func TestSetOps(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SAdd(ctx, "s", "b", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.SAdd(ctx, "s", "a", "c"); err != nil {
		t.Fatal(err)
	}
	got, err := s.SMembers(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("SMembers = %v", got)
	}
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Close(ctx)
	if err := s.HSet(ctx, "h", map[string]string{"a": "1"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("HSet after close: %v", err)
	}
	if _, err := s.SMembers(ctx, "s"); !errors.Is(err, ErrClosed) {
		t.Fatalf("SMembers after close: %v", err)
	}
}
