package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/draingate/internal/session"
)

func getTestAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping Redis store tests")
	}
	return addr
}

func mustOpen(t *testing.T, addr string) *Store {
	t.Helper()
	s, err := Open(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), time.Hour)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Clear(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := s.SetActive(context.Background(), false); err != nil {
		t.Fatalf("reset flag: %v", err)
	}
	return s
}

func TestStore_SessionLifecycle(t *testing.T) {
	s := mustOpen(t, getTestAddr(t))
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	sess := session.Session{ID: uuid.New(), User: "anonymous", Pod: "pod-a", LoginTime: now, LastActivity: now}
	if err := s.Create(ctx, sess); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n != 1 {
		t.Fatalf("count: %v %d", err, n)
	}
	if err := s.Touch(ctx, sess.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("touch: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if got := list[0]; got.ID != sess.ID || got.Pod != "pod-a" || !got.LastActivity.After(now) {
		t.Fatalf("unexpected session: %+v", got)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty, got %d", n)
	}
}

func TestStore_MaintenanceFlag(t *testing.T) {
	s := mustOpen(t, getTestAddr(t))
	defer s.Close()
	ctx := context.Background()

	active, err := s.Active(ctx)
	if err != nil || active {
		t.Fatalf("fresh flag should be inactive: %v %v", active, err)
	}
	if err := s.SetActive(ctx, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if active, _ = s.Active(ctx); !active {
		t.Fatal("expected active")
	}
	if err := s.SetActive(ctx, false); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if active, _ = s.Active(ctx); active {
		t.Fatal("expected inactive")
	}
}

func TestStore_Clear(t *testing.T) {
	s := mustOpen(t, getTestAddr(t))
	defer s.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		sess := session.Session{ID: uuid.New(), User: "anonymous", Pod: "pod-a", LoginTime: now, LastActivity: now}
		if err := s.Create(ctx, sess); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	n, err := s.Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("clear: %v %d", err, n)
	}
}
