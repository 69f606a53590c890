package server

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"seo_content_studio/generator"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	snap := generator.NewSession("a", generator.ModeGenerate, nil).Snapshot()
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, "a")
	if err != nil || got.ID != "a" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	now = now.Add(50 * time.Minute)
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(50 * time.Minute)
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Errorf("Save did not refresh the TTL: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expired Get err = %v", err)
	}
	if err := store.Delete(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete of expired session err = %v", err)
	}
}

func TestMemoryStoreSweepsOnSave(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	_ = store.Save(ctx, generator.Snapshot{ID: "old"})
	now = now.Add(2 * time.Minute)
	_ = store.Save(ctx, generator.Snapshot{ID: "new"})

	if _, ok := store.sessions["old"]; ok {
		t.Error("expired entry survived a sweep")
	}
	if len(store.sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(store.sessions))
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisOptions{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()

	sess := generator.NewSession("redis-test", generator.ModeDiagnose, nil)
	sess.State.ExistingArticle = "body"
	if err := store.Save(ctx, sess.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Get(ctx, "redis-test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State.ExistingArticle != "body" || got.State.Mode != generator.ModeDiagnose {
		t.Errorf("Get = %+v", got.State)
	}
	if err := store.Delete(ctx, "redis-test"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "redis-test"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Delete err = %v", err)
	}
}
