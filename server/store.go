package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"seo_content_studio/generator"
	"seo_content_studio/pkg/metrics"
	"seo_content_studio/pkg/tracer"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps session snapshots between requests. Entries expire after the
// store's idle TTL; every Save refreshes it.
type Store interface {
	Get(ctx context.Context, id string) (generator.Snapshot, error)
	Save(ctx context.Context, snap generator.Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	snap      generator.Snapshot
	expiresAt time.Time
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (generator.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return generator.Snapshot{}, ErrSessionNotFound
	}
	if s.expired(entry) {
		delete(s.sessions, id)
		metrics.ActiveSessions.Dec()
		return generator.Snapshot{}, ErrSessionNotFound
	}
	return entry.snap, nil
}

func (s *MemoryStore) Save(_ context.Context, snap generator.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	if _, ok := s.sessions[snap.ID]; !ok {
		metrics.ActiveSessions.Inc()
	}
	entry := memoryEntry{snap: snap}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.sessions[snap.ID] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Dec()
	return nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

// sweep drops expired entries; callers hold mu.
func (s *MemoryStore) sweep() {
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			metrics.ActiveSessions.Dec()
		}
	}
}

const redisKeyPrefix = "seo:session:"

// RedisStore keeps snapshots as JSON strings with a TTL, so a restarted
// server can resume open sessions.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: opts.TTL}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (generator.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "redis.GetSession", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return generator.Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return generator.Snapshot{}, fmt.Errorf("load session: %w", err)
	}
	var snap generator.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return generator.Snapshot{}, fmt.Errorf("decode session: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap generator.Snapshot) error {
	ctx, span := tracer.Start(ctx, "redis.SaveSession", trace.WithAttributes(attribute.String("session.id", snap.ID)))
	defer span.End()

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+snap.ID, raw, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
