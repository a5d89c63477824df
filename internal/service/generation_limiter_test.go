package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisGenerationLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisGenerationLimiter
		if !l.Allow(ctx, "u1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisGenerationLimiter{client: &mockRedisEvaler{result: 1}, window: time.Minute, max: 3, prefix: "qualify:rl:"}
		if l.Allow(ctx, "   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := &redisGenerationLimiter{client: mock, window: 2 * time.Minute, max: 3, prefix: "qualify:rl:"}
		if !l.Allow(ctx, " User-1 ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "qualify:rl:user-1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisGenerationAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisGenerationLimiter{client: &mockRedisEvaler{result: 4}, window: time.Minute, max: 3, prefix: "qualify:rl:"}
		if l.Allow(ctx, "u1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisGenerationLimiter{client: &mockRedisEvaler{err: errors.New("redis down")}, window: time.Minute, max: 3, prefix: "qualify:rl:"}
		if !l.Allow(ctx, "u1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRedisGenerationLimiter_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisGenerationLimiter(client, time.Minute, 2)
	ctx := context.Background()
	if !l.Allow(ctx, "u1") || !l.Allow(ctx, "u1") {
		t.Fatalf("expected first two calls allowed")
	}
	if l.Allow(ctx, "u1") {
		t.Fatalf("expected third call denied")
	}
	if !l.Allow(ctx, "u2") {
		t.Fatalf("expected other users unaffected")
	}
	if ttl := mr.TTL("qualify:rl:u1"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected window ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if !l.Allow(ctx, "u1") {
		t.Fatalf("expected window reset after expiry")
	}
}

func TestMemoryGenerationLimiter_Window(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryGenerationLimiter(time.Minute, 2).(*memoryGenerationLimiter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if !l.Allow(ctx, "u1") || !l.Allow(ctx, "u1") {
		t.Fatalf("expected first two calls allowed")
	}
	if l.Allow(ctx, "U1 ") {
		t.Fatalf("expected normalized key to share the window")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "u1") {
		t.Fatalf("expected allow after window elapsed")
	}
	if l.Allow(ctx, "") {
		t.Fatalf("expected empty key rejected")
	}
}

func TestMemoryGenerationLimiter_DropsIdleUsers(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewMemoryGenerationLimiter(time.Hour, 5).(*memoryGenerationLimiter)
	limiter.now = func() time.Time { return now }

	for _, user := range []string{"u1", "u2", "u3"} {
		if !limiter.Allow(context.Background(), user) {
			t.Fatalf("expected first call for %s allowed", user)
		}
	}
	if len(limiter.hits) != 3 {
		t.Fatalf("expected 3 tracked users, got %d", len(limiter.hits))
	}

	now = now.Add(90 * time.Minute)
	if !limiter.Allow(context.Background(), "u4") {
		t.Fatalf("expected u4 allowed")
	}
	if len(limiter.hits) != 1 {
		t.Fatalf("expected idle users dropped, got %v", limiter.hits)
	}
	if _, ok := limiter.hits["u4"]; !ok {
		t.Fatalf("expected u4 tracked")
	}
}
