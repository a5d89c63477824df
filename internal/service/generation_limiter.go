package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// GenerationLimiter limita cuantas calificaciones por generador puede pedir un usuario
// dentro de una ventana.
type GenerationLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryGenerationLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryGenerationLimiter crea un limitador de ventana deslizante en memoria.
func NewMemoryGenerationLimiter(window time.Duration, max int) GenerationLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryGenerationLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryGenerationLimiter) Allow(_ context.Context, key string) bool {
	key = normalizeLimiterKey(key)
	if key == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// sweep borra, a lo sumo una vez por ventana, los usuarios sin hits vigentes. Los hits
// de cada clave estan en orden, asi que basta mirar el ultimo.
func (l *memoryGenerationLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

type noopGenerationLimiter struct{}

func (noopGenerationLimiter) Allow(context.Context, string) bool { return true }
