package ratelimit

import (
	"sync"
	"time"
)

// WindowConfig configures a KeyedWindow limiter
type WindowConfig struct {
	// MaxRequests is the number of requests allowed per key per window
	MaxRequests int
	// Window is the fixed window duration
	Window time.Duration
	// CleanupPeriod is how often stale key entries are evicted
	CleanupPeriod time.Duration
	// OnDrop is called with the key whenever a request is rejected.
	// May be nil.
	OnDrop func(key string)
}

type windowEntry struct {
	count       int
	windowStart time.Time
}

// KeyedWindow is a per-key fixed-window counter. Each key gets up to
// MaxRequests within a window; the counter resets when the window rolls.
type KeyedWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	cfg     WindowConfig
	stop    chan struct{}
	stopped sync.Once
}

// NewKeyedWindow creates a per-key limiter and starts its cleanup loop.
// Call Stop to release the background goroutine.
func NewKeyedWindow(cfg WindowConfig) *KeyedWindow {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	kw := &KeyedWindow{
		entries: make(map[string]*windowEntry),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}

	go kw.cleanupLoop()

	return kw
}

// Allow reports whether the request identified by key may proceed.
func (kw *KeyedWindow) Allow(key string) bool {
	now := time.Now()

	kw.mu.Lock()

	entry, ok := kw.entries[key]
	if !ok || now.Sub(entry.windowStart) >= kw.cfg.Window {
		kw.entries[key] = &windowEntry{count: 1, windowStart: now}
		kw.mu.Unlock()
		return true
	}

	if entry.count < kw.cfg.MaxRequests {
		entry.count++
		kw.mu.Unlock()
		return true
	}

	kw.mu.Unlock()

	if kw.cfg.OnDrop != nil {
		kw.cfg.OnDrop(key)
	}
	return false
}

// Remaining returns how many requests the key has left in its current window
func (kw *KeyedWindow) Remaining(key string) int {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	entry, ok := kw.entries[key]
	if !ok || time.Since(entry.windowStart) >= kw.cfg.Window {
		return kw.cfg.MaxRequests
	}

	remaining := kw.cfg.MaxRequests - entry.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanupLoop periodically evicts entries whose window has expired
func (kw *KeyedWindow) cleanupLoop() {
	ticker := time.NewTicker(kw.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kw.stop:
			return
		case <-ticker.C:
			kw.cleanup()
		}
	}
}

func (kw *KeyedWindow) cleanup() {
	now := time.Now()

	kw.mu.Lock()
	defer kw.mu.Unlock()

	for key, entry := range kw.entries {
		if now.Sub(entry.windowStart) >= kw.cfg.Window {
			delete(kw.entries, key)
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (kw *KeyedWindow) Stop() {
	kw.stopped.Do(func() {
		close(kw.stop)
	})
}
