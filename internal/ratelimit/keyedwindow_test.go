package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedWindowAllow(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 10,
		Window:      time.Minute,
	})
	defer kw.Stop()

	for i := 0; i < 10; i++ {
		if !kw.Allow("1001") {
			t.Errorf("request %d denied, want allowed", i+1)
		}
	}

	if kw.Allow("1001") {
		t.Error("11th request allowed, want denied")
	}
}

func TestKeyedWindowPerKey(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 2,
		Window:      time.Minute,
	})
	defer kw.Stop()

	kw.Allow("1001")
	kw.Allow("1001")

	if kw.Allow("1001") {
		t.Error("exhausted key still allowed")
	}
	if !kw.Allow("1002") {
		t.Error("independent key denied")
	}
}

func TestKeyedWindowRolls(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 1,
		Window:      50 * time.Millisecond,
	})
	defer kw.Stop()

	if !kw.Allow("1001") {
		t.Fatal("first request denied")
	}
	if kw.Allow("1001") {
		t.Fatal("second request allowed within window")
	}

	time.Sleep(60 * time.Millisecond)

	if !kw.Allow("1001") {
		t.Error("request denied after window rolled")
	}
}

func TestKeyedWindowOnDrop(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		dropped []string
	)

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 1,
		Window:      time.Minute,
		OnDrop: func(key string) {
			mu.Lock()
			dropped = append(dropped, key)
			mu.Unlock()
		},
	})
	defer kw.Stop()

	kw.Allow("1001")
	kw.Allow("1001")
	kw.Allow("1001")

	mu.Lock()
	defer mu.Unlock()
	if len(dropped) != 2 {
		t.Errorf("OnDrop called %d times, want 2", len(dropped))
	}
}

func TestKeyedWindowRemaining(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 3,
		Window:      time.Minute,
	})
	defer kw.Stop()

	if got := kw.Remaining("1001"); got != 3 {
		t.Errorf("Remaining() = %d, want 3", got)
	}

	kw.Allow("1001")

	if got := kw.Remaining("1001"); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
}

func TestKeyedWindowCleanup(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests:   1,
		Window:        10 * time.Millisecond,
		CleanupPeriod: 20 * time.Millisecond,
	})
	defer kw.Stop()

	kw.Allow("1001")

	time.Sleep(50 * time.Millisecond)

	kw.mu.Lock()
	size := len(kw.entries)
	kw.mu.Unlock()

	if size != 0 {
		t.Errorf("entries size = %d after cleanup, want 0", size)
	}
}

func TestKeyedWindowStopIdempotent(t *testing.T) {
	t.Parallel()

	kw := NewKeyedWindow(WindowConfig{
		MaxRequests: 1,
		Window:      time.Minute,
	})

	kw.Stop()
	kw.Stop()
}
