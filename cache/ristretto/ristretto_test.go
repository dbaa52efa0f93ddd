package ristretto

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	validLevels := []string{"small", "medium", "large", "very-large"}
	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			cache, err := New[any](level)
			if err != nil {
				t.Fatalf("New(%q) returned an unexpected error: %v", level, err)
			}
			if cache == nil {
				t.Fatalf("New(%q) returned a nil cache, but no error", level)
			}
			cache.Close()
		})
	}

	invalidLevels := []string{"", "invalid-level", " medium"}
	for _, level := range invalidLevels {
		t.Run(level, func(t *testing.T) {
			cache, err := New[any](level)
			if err == nil {
				t.Errorf("New(%q) was expected to return an error, but did not", level)
			}
			if cache != nil {
				t.Errorf("New(%q) was expected to return a nil cache, but did not", level)
			}
		})
	}
}

func TestCache_SetGetDel(t *testing.T) {
	t.Parallel()
	cache, err := New[string]("small")
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cache.Close()

	key, value := "user-1", "a@example.com"
	cache.Set(key, value, 1)
	cache.Wait()

	retrieved, found := cache.Get(key)
	if !found || retrieved != value {
		t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", key, retrieved, found, value)
	}

	if retrieved, found = cache.Get("missing"); found || retrieved != "" {
		t.Errorf("Get(missing) = (%q, %v), want zero miss", retrieved, found)
	}

	cache.Set(key, "b@example.com", 1)
	cache.Wait()
	if retrieved, _ = cache.Get(key); retrieved != "b@example.com" {
		t.Errorf("expected overwritten value, got %q", retrieved)
	}

	cache.Del(key)
	if _, found = cache.Get(key); found {
		t.Error("key still present after Del")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	t.Parallel()
	cache, err := New[int]("small")
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cache.Close()

	ttl := 50 * time.Millisecond
	cache.SetWithTTL("ttl-key", 123, 1, ttl)
	cache.Wait()

	if v, found := cache.Get("ttl-key"); !found || v != 123 {
		t.Fatalf("Get before expiry = (%d, %v)", v, found)
	}

	time.Sleep(ttl + 20*time.Millisecond)

	if v, found := cache.Get("ttl-key"); found || v != 0 {
		t.Errorf("Get after expiry = (%d, %v), want (0, false)", v, found)
	}
}

func TestCache_PointerValues(t *testing.T) {
	t.Parallel()
	type user struct{ ID string }
	cache, _ := New[*user]("small")
	defer cache.Close()

	if v, found := cache.Get("x"); found || v != nil {
		t.Errorf("expected (nil, false), got (%v, %v)", v, found)
	}

	u := &user{ID: "x"}
	cache.Set("x", u, 1)
	cache.Wait()
	if v, _ := cache.Get("x"); v != u {
		t.Errorf("expected same pointer back")
	}
}
