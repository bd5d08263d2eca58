package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/recipematch/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
		miss  bool
	}{
		{name: "snapshot bytes", key: "catalog:api:500", value: []byte(`[{"id":"p1"}]`), ttl: time.Minute},
		{name: "empty value", key: "catalog:empty", value: []byte{}, ttl: time.Minute},
		{name: "expired entry", key: "catalog:old", value: []byte("x"), ttl: time.Millisecond, miss: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if tt.miss {
				time.Sleep(10 * time.Millisecond)
			}

			got, err := cache.Get(ctx, tt.key)
			if tt.miss {
				if err != domain.ErrCacheMiss {
					t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get() = %q after caller mutated its buffer, want %q", got, "original")
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("Get() = %q after caller mutated the result, want %q", again, "original")
	}
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "k")
	if err != nil || exists {
		t.Fatalf("Exists() = %v, %v before Set, want false, nil", exists, err)
	}

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "k"); !exists {
		t.Errorf("Exists() = false after Set, want true")
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after Delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if err := cache.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}

	if err := cache.Set(ctx, "short", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if exists, _ := cache.Exists(ctx, "short"); exists {
		t.Errorf("Exists() = true after expiry, want false")
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	cache.Set(ctx, "fresh", []byte("v"), time.Hour)
	cache.Set(ctx, "stale", []byte("v"), time.Millisecond)

	cache.removeExpired(time.Now().Add(time.Second))

	if n := cache.Len(); n != 1 {
		t.Errorf("Len() = %d after sweep, want 1", n)
	}
	if exists, _ := cache.Exists(ctx, "fresh"); !exists {
		t.Errorf("fresh entry removed by sweep")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, []byte(key), time.Minute); err != nil {
				t.Errorf("concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n := cache.Len(); n != 10 {
		t.Errorf("Len() = %d, want 10", n)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
