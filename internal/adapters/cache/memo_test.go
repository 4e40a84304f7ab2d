package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"route-weather-service/internal/domain"
)

type entry struct {
	Name string `json:"name"`
}

func TestMemoHitSkipsLoad(t *testing.T) {
	m := NewMemo[entry]("test_places", MemoOptions{Size: 10, TTL: time.Hour})
	c := domain.Coordinate{Lat: 1, Lon: 2}

	loads := 0
	load := func(ctx context.Context) (entry, bool) {
		loads++
		return entry{Name: "Boulder"}, true
	}

	first := m.Get(context.Background(), c, load)
	second := m.Get(context.Background(), c, load)

	if first.Name != "Boulder" || second.Name != "Boulder" {
		t.Fatalf("got %v, %v", first, second)
	}
	if loads != 1 {
		t.Fatalf("loads = %d, want 1", loads)
	}
}

func TestMemoNotCacheable(t *testing.T) {
	m := NewMemo[entry]("test_uncacheable", MemoOptions{Size: 10, TTL: time.Hour})
	c := domain.Coordinate{Lat: 1, Lon: 2}

	loads := 0
	load := func(ctx context.Context) (entry, bool) {
		loads++
		return entry{Name: "fallback"}, false
	}

	m.Get(context.Background(), c, load)
	m.Get(context.Background(), c, load)

	if loads != 2 {
		t.Fatalf("loads = %d, want 2", loads)
	}
	if m.lru.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.lru.Len())
	}
}

func TestMemoEvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemo[entry]("test_evict", MemoOptions{Size: 2, TTL: time.Hour})
	load := func(name string) LoadFunc[entry] {
		return func(ctx context.Context) (entry, bool) { return entry{Name: name}, true }
	}

	a := domain.Coordinate{Lat: 1}
	b := domain.Coordinate{Lat: 2}
	c := domain.Coordinate{Lat: 3}

	m.Get(context.Background(), a, load("a"))
	m.Get(context.Background(), b, load("b"))
	m.Get(context.Background(), c, load("c"))

	if m.lru.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.lru.Len())
	}

	got := m.Get(context.Background(), a, load("a-reloaded"))
	if got.Name != "a-reloaded" {
		t.Fatalf("expected a to be evicted and reloaded, got %q", got.Name)
	}
}

func TestMemoConcurrentMissesShareLoad(t *testing.T) {
	m := NewMemo[entry]("test_singleflight", MemoOptions{Size: 10, TTL: time.Hour})
	c := domain.Coordinate{Lat: 5, Lon: 5}

	var loads atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (entry, bool) {
		loads.Add(1)
		<-release
		return entry{Name: "shared"}, true
	}

	var wg sync.WaitGroup
	results := make([]entry, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Get(context.Background(), c, load)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, r := range results {
		if r.Name != "shared" {
			t.Errorf("result %d = %q", i, r.Name)
		}
	}
	if n := loads.Load(); n < 1 || n > 8 {
		t.Fatalf("loads = %d", n)
	}
	if m.lru.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.lru.Len())
	}
}

func TestMemoSharedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "rw:")
	t.Cleanup(func() { _ = store.Close() })

	c := domain.Coordinate{Lat: 40.015, Lon: -105.2705}
	opts := MemoOptions{Size: 10, TTL: time.Hour, Store: store, SharedTTL: time.Hour}

	first := NewMemo[entry]("places", opts)
	first.Get(context.Background(), c, func(ctx context.Context) (entry, bool) {
		return entry{Name: "Boulder"}, true
	})

	if !mr.Exists("rw:places:" + c.Key()) {
		t.Fatalf("expected shared key to be written, keys = %v", mr.Keys())
	}

	// A second memo (e.g. another process) is served from the shared tier.
	second := NewMemo[entry]("places", opts)
	got := second.Get(context.Background(), c, func(ctx context.Context) (entry, bool) {
		t.Fatal("load must not run on a shared hit")
		return entry{}, false
	})
	if got.Name != "Boulder" {
		t.Fatalf("got %q, want Boulder", got.Name)
	}
}

func TestMemoFollowerReloadsAfterCancelledLeader(t *testing.T) {
	m := NewMemo[entry]("test_cancelled_leader", MemoOptions{Size: 10, TTL: time.Hour})
	c := domain.Coordinate{Lat: 7, Lon: 7}

	leaderCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	leaderDone := make(chan entry)
	go func() {
		leaderDone <- m.Get(leaderCtx, c, func(ctx context.Context) (entry, bool) {
			close(started)
			<-ctx.Done()
			return entry{Name: "degraded"}, false
		})
	}()
	<-started

	var followerLoads atomic.Int32
	followerDone := make(chan entry)
	go func() {
		followerDone <- m.Get(context.Background(), c, func(ctx context.Context) (entry, bool) {
			followerLoads.Add(1)
			return entry{Name: "fresh"}, true
		})
	}()

	// Give the follower time to join the in-flight load before it is abandoned.
	time.Sleep(20 * time.Millisecond)
	cancel()

	if got := <-leaderDone; got.Name != "degraded" {
		t.Fatalf("leader got %q, want degraded", got.Name)
	}
	if got := <-followerDone; got.Name != "fresh" {
		t.Fatalf("follower with a live context got %q, want fresh", got.Name)
	}
	if n := followerLoads.Load(); n != 1 {
		t.Fatalf("follower loads = %d, want 1", n)
	}
	if m.lru.Len() != 1 {
		t.Fatalf("entries = %d, want 1", m.lru.Len())
	}
}
