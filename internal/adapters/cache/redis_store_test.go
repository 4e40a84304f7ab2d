package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisStoreGetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "test:")
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}

	if err := store.Set(ctx, "k", []byte(`{"a":1}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	b, found, err := store.Get(ctx, "k")
	if err != nil || !found || string(b) != `{"a":1}` {
		t.Fatalf("Get(k) = %q, %v, %v", b, found, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Fatal("expected key to expire")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "test:")
	t.Cleanup(func() { _ = store.Close() })
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, _, err := store.Get(ctx, "k"); err == nil {
		t.Fatal("expected error from closed server")
	}
}
