package revalidate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRegistryRunsTagHandlers(t *testing.T) {
	r := NewRegistry()
	var site, other atomic.Int32
	r.On(TagSiteContent, func() { site.Add(1) })
	r.On(TagSiteContent, func() { site.Add(1) })
	r.On("other", func() { other.Add(1) })

	if err := r.Invalidate(context.Background(), TagSiteContent); err != nil {
		t.Fatal(err)
	}
	if site.Load() != 2 || other.Load() != 0 {
		t.Fatalf("site=%d other=%d", site.Load(), other.Load())
	}
}

func TestRedisInvalidatorBroadcasts(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	newInstance := func(counter *atomic.Int32) *RedisInvalidator {
		rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		reg := NewRegistry()
		reg.On(TagSiteContent, func() { counter.Add(1) })
		inv, err := NewRedisInvalidator(ctx, rdb, reg, "", nil)
		if err != nil {
			t.Fatalf("NewRedisInvalidator: %v", err)
		}
		t.Cleanup(func() { _ = inv.Close() })
		return inv
	}

	var a, b atomic.Int32
	invA := newInstance(&a)
	newInstance(&b)

	if err := invA.Invalidate(ctx, TagSiteContent); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if a.Load() != 1 {
		t.Fatalf("local handler ran %d times, want 1", a.Load())
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.Load() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("remote instance not invalidated")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if a.Load() != 1 {
		t.Fatalf("own broadcast re-ran local handler: %d", a.Load())
	}
}
