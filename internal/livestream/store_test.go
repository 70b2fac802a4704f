package livestream

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryStore_Lookup_unknown(t *testing.T) {
	store := NewInMemoryStore()

	_, found, err := store.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("expected not found for empty store")
	}
}

func TestInMemoryStore_Upsert_replaces(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Upsert(ctx, StreamRecord{StreamID: "abc", PlaybackID: "p1", IsLive: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Upsert(ctx, StreamRecord{StreamID: "abc", PlaybackID: "p2", IsLive: false}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
	got, found, err := store.Lookup(ctx, "abc")
	if err != nil || !found {
		t.Fatalf("Lookup: found=%v err=%v", found, err)
	}
	want := StreamRecord{StreamID: "abc", PlaybackID: "p2", IsLive: false}
	if got != want {
		t.Errorf("Lookup = %+v, want %+v", got, want)
	}
}

func TestInMemoryStore_concurrent_upserts(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%10)
			_ = store.Upsert(ctx, StreamRecord{StreamID: id, PlaybackID: fmt.Sprintf("p%d", i), IsLive: i%2 == 0})
		}(i)
	}
	wg.Wait()

	if store.Len() != 10 {
		t.Errorf("Len = %d, want 10", store.Len())
	}
}

func TestInMemoryStore_LiveCount(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_ = store.Upsert(ctx, StreamRecord{StreamID: "a", PlaybackID: "p", IsLive: true})
	_ = store.Upsert(ctx, StreamRecord{StreamID: "b", PlaybackID: "p", IsLive: true})
	_ = store.Upsert(ctx, StreamRecord{StreamID: "c", PlaybackID: "p", IsLive: false})
	_ = store.Upsert(ctx, StreamRecord{StreamID: "b", PlaybackID: "p", IsLive: false})

	n, err := store.LiveCount(ctx)
	if err != nil {
		t.Fatalf("LiveCount: %v", err)
	}
	if n != 1 {
		t.Errorf("LiveCount = %d, want 1", n)
	}
}
