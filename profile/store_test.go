package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "agtest")
}

func TestStoreAttributesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.SetAttributes(ctx, "u1", map[string]string{
		"role":                 "provider",
		"provider_is_approved": "true",
	}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}

	attrs, err := store.Attributes(ctx, "u1")
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs["role"] != "provider" || attrs["provider_is_approved"] != "true" {
		t.Fatalf("attrs = %v", attrs)
	}
}

func TestStoreMissingUserYieldsEmptyMap(t *testing.T) {
	store := newTestStore(t)
	attrs, err := store.Attributes(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected empty map, got %v", attrs)
	}
}

func TestStoreUpdateMarker(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	marker, err := store.LastProfileUpdate(ctx, "u1")
	if err != nil {
		t.Fatalf("LastProfileUpdate: %v", err)
	}
	if !marker.IsZero() {
		t.Fatalf("unrecorded marker must be zero, got %v", marker)
	}

	at := time.Now().Truncate(time.Nanosecond)
	if err := store.RecordProfileUpdate(ctx, "u1", at); err != nil {
		t.Fatalf("RecordProfileUpdate: %v", err)
	}

	marker, err = store.LastProfileUpdate(ctx, "u1")
	if err != nil {
		t.Fatalf("LastProfileUpdate: %v", err)
	}
	if !marker.Equal(at) {
		t.Fatalf("marker = %v, want %v", marker, at)
	}
}

func TestStoreUnavailableMapping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewStore(client, "")
	mr.Close()

	_, err := store.Attributes(context.Background(), "u1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	_, err = store.LastProfileUpdate(context.Background(), "u1")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestUserProfileView(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.SetAttributes(ctx, "u7", map[string]string{"email": "s@example.com"}); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}

	view := store.ForUser("u7")
	attrs, err := view.FetchAttributes(ctx)
	if err != nil {
		t.Fatalf("FetchAttributes: %v", err)
	}
	if attrs["email"] != "s@example.com" {
		t.Fatalf("attrs = %v", attrs)
	}

	at := time.Now()
	if err := view.RecordProfileUpdate(ctx, at); err != nil {
		t.Fatalf("RecordProfileUpdate: %v", err)
	}
	marker, err := view.LastProfileUpdate(ctx)
	if err != nil {
		t.Fatalf("LastProfileUpdate: %v", err)
	}
	if !marker.Equal(at) {
		t.Fatalf("marker = %v, want %v", marker, at)
	}
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(map[string]string{"role": "traveler"})

	attrs, err := mem.FetchAttributes(ctx)
	if err != nil {
		t.Fatalf("FetchAttributes: %v", err)
	}
	if attrs["role"] != "traveler" {
		t.Fatalf("attrs = %v", attrs)
	}

	// The returned map is a copy; mutating it must not leak back.
	attrs["role"] = "admin"
	again, _ := mem.FetchAttributes(ctx)
	if again["role"] != "traveler" {
		t.Fatalf("FetchAttributes must return a copy")
	}

	at := time.Now()
	if err := mem.RecordProfileUpdate(ctx, at); err != nil {
		t.Fatalf("RecordProfileUpdate: %v", err)
	}
	marker, _ := mem.LastProfileUpdate(ctx)
	if !marker.Equal(at) {
		t.Fatalf("marker = %v, want %v", marker, at)
	}
}
