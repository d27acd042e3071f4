package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, sessionTTL, cacheTTL time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb, sessionTTL, cacheTTL, nil), mr
}

func TestHistoryRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 2*time.Hour, 30*time.Minute)
	ctx := context.Background()

	history, err := store.History(ctx, "u1")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history for new user, got %d turns", len(history))
	}

	turns := []Turn{
		{Role: RoleUser, Text: "do you know anjali"},
		{Role: RoleModel, FunctionCall: &FunctionCall{Name: FnNearbyServices, Args: map[string]any{"user_name": "anjali"}}},
	}
	if err := store.SaveHistory(ctx, "u1", turns); err != nil {
		t.Fatalf("SaveHistory error: %v", err)
	}

	got, err := store.History(ctx, "u1")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(got) != 2 || got[0].Text != "do you know anjali" {
		t.Fatalf("unexpected history: %+v", got)
	}
	if got[1].FunctionCall == nil || got[1].FunctionCall.Name != FnNearbyServices {
		t.Fatalf("function call turn lost: %+v", got[1])
	}
}

func TestSessionExpiryDropsAllState(t *testing.T) {
	store, mr := newTestStore(t, time.Hour, 30*time.Minute)
	ctx := context.Background()

	if err := store.SaveHistory(ctx, "u1", []Turn{{Role: RoleUser, Text: "hi"}}); err != nil {
		t.Fatalf("SaveHistory error: %v", err)
	}
	if err := store.SavePendingAppointment(ctx, "u1", PendingAppointment{Date: "2025-06-13", Time: "14:00:00", Duration: 60}); err != nil {
		t.Fatalf("SavePendingAppointment error: %v", err)
	}
	if err := store.CacheSearch(ctx, "u1", "anjali||18.520000|73.850000", []byte(`{"success":true}`)); err != nil {
		t.Fatalf("CacheSearch error: %v", err)
	}

	mr.FastForward(time.Hour + time.Minute)

	history, err := store.History(ctx, "u1")
	if err != nil || len(history) != 0 {
		t.Errorf("history should be gone: %v, %v", history, err)
	}
	pending, err := store.PendingAppointment(ctx, "u1")
	if err != nil || !pending.IsZero() {
		t.Errorf("pending appointment should be gone: %+v, %v", pending, err)
	}
	if _, ok, _ := store.CachedSearch(ctx, "u1", "anjali||18.520000|73.850000"); ok {
		t.Error("search cache should be gone")
	}
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	store, mr := newTestStore(t, time.Hour, 30*time.Minute)
	ctx := context.Background()

	if err := store.SaveHistory(ctx, "u1", []Turn{{Role: RoleUser, Text: "hi"}}); err != nil {
		t.Fatalf("SaveHistory error: %v", err)
	}

	mr.FastForward(45 * time.Minute)
	store.Touch(ctx, "u1")
	mr.FastForward(45 * time.Minute)

	history, err := store.History(ctx, "u1")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 1 {
		t.Fatal("touched session should survive past the original deadline")
	}
}

func TestSearchCacheExpiresBeforeSession(t *testing.T) {
	store, mr := newTestStore(t, 2*time.Hour, 30*time.Minute)
	ctx := context.Background()

	key := SearchKey("", "doctor", 18.52, 73.85)
	if err := store.CacheSearch(ctx, "u1", key, []byte(`{"success":true}`)); err != nil {
		t.Fatalf("CacheSearch error: %v", err)
	}

	if _, ok, err := store.CachedSearch(ctx, "u1", key); err != nil || !ok {
		t.Fatalf("expected cache hit, ok=%v err=%v", ok, err)
	}

	mr.FastForward(31 * time.Minute)

	if _, ok, _ := store.CachedSearch(ctx, "u1", key); ok {
		t.Fatal("expected cache miss after cache TTL")
	}
}

func TestClearPendingAppointment(t *testing.T) {
	store, _ := newTestStore(t, time.Hour, 30*time.Minute)
	ctx := context.Background()

	if err := store.SavePendingAppointment(ctx, "u1", PendingAppointment{Date: "2025-06-13"}); err != nil {
		t.Fatalf("SavePendingAppointment error: %v", err)
	}
	if err := store.ClearPendingAppointment(ctx, "u1"); err != nil {
		t.Fatalf("ClearPendingAppointment error: %v", err)
	}
	pending, err := store.PendingAppointment(ctx, "u1")
	if err != nil || !pending.IsZero() {
		t.Fatalf("pending should be cleared: %+v, %v", pending, err)
	}
}

func TestSearchKeyNormalizes(t *testing.T) {
	a := SearchKey("  Anjali ", "", 18.52, 73.85)
	b := SearchKey("anjali", "", 18.52, 73.85)
	if a != b {
		t.Errorf("name normalization: %q != %q", a, b)
	}

	c := SearchKey("", "Doctors", 18.52, 73.85)
	d := SearchKey("", "physician", 18.52, 73.85)
	if c != d {
		t.Errorf("tag normalization: %q != %q", c, d)
	}
}
