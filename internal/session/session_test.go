package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "friendbook:session:", ttl), mr
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	redisStore, _ := newRedisStore(t, time.Hour)
	return map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  redisStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			desc := "Backend engineer"

			got, err := store.Get(ctx, 42)
			if err != nil || got != nil {
				t.Fatalf("expected no session, got %+v, %v", got, err)
			}

			in := &Session{
				UserID:      42,
				State:       StateAwaitingDescription,
				Photo:       []byte{0xff, 0xd8, 0x00},
				Name:        "Alice",
				Profession:  "Engineer",
				Description: &desc,
			}
			if err := store.Save(ctx, in); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err = store.Get(ctx, 42)
			if err != nil || got == nil {
				t.Fatalf("get: %+v, %v", got, err)
			}
			if got.State != StateAwaitingDescription || got.Name != "Alice" || got.Profession != "Engineer" {
				t.Fatalf("unexpected session: %+v", got)
			}
			if !bytes.Equal(got.Photo, in.Photo) {
				t.Fatalf("photo bytes differ: %v", got.Photo)
			}
			if got.Description == nil || *got.Description != desc {
				t.Fatalf("unexpected description: %v", got.Description)
			}

			if err := store.Delete(ctx, 42); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, 42); err != nil {
				t.Fatalf("second delete: %v", err)
			}
			got, err = store.Get(ctx, 42)
			if err != nil || got != nil {
				t.Fatalf("expected session to be gone, got %+v, %v", got, err)
			}
		})
	}
}

func TestStore_UsersAreIsolated(t *testing.T) {
	t.Parallel()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, &Session{UserID: 1, State: StateAwaitingName}); err != nil {
				t.Fatalf("save 1: %v", err)
			}
			if err := store.Save(ctx, &Session{UserID: 2, State: StateAwaitingPhoto}); err != nil {
				t.Fatalf("save 2: %v", err)
			}
			if err := store.Delete(ctx, 2); err != nil {
				t.Fatalf("delete 2: %v", err)
			}
			got, err := store.Get(ctx, 1)
			if err != nil || got == nil || got.State != StateAwaitingName {
				t.Fatalf("user 1 session affected: %+v, %v", got, err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	in := &Session{UserID: 7, State: StateAwaitingName, Photo: []byte("abc")}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	in.Photo[0] = 'x'
	in.State = StateAwaitingProfession

	got, _ := store.Get(ctx, 7)
	if got.State != StateAwaitingName || string(got.Photo) != "abc" {
		t.Fatalf("stored session mutated through caller: %+v", got)
	}
}

func TestMemoryStore_IdleExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(30 * time.Minute)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	for id := int64(1); id <= 3; id++ {
		if err := store.Save(ctx, &Session{UserID: id, State: StateAwaitingPhoto}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	store.now = func() time.Time { return base.Add(20 * time.Minute) }
	if err := store.Save(ctx, &Session{UserID: 3, State: StateAwaitingName}); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	later := base.Add(40 * time.Minute)
	store.now = func() time.Time { return later }
	if got, _ := store.Get(ctx, 1); got != nil {
		t.Fatalf("expected session 1 to be expired")
	}
	if got, _ := store.Get(ctx, 3); got == nil {
		t.Fatalf("expected refreshed session 3 to survive")
	}

	if removed := store.Sweep(later); removed != 1 {
		t.Fatalf("expected sweep to remove session 2 only, removed %d", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session left, got %d", store.Len())
	}
}

func TestRedisStore_KeyExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newRedisStore(t, 30*time.Minute)

	if err := store.Save(ctx, &Session{UserID: 99, State: StateAwaitingPhoto}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("friendbook:session:99") {
		t.Fatalf("expected key friendbook:session:99, have %v", mr.Keys())
	}
	if ttl := mr.TTL("friendbook:session:99"); ttl != 30*time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(31 * time.Minute)
	got, err := store.Get(ctx, 99)
	if err != nil || got != nil {
		t.Fatalf("expected expired session, got %+v, %v", got, err)
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	t.Parallel()
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	if _, err := store.Get(context.Background(), 1); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
