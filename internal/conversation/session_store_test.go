package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *RedisSessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client, time.Hour)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history != nil {
		t.Fatalf("expected nil history for fresh session, got %v", history)
	}

	want := []ChatMessage{
		{Role: ChatRoleSystem, Content: "instrucciones"},
		{Role: ChatRoleUser, Content: "hola"},
	}
	if err := store.SaveHistory(ctx, "s1", want); err != nil {
		t.Fatalf("save history: %v", err)
	}
	got, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 2 || got[1].Content != "hola" {
		t.Fatalf("history = %v", got)
	}

	state := &ReservationState{Paso: StepCollectingContact, Fecha: "2026-07-21", Hora: "10:00"}
	if err := store.SaveState(ctx, "s1", state); err != nil {
		t.Fatalf("save state: %v", err)
	}
	loaded, err := store.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if loaded == nil || loaded.Paso != StepCollectingContact || loaded.Fecha != "2026-07-21" {
		t.Fatalf("state = %+v", loaded)
	}
}

func TestRedisSessionStoreResetKeepsHistory(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_ = store.SaveHistory(ctx, "s1", newSessionHistory())
	_ = store.SaveState(ctx, "s1", &ReservationState{Paso: StepConfirming})

	if err := store.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	state, err := store.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != nil {
		t.Fatalf("state survived reset: %+v", state)
	}
	history, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("history lost on reset")
	}
}

func TestRedisSessionStoreSaveNilStateDeletes(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_ = store.SaveState(ctx, "s1", &ReservationState{Paso: StepConfirming})
	if err := store.SaveState(ctx, "s1", nil); err != nil {
		t.Fatalf("save nil state: %v", err)
	}
	state, err := store.State(ctx, "s1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != nil {
		t.Fatalf("state = %+v, want nil", state)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	now := time.Date(2026, time.July, 15, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(time.Hour).WithNow(func() time.Time { return now })
	ctx := context.Background()

	_ = store.SaveHistory(ctx, "s1", newSessionHistory())
	_ = store.SaveState(ctx, "s1", &ReservationState{Paso: StepCollectingDatetime})

	history, _ := store.History(ctx, "s1")
	if len(history) == 0 {
		t.Fatal("history missing before expiry")
	}

	now = now.Add(2 * time.Hour)

	history, _ = store.History(ctx, "s1")
	if history != nil {
		t.Fatalf("history survived expiry: %v", history)
	}
	state, _ := store.State(ctx, "s1")
	if state != nil {
		t.Fatalf("state survived expiry: %+v", state)
	}
}

func TestMemorySessionStoreSweep(t *testing.T) {
	now := time.Date(2026, time.July, 15, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(time.Hour).WithNow(func() time.Time { return now })
	ctx := context.Background()

	_ = store.SaveHistory(ctx, "s1", newSessionHistory())
	_ = store.SaveHistory(ctx, "s2", newSessionHistory())

	now = now.Add(90 * time.Minute)
	_ = store.SaveHistory(ctx, "s3", newSessionHistory())

	if evicted := store.Sweep(); evicted != 2 {
		t.Fatalf("evicted = %d, want 2", evicted)
	}
	if history, _ := store.History(ctx, "s3"); len(history) == 0 {
		t.Fatal("live session evicted")
	}
}

func TestMemorySessionStoreCopiesOnReadAndWrite(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	original := []ChatMessage{{Role: ChatRoleUser, Content: "hola"}}
	_ = store.SaveHistory(ctx, "s1", original)
	original[0].Content = "mutated"

	got, _ := store.History(ctx, "s1")
	if got[0].Content != "hola" {
		t.Fatalf("store shares caller slice: %v", got)
	}

	state := &ReservationState{Paso: StepConfirming, Nombre: "Jane Doe"}
	_ = store.SaveState(ctx, "s1", state)
	state.Nombre = "mutated"

	loaded, _ := store.State(ctx, "s1")
	if loaded.Nombre != "Jane Doe" {
		t.Fatalf("store shares caller state: %+v", loaded)
	}
}
