package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestTokenStore_TokenRoundTrip(t *testing.T) {
	kv := newStubKV()
	store := NewTokenStore(kv, "", zerolog.Nop())
	ctx := context.Background()

	if _, ok, err := store.Token(ctx); ok || err != nil {
		t.Fatalf("expected absent token, got ok=%v err=%v", ok, err)
	}
	if err := store.SetToken(ctx, "abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if kv.data["authToken"] != "abc123" {
		t.Fatalf("token not stored under authToken: %+v", kv.data)
	}
	tok, ok, err := store.Token(ctx)
	if err != nil || !ok || tok != "abc123" {
		t.Fatalf("unexpected token %q ok=%v err=%v", tok, ok, err)
	}

	if err := store.RemoveToken(ctx); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if err := store.RemoveToken(ctx); err != nil {
		t.Fatalf("second RemoveToken should be a no-op: %v", err)
	}
	if _, ok, _ := store.Token(ctx); ok {
		t.Fatalf("token should be gone")
	}
}

func TestTokenStore_UserRoundTrip(t *testing.T) {
	kv := newStubKV()
	store := NewTokenStore(kv, "", zerolog.Nop())
	ctx := context.Background()

	if err := store.SetUser(ctx, doctorUser()); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if kv.data["user"] != doctorJSON {
		t.Fatalf("unexpected serialized user %s", kv.data["user"])
	}

	u, ok, err := store.User(ctx)
	if err != nil || !ok {
		t.Fatalf("expected user, ok=%v err=%v", ok, err)
	}
	if *u != *doctorUser() {
		t.Fatalf("unexpected user %+v", u)
	}

	if err := store.RemoveUser(ctx); err != nil {
		t.Fatalf("RemoveUser: %v", err)
	}
	if err := store.RemoveUser(ctx); err != nil {
		t.Fatalf("second RemoveUser should be a no-op: %v", err)
	}
}

func TestTokenStore_MalformedUserIsAbsent(t *testing.T) {
	for _, raw := range []string{"{not json", "[1,2,3]", `"just a string"`, "null", "{}", `{"id":4,"email":"x@hms.com"}`} {
		kv := seededKV("", raw)
		store := NewTokenStore(kv, "", zerolog.Nop())

		u, ok, err := store.User(context.Background())
		if err != nil {
			t.Fatalf("%q: malformed user must not error, got %v", raw, err)
		}
		if ok || u != nil {
			t.Fatalf("%q: malformed user must be absent, got %+v", raw, u)
		}
	}
}

func TestTokenStore_Prefix(t *testing.T) {
	kv := newStubKV()
	store := NewTokenStore(kv, "hms:", zerolog.Nop())

	if err := store.SetToken(context.Background(), "abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if kv.data["hms:authToken"] != "abc" {
		t.Fatalf("expected prefixed key, got %+v", kv.data)
	}
}

func TestTokenStore_BackendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	kv := newStubKV()
	kv.getErr = boom
	store := NewTokenStore(kv, "", zerolog.Nop())

	if _, _, err := store.Token(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if _, _, err := store.User(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestTokenStore_CheckpointRestoreIsVerbatim(t *testing.T) {
	kv := seededKV("old", "not-json")
	store := NewTokenStore(kv, "", zerolog.Nop())
	ctx := context.Background()

	cp, err := store.Checkpoint(ctx)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	_ = store.SetToken(ctx, "new")
	_ = store.SetUser(ctx, doctorUser())

	if err := store.Restore(ctx, cp); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if kv.data[TokenKey] != "old" || kv.data[UserKey] != "not-json" {
		t.Fatalf("records not restored verbatim: %+v", kv.data)
	}
}

func TestTokenStore_RestoreDeletesAbsentKeys(t *testing.T) {
	kv := newStubKV()
	store := NewTokenStore(kv, "", zerolog.Nop())
	ctx := context.Background()

	cp, _ := store.Checkpoint(ctx)
	_ = store.SetToken(ctx, "new")
	if err := store.Restore(ctx, cp); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(kv.data) != 0 {
		t.Fatalf("expected empty store, got %+v", kv.data)
	}
}
