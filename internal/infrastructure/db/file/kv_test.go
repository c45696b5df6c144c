package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyValueStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	ctx := context.Background()

	first := NewKeyValueStore(path)
	if _, ok, err := first.Get(ctx, "authToken"); ok || err != nil {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	if err := first.Set(ctx, "authToken", "abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := first.Set(ctx, "user", `{"id":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	second := NewKeyValueStore(path)
	v, ok, err := second.Get(ctx, "authToken")
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("unexpected value %q ok=%v err=%v", v, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file should be private, got %v", info.Mode().Perm())
	}

	if err := second.Delete(ctx, "authToken"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := second.Delete(ctx, "authToken"); err != nil {
		t.Fatalf("repeated delete: %v", err)
	}
	if _, ok, _ := first.Get(ctx, "authToken"); ok {
		t.Fatalf("deleted key visible through other instance")
	}
	if v, _, _ := first.Get(ctx, "user"); v != `{"id":1}` {
		t.Fatalf("unrelated key lost: %q", v)
	}
}

func TestKeyValueStore_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	kv := NewKeyValueStore(path)

	if _, ok, err := kv.Get(context.Background(), "authToken"); ok || err != nil {
		t.Fatalf("corrupt file should read as empty, ok=%v err=%v", ok, err)
	}
	if err := kv.Set(context.Background(), "authToken", "x"); err != nil {
		t.Fatalf("set over corrupt file: %v", err)
	}
	if err := kv.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
