package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperr "github.com/matzehuels/erdsync/pkg/errors"
)

func TestNew(t *testing.T) {
	s := New("orders", "ent ORDER")
	if !ValidID(s.ID) {
		t.Errorf("ID %q is not a uuid", s.ID)
	}
	if s.CreatedAt.IsZero() || !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", s.CreatedAt, s.UpdatedAt)
	}
	if New("a", "").ID == s.ID {
		t.Error("ids should be unique")
	}

	before := s.UpdatedAt
	time.Sleep(time.Millisecond)
	s.SetText("ent CUSTOMER")
	if s.Text != "ent CUSTOMER" || !s.UpdatedAt.After(before) {
		t.Errorf("SetText did not update: %+v", s)
	}
}

func TestValidID(t *testing.T) {
	for _, id := range []string{"", "../etc/passwd", "abc", "local-session"} {
		if ValidID(id) {
			t.Errorf("ValidID(%q) = true", id)
		}
	}
}

func TestErrNotFoundCode(t *testing.T) {
	if !apperr.Is(ErrNotFound, apperr.ErrCodeSessionNotFound) {
		t.Error("ErrNotFound should carry SESSION_NOT_FOUND")
	}
}

// testStore exercises the Store contract shared by every backend.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, New("", "").ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := New("older", "ent A")
	older.UpdatedAt = base
	newer := New("newer", "ent B (1, 2)")
	newer.UpdatedAt = base.Add(time.Hour)

	for _, s := range []*Session{older, newer} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Put(%s): %v", s.Name, err)
		}
	}

	got, err := store.Get(ctx, newer.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "newer" || got.Text != "ent B (1, 2)" || !got.UpdatedAt.Equal(newer.UpdatedAt) {
		t.Errorf("Get() = %+v", got)
	}

	got.Text = "mutated"
	again, _ := store.Get(ctx, newer.ID)
	if again.Text == "mutated" {
		t.Error("mutating a returned session changed the store")
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("List() order = %v", names(list))
	}

	older.Text = "ent A (5, 5)"
	older.UpdatedAt = base.Add(2 * time.Hour)
	if err := store.Put(ctx, older); err != nil {
		t.Fatal(err)
	}
	list, _ = store.List(ctx)
	if len(list) != 2 || list[0].ID != older.ID {
		t.Errorf("List() after update = %v", names(list))
	}

	if err := store.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v", err)
	}
}

func names(list []*Session) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStore(t, store)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	testStore(t, store)
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, &Session{ID: "../escape"}); err == nil {
		t.Error("Put with path id should fail")
	}
	if _, err := store.Get(ctx, "../escape"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get with path id error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := store.List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; foreign files should be skipped", list, err)
	}
}

func TestNewFileStoreRequiresDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty dir")
	}
}
