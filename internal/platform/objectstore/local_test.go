package objectstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorePutListDelete(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocal(root, "http://localhost:5000", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	if err := s.Put(ctx, "images/a.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(root, "images", "a.png"))
	if err != nil || string(raw) != "png-bytes" {
		t.Fatalf("stored content: got=%q err=%v", raw, err)
	}

	objs, err := s.List(ctx, "images/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 1 || objs[0].Key != "images/a.png" || objs[0].Updated.IsZero() {
		t.Fatalf("unexpected list: %+v", objs)
	}

	if err := s.Delete(ctx, "images/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "images/a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want=%v got=%v", ErrNotFound, err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	s, err := NewLocal(t.TempDir(), "", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	for _, key := range []string{"../etc/passwd", "images/../../x", "", "/"} {
		if err := s.Put(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("Put(%q): expected error", key)
		}
	}
}

func TestLocalStorePublicURL(t *testing.T) {
	s, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), "http://localhost:5000/", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	want := "http://localhost:5000/uploads/images/a.png"
	if got := s.PublicURL("/images/a.png"); got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestCleanKey(t *testing.T) {
	got, err := CleanKey(`images\\x/./a.png`)
	if err != nil || got != "images/x/a.png" {
		t.Fatalf("want=images/x/a.png got=%q err=%v", got, err)
	}
}
