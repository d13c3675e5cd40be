package images

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	content := []byte("jpeg bytes")
	if err := os.WriteFile(filepath.Join(dir, "Ada_Lovelace_mr-1_pic-1.jpg"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(dir)
	img, err := svc.Lookup("mr-1", "pic-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if img.ID != "pic-1" || img.SubjectID != "mr-1" {
		t.Errorf("unexpected ids: %+v", img)
	}
	if img.Type != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", img.Type)
	}
	if img.Image != base64.StdEncoding.EncodeToString(content) {
		t.Errorf("unexpected payload: %q", img.Image)
	}
}

func TestLookup_RequiresBothIDs(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mr-1_other-pic.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(dir)
	if _, err := svc.Lookup("mr-1", "pic-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookup_MissingDir(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "nope"))
	if _, err := svc.Lookup("mr-1", "pic-1"); err == nil {
		t.Fatal("expected an error")
	}
}
