package session

import (
	"os"
	"path/filepath"
	"testing"

	"coinlens/internal/util"
)

func TestStoreSetGetClear(t *testing.T) {
	log := util.NewLogger("error")
	s := NewStore("", log)

	if _, ok := s.Get("missing"); ok {
		t.Error("Get on empty store returned ok")
	}

	s.Set("table:main:page", "3")
	if v, ok := s.Get("table:main:page"); !ok || v != "3" {
		t.Errorf("Get = %q (%v), want %q", v, ok, "3")
	}

	s.Clear("table:main:page")
	if _, ok := s.Get("table:main:page"); ok {
		t.Error("value survived Clear")
	}
}

func TestStorePersistence(t *testing.T) {
	log := util.NewLogger("error")
	path := filepath.Join(t.TempDir(), "session.json")

	s := NewStore(path, log)
	s.Set("channels", "A,B")
	s.Set("table:main:page", "2")
	s.Clear("table:main:page")

	// A fresh store on the same file sees the surviving keys only.
	s2 := NewStore(path, log)
	if v, ok := s2.Get("channels"); !ok || v != "A,B" {
		t.Errorf("reloaded Get = %q (%v), want %q", v, ok, "A,B")
	}
	if _, ok := s2.Get("table:main:page"); ok {
		t.Error("cleared key reappeared after reload")
	}
}

func TestStoreMalformedFile(t *testing.T) {
	log := util.NewLogger("error")
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, log)
	if len(s.Snapshot()) != 0 {
		t.Errorf("Snapshot = %v, want empty for malformed file", s.Snapshot())
	}

	// The store stays usable and overwrites the bad file.
	s.Set("k", "v")
	s2 := NewStore(path, log)
	if v, ok := s2.Get("k"); !ok || v != "v" {
		t.Errorf("reloaded Get = %q (%v), want %q", v, ok, "v")
	}
}
