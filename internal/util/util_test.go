package util_test

import (
	"testing"

	"github.com/grufelous/bakker/internal/fs"
	"github.com/grufelous/bakker/internal/util"
)

func TestWriteReadJSON(t *testing.T) {
	m := fs.NewMemoryFS()
	if err := m.MkdirAll("d", 0o755); err != nil {
		t.Fatal(err)
	}

	in := map[string]string{"alpha": "1", "beta": "2"}
	if err := util.WriteJSON(m, "d/out.json", in); err != nil {
		t.Fatal(err)
	}

	var out map[string]string
	if err := util.ReadJSON(m, "d/out.json", &out); err != nil {
		t.Fatal(err)
	}
	if out["alpha"] != "1" || out["beta"] != "2" {
		t.Fatalf("unexpected round-trip: %v", out)
	}

	// indented output
	data, err := m.ReadFile("d/out.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:2]) != "{\n" {
		t.Fatalf("expected indented JSON, got %q", data)
	}
}

func TestWriteFileAtomic_OverwritesExisting(t *testing.T) {
	m := fs.NewMemoryFS()
	m.MkdirAll("d", 0o755)
	m.WriteFile("d/f", []byte("old"), 0o644)

	if err := util.WriteFileAtomic(m, "d/f", []byte("new")); err != nil {
		t.Fatal(err)
	}

	data, err := m.ReadFile("d/f")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("expected new, got %q", data)
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	m := fs.NewMemoryFS()
	if err := util.WriteFileAtomic(m, "missing/f", []byte("x")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}

func TestReadJSON_MissingFile(t *testing.T) {
	m := fs.NewMemoryFS()
	var out map[string]string
	if err := util.ReadJSON(m, "nope.json", &out); err == nil {
		t.Fatal("expected error")
	}
}

func TestSortedKeys(t *testing.T) {
	keys := util.SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("unexpected order: %v", keys)
	}
}
