package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/storage"
)

func TestVerify_ReportsBlobHealth(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"keep.txt":   "keep me",
		"damage.txt": "damage me",
		"lose.txt":   "lose me",
	})

	cp := buildCheckpoint(t, src, "health")
	st := newTestStorage(t)
	if err := st.Store(src, cp); err != nil {
		t.Fatal(err)
	}

	checks, err := st.Verify()
	if err != nil {
		t.Fatal(err)
	}
	if len(checks) != 3 {
		t.Fatalf("expected 3 object checks, got %d", len(checks))
	}
	id := cp.Meta().Encode()
	for _, c := range checks {
		if c.Status != storage.ObjectOK {
			t.Errorf("object %s unexpectedly unhealthy", c.Checksum)
		}
		if len(c.Checkpoints) != 1 || c.Checkpoints[0] != id {
			t.Errorf("object %s references %v, want [%s]", c.Checksum, c.Checkpoints, id)
		}
	}

	damaged := checkpoint.ChecksumBytes([]byte("damage me"))
	missing := checkpoint.ChecksumBytes([]byte("lose me"))
	if err := os.WriteFile(filepath.Join(st.Root, "objects", damaged), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(st.Root, "objects", missing)); err != nil {
		t.Fatal(err)
	}

	checks, err = st.Verify()
	if err != nil {
		t.Fatal(err)
	}
	statuses := map[string]storage.ObjectStatus{}
	for _, c := range checks {
		statuses[c.Checksum] = c.Status
	}
	if statuses[checkpoint.ChecksumBytes([]byte("keep me"))] != storage.ObjectOK {
		t.Error("intact object reported unhealthy")
	}
	if statuses[damaged] != storage.ObjectDamaged {
		t.Error("tampered object not reported damaged")
	}
	if statuses[missing] != storage.ObjectMissing {
		t.Error("deleted object not reported missing")
	}
}

func TestVerify_SharedBlobListsAllReferences(t *testing.T) {
	st := newTestStorage(t)

	srcA := t.TempDir()
	writeTree(t, srcA, map[string]string{"a": "common", "onlya": "A"})
	cpA := buildCheckpoint(t, srcA, "")
	if err := st.Store(srcA, cpA); err != nil {
		t.Fatal(err)
	}

	srcB := t.TempDir()
	writeTree(t, srcB, map[string]string{"b": "common"})
	cpB := buildCheckpoint(t, srcB, "")
	if err := st.Store(srcB, cpB); err != nil {
		t.Fatal(err)
	}

	checks, err := st.Verify()
	if err != nil {
		t.Fatal(err)
	}

	shared := checkpoint.ChecksumBytes([]byte("common"))
	var refs []string
	for _, c := range checks {
		if c.Checksum == shared {
			refs = c.Checkpoints
		}
	}
	if len(refs) != 2 {
		t.Fatalf("shared blob references %v, want both checkpoints", refs)
	}
	want := map[string]bool{cpA.Meta().Encode(): true, cpB.Meta().Encode(): true}
	for _, id := range refs {
		if !want[id] {
			t.Errorf("unexpected reference %q", id)
		}
	}
}
