package fs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/grufelous/bakker/internal/fs"
)

func TestCompressedFS_WriteReadRoundTrip(t *testing.T) {
	mem := fs.NewMemoryFS()
	cfs := fs.NewCompressedFS(mem)

	payload := bytes.Repeat([]byte("bakker "), 512)
	if err := cfs.WriteFile("blob", payload, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := cfs.ReadFile("blob")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("decompressed content does not match original")
	}

	raw, err := mem.ReadFile("blob")
	if err != nil {
		t.Fatalf("ReadFile on underlying fs failed: %v", err)
	}
	if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
		t.Error("underlying file is not gzip data")
	}
	if bytes.Equal(raw, payload) {
		t.Error("underlying file should differ from the plain content")
	}
}

func TestCompressedFS_TempFileRename(t *testing.T) {
	mem := fs.NewMemoryFS()
	cfs := fs.NewCompressedFS(mem)

	w, tmpPath, err := cfs.CreateTempFile(".", "tmp-*")
	if err != nil {
		t.Fatalf("CreateTempFile failed: %v", err)
	}
	if _, err := w.Write([]byte("atomic payload")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := cfs.Rename(tmpPath, "final"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	got, err := cfs.ReadFile("final")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "atomic payload" {
		t.Errorf("got %q, want %q", got, "atomic payload")
	}
}

func TestCompressedFS_OpenSeek(t *testing.T) {
	mem := fs.NewMemoryFS()
	cfs := fs.NewCompressedFS(mem)

	if err := cfs.WriteFile("f", []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	r, err := cfs.Open("f")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(rest) != "56789" {
		t.Errorf("got %q after seek, want %q", rest, "56789")
	}
}
