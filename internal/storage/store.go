package storage

import (
	"fmt"
	"path/filepath"

	"golang.org/x/exp/mmap"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/progress"
	"github.com/grufelous/bakker/internal/util"
)

// copyChunkSize bounds how much of a source file is resident per read.
const copyChunkSize = 4 * 1024 * 1024

// Store persists cp's document plus one content blob per file and symlink
// node. File bytes come from the live tree under srcPath; a blob whose
// checksum is already stored is not written again.
func (s *FileSystemStorage) Store(srcPath string, cp *checkpoint.Checkpoint) error {
	if err := s.FS.MkdirAll(s.objectsDir(), 0o755); err != nil {
		return fmt.Errorf("create objects dir: %w", err)
	}
	if err := s.FS.MkdirAll(s.checkpointsDir(), 0o755); err != nil {
		return fmt.Errorf("create checkpoints dir: %w", err)
	}

	total := 0
	for range cp.Walk() {
		total++
	}

	bar := progress.New(total, "Storing checkpoint")
	defer bar.Finish()

	for node, rel := range cp.Walk() {
		src := filepath.Join(srcPath, filepath.FromSlash(rel))
		switch node.(type) {
		case *checkpoint.FileNode:
			if err := s.storeFileBlob(src, node.Checksum()); err != nil {
				return err
			}
		case *checkpoint.SymlinkNode:
			if err := s.storeSymlinkBlob(src, node.Checksum()); err != nil {
				return err
			}
		}
		bar.Increment()
	}

	data, err := cp.Serialize()
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(s.FS, s.documentPath(cp.Meta()), data)
}

// storeFileBlob copies the source file's bytes into the object store through
// a memory-mapped reader, writing atomically via temp file and rename.
func (s *FileSystemStorage) storeFileBlob(srcPath, checksum string) error {
	dst := s.objectPath(checksum)
	if s.FS.Exists(dst) {
		return nil
	}

	reader, err := mmap.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source file %q: %w", srcPath, err)
	}
	defer reader.Close()

	tmp, tmpPath, err := s.FS.CreateTempFile(s.objectsDir(), "tmp-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer s.FS.Remove(tmpPath)

	size := int64(reader.Len())
	buf := make([]byte, copyChunkSize)
	for off := int64(0); off < size; {
		n := int64(len(buf))
		if size-off < n {
			n = size - off
		}
		if _, err := reader.ReadAt(buf[:n], off); err != nil {
			tmp.Close()
			return fmt.Errorf("read source file %q at offset %d: %w", srcPath, off, err)
		}
		if _, err := tmp.Write(buf[:n]); err != nil {
			tmp.Close()
			return fmt.Errorf("write object %q: %w", checksum, err)
		}
		off += n
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp object: %w", err)
	}

	if err := s.FS.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp object to %q: %w", dst, err)
	}
	return nil
}

// storeSymlinkBlob stores the link's raw target string as the blob content.
func (s *FileSystemStorage) storeSymlinkBlob(srcPath, checksum string) error {
	dst := s.objectPath(checksum)
	if s.FS.Exists(dst) {
		return nil
	}

	target, err := s.Tree.Readlink(srcPath)
	if err != nil {
		return fmt.Errorf("read link %q: %w", srcPath, err)
	}
	return util.WriteFileAtomic(s.FS, dst, []byte(target))
}
