package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/progress"
)

// RetrieveByChecksum materializes the checkpoint whose root checksum starts
// with prefix into dstPath.
func (s *FileSystemStorage) RetrieveByChecksum(dstPath, prefix string) error {
	m, err := s.FindByChecksum(prefix)
	if err != nil {
		return err
	}
	return s.retrieve(dstPath, m)
}

// RetrieveByName materializes the checkpoint stored under name into dstPath.
func (s *FileSystemStorage) RetrieveByName(dstPath, name string) error {
	m, err := s.FindByName(name)
	if err != nil {
		return err
	}
	return s.retrieve(dstPath, m)
}

func (s *FileSystemStorage) retrieve(dstPath string, m checkpoint.Meta) error {
	cp, err := s.Load(m)
	if err != nil {
		return err
	}

	total := 0
	for range cp.Walk() {
		total++
	}

	bar := progress.New(total, "Restoring checkpoint")
	defer bar.Finish()

	// Directory permissions go on after the contents, deepest first, so a
	// read-only directory does not block its own fill.
	type dirPerm struct {
		path string
		mode os.FileMode
	}
	var dirs []dirPerm

	for node, rel := range cp.Walk() {
		dst := filepath.Join(dstPath, filepath.FromSlash(rel))
		mode := checkpoint.ModeFromPermissions(node.Permissions())
		switch node.(type) {
		case *checkpoint.DirectoryNode:
			if err := s.Tree.MkdirAll(dst, 0o755); err != nil {
				return fmt.Errorf("create directory %q: %w", dst, err)
			}
			dirs = append(dirs, dirPerm{path: dst, mode: mode})
		case *checkpoint.FileNode:
			if err := s.restoreFile(dst, node.Checksum(), mode); err != nil {
				return err
			}
		case *checkpoint.SymlinkNode:
			if err := s.restoreSymlink(dst, node.Checksum()); err != nil {
				return err
			}
		}
		bar.Increment()
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := s.Tree.Chmod(dirs[i].path, dirs[i].mode); err != nil {
			return fmt.Errorf("chmod %q: %w", dirs[i].path, err)
		}
	}
	return nil
}

func (s *FileSystemStorage) restoreFile(dst, checksum string, mode os.FileMode) error {
	obj, err := s.FS.Open(s.objectPath(checksum))
	if err != nil {
		return fmt.Errorf("missing object %s for %q: %w", checksum, dst, err)
	}
	defer obj.Close()

	tmp, tmpPath, err := s.Tree.CreateTempFile(filepath.Dir(dst), "tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer s.Tree.Remove(tmpPath)

	if _, err := io.Copy(tmp, obj); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.Tree.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp file to %q: %w", dst, err)
	}
	return s.Tree.Chmod(dst, mode)
}

func (s *FileSystemStorage) restoreSymlink(dst, checksum string) error {
	target, err := s.FS.ReadFile(s.objectPath(checksum))
	if err != nil {
		return fmt.Errorf("missing object %s for %q: %w", checksum, dst, err)
	}

	if _, err := s.Tree.Lstat(dst); err == nil {
		if err := s.Tree.Remove(dst); err != nil {
			return fmt.Errorf("replace link %q: %w", dst, err)
		}
	}
	if err := s.Tree.Symlink(string(target), dst); err != nil {
		return fmt.Errorf("create link %q: %w", dst, err)
	}
	return nil
}
