package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/fs"
)

const (
	checkpointsDirName = "checkpoints"
	objectsDirName     = "objects"
	documentSuffix     = ".json"
)

// ErrNotFound reports that no stored checkpoint matches an identifier.
var ErrNotFound = errors.New("checkpoint not found")

// NoUniqueMatchError reports an identifier that matches several checkpoints.
type NoUniqueMatchError struct {
	Identifier string
	Count      int
}

func (e *NoUniqueMatchError) Error() string {
	return fmt.Sprintf("identifier %q matches %d checkpoints", e.Identifier, e.Count)
}

// FileSystemStorage persists checkpoint documents and the content blobs they
// reference under one root directory:
//
//	<root>/checkpoints/<meta>.json
//	<root>/objects/<checksum>
//
// Storage-side reads and writes go through FS, which may compress; live
// working trees are reached through Tree, which never does.
type FileSystemStorage struct {
	Root string
	FS   fs.FS
	Tree fs.FS
	Log  zerolog.Logger
}

// NewFileSystemStorage returns a storage rooted at root whose storage-side
// operations run on fsys.
func NewFileSystemStorage(fsys fs.FS, root string) *FileSystemStorage {
	return &FileSystemStorage{Root: root, FS: fsys, Tree: fs.NewOSFS(), Log: zerolog.Nop()}
}

func (s *FileSystemStorage) checkpointsDir() string {
	return filepath.Join(s.Root, checkpointsDirName)
}

func (s *FileSystemStorage) objectsDir() string {
	return filepath.Join(s.Root, objectsDirName)
}

func (s *FileSystemStorage) objectPath(checksum string) string {
	return filepath.Join(s.objectsDir(), checksum)
}

func (s *FileSystemStorage) documentPath(m checkpoint.Meta) string {
	return filepath.Join(s.checkpointsDir(), m.Encode()+documentSuffix)
}

// Metas lists every stored checkpoint, oldest first. Entries whose names do
// not decode are skipped with a warning.
func (s *FileSystemStorage) Metas() ([]checkpoint.Meta, error) {
	entries, err := s.FS.ReadDir(s.checkpointsDir())
	if err != nil {
		if s.FS.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	metas := make([]checkpoint.Meta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentSuffix) {
			continue
		}
		m, err := checkpoint.DecodeMeta(strings.TrimSuffix(entry.Name(), documentSuffix))
		if err != nil {
			s.Log.Warn().Str("entry", entry.Name()).Msg("skipping undecodable checkpoint entry")
			continue
		}
		metas = append(metas, m)
	}

	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].Time.Equal(metas[j].Time) {
			return metas[i].Time.Before(metas[j].Time)
		}
		return metas[i].Checksum < metas[j].Checksum
	})
	return metas, nil
}

// FindByChecksum resolves a checksum prefix to exactly one stored meta.
func (s *FileSystemStorage) FindByChecksum(prefix string) (checkpoint.Meta, error) {
	metas, err := s.Metas()
	if err != nil {
		return checkpoint.Meta{}, err
	}

	var matches []checkpoint.Meta
	for _, m := range metas {
		if strings.HasPrefix(m.Checksum, prefix) {
			matches = append(matches, m)
		}
	}
	return oneMatch(matches, prefix)
}

// FindByName resolves a checkpoint name to exactly one stored meta.
func (s *FileSystemStorage) FindByName(name string) (checkpoint.Meta, error) {
	metas, err := s.Metas()
	if err != nil {
		return checkpoint.Meta{}, err
	}

	var matches []checkpoint.Meta
	for _, m := range metas {
		if m.Name == name {
			matches = append(matches, m)
		}
	}
	return oneMatch(matches, name)
}

func oneMatch(matches []checkpoint.Meta, identifier string) (checkpoint.Meta, error) {
	switch len(matches) {
	case 0:
		return checkpoint.Meta{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return checkpoint.Meta{}, &NoUniqueMatchError{Identifier: identifier, Count: len(matches)}
	}
}

// Load reads one stored checkpoint document back.
func (s *FileSystemStorage) Load(m checkpoint.Meta) (*checkpoint.Checkpoint, error) {
	data, err := s.FS.ReadFile(s.documentPath(m))
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %q: %w", m.Encode(), err)
	}
	return checkpoint.Deserialize(data)
}
