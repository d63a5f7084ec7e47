package storage

import (
	"fmt"

	"github.com/grufelous/bakker/internal/checkpoint"
	"github.com/grufelous/bakker/internal/progress"
	"github.com/grufelous/bakker/internal/util"
)

// ObjectStatus reports the state of one stored blob.
type ObjectStatus int

const (
	ObjectOK ObjectStatus = iota
	ObjectMissing
	ObjectDamaged
)

// ObjectCheck is the verification result for one referenced blob.
type ObjectCheck struct {
	Checksum    string
	Status      ObjectStatus
	Checkpoints []string
}

// Verify re-hashes every blob referenced by any stored checkpoint and
// reports, per blob, whether it is intact, missing, or damaged.
func (s *FileSystemStorage) Verify() ([]ObjectCheck, error) {
	metas, err := s.Metas()
	if err != nil {
		return nil, err
	}

	// checksum -> identifiers of the checkpoints referencing it
	refs := map[string]map[string]struct{}{}
	for _, m := range metas {
		cp, err := s.Load(m)
		if err != nil {
			return nil, fmt.Errorf("load checkpoint %q: %w", m.Encode(), err)
		}
		id := m.Encode()
		for node := range cp.Walk() {
			switch node.(type) {
			case *checkpoint.FileNode, *checkpoint.SymlinkNode:
				if refs[node.Checksum()] == nil {
					refs[node.Checksum()] = map[string]struct{}{}
				}
				refs[node.Checksum()][id] = struct{}{}
			}
		}
	}

	bar := progress.New(len(refs), "Checking objects")
	defer bar.Finish()

	checks := make([]ObjectCheck, 0, len(refs))
	for _, checksum := range util.SortedKeys(refs) {
		checks = append(checks, ObjectCheck{
			Checksum:    checksum,
			Status:      s.verifyObject(checksum),
			Checkpoints: util.SortedKeys(refs[checksum]),
		})
		bar.Increment()
	}
	return checks, nil
}

func (s *FileSystemStorage) verifyObject(checksum string) ObjectStatus {
	data, err := s.FS.ReadFile(s.objectPath(checksum))
	if err != nil {
		if s.FS.IsNotExist(err) {
			return ObjectMissing
		}
		return ObjectDamaged
	}
	if checkpoint.ChecksumBytes(data) != checksum {
		return ObjectDamaged
	}
	return ObjectOK
}
