package checkpoint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/zeebo/xxh3"

	"github.com/grufelous/bakker/internal/fs"
)

// fileChunkSize is the read granularity when digesting file content.
const fileChunkSize = 64 * 1024

// TreeBuilder scans filesystem subtrees into node trees.
//
// Entries that are none of file, directory or symlink (pipes, sockets,
// devices, dangling links under a directory) are skipped with a warning on
// Log and left out of the tree. I/O failures while reading classified
// content abort the build.
type TreeBuilder struct {
	FS  fs.FS
	Log zerolog.Logger
	// Exclude holds gitignore-style patterns matched against
	// slash-separated paths relative to the build root.
	Exclude []string
}

func NewTreeBuilder(fsys fs.FS) *TreeBuilder {
	return &TreeBuilder{FS: fsys, Log: zerolog.Nop()}
}

// Build scans the subtree rooted at root. The returned node carries an
// empty name. Symlink classification wins over file and directory, so a
// link is recorded as a link even when its target is scannable.
func (b *TreeBuilder) Build(root string) (Node, error) {
	li, err := b.FS.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("lstat %q: %w", root, err)
	}

	switch {
	case li.Mode()&os.ModeSymlink != 0:
		return b.buildSymlink(root, "", li)
	case li.Mode().IsRegular():
		return b.buildFile(root, "", li)
	case li.IsDir():
		return b.buildDirectory(root, li)
	default:
		return nil, fmt.Errorf("unsupported entry kind %v at %q", li.Mode().Type(), root)
	}
}

// dirFrame is one in-progress directory on the build stack.
type dirFrame struct {
	path  string // filesystem path of the directory
	rel   string // path relative to the build root, "" for the root
	name  string // node name, "" for the root
	perms uint32
	queue []os.DirEntry
	next  int
	built []Node
}

// buildDirectory walks the subtree iteratively, children before parents, so
// tree depth is bounded by memory rather than the call stack.
func (b *TreeBuilder) buildDirectory(root string, rootInfo os.FileInfo) (Node, error) {
	var matcher *ignore.GitIgnore
	if len(b.Exclude) > 0 {
		matcher = ignore.CompileIgnoreLines(b.Exclude...)
	}

	open := func(dirPath, rel, name string, info os.FileInfo) (*dirFrame, error) {
		entries, err := b.FS.ReadDir(dirPath)
		if err != nil {
			return nil, fmt.Errorf("read dir %q: %w", dirPath, err)
		}
		return &dirFrame{
			path:  dirPath,
			rel:   rel,
			name:  name,
			perms: PermissionsFromMode(info.Mode()),
			queue: entries,
		}, nil
	}

	top, err := open(root, "", "", rootInfo)
	if err != nil {
		return nil, err
	}
	stack := []*dirFrame{top}

	for {
		f := stack[len(stack)-1]

		if f.next < len(f.queue) {
			entry := f.queue[f.next]
			f.next++

			childPath := filepath.Join(f.path, entry.Name())
			childRel := entry.Name()
			if f.rel != "" {
				childRel = f.rel + "/" + entry.Name()
			}

			if matcher != nil && matcher.MatchesPath(childRel) {
				b.Log.Debug().Str("path", childRel).Msg("excluded entry")
				continue
			}

			// The pre-check follows symlinks, so dangling links fail it
			// and are skipped just like pipes and devices.
			si, err := b.FS.Stat(childPath)
			if err != nil || !(si.Mode().IsRegular() || si.IsDir()) {
				b.Log.Warn().Str("path", childPath).Msg("skipping unsupported entry")
				continue
			}

			li, err := b.FS.Lstat(childPath)
			if err != nil {
				b.Log.Warn().Str("path", childPath).Err(err).Msg("skipping vanished entry")
				continue
			}

			switch {
			case li.Mode()&os.ModeSymlink != 0:
				child, err := b.buildSymlink(childPath, entry.Name(), li)
				if err != nil {
					return nil, err
				}
				f.built = append(f.built, child)
			case li.Mode().IsRegular():
				child, err := b.buildFile(childPath, entry.Name(), li)
				if err != nil {
					return nil, err
				}
				f.built = append(f.built, child)
			case li.IsDir():
				sub, err := open(childPath, childRel, entry.Name(), li)
				if err != nil {
					return nil, err
				}
				stack = append(stack, sub)
			default:
				// entry changed kind between the two stat calls
				b.Log.Warn().Str("path", childPath).Msg("skipping unsupported entry")
			}
			continue
		}

		// every child of f is built; seal the directory
		dir := &DirectoryNode{name: f.name, permissions: f.perms}
		for _, c := range f.built {
			dir.children.put(c)
		}
		dir.checksum = directoryChecksum(dir.children.ordered())

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return dir, nil
		}
		parent := stack[len(stack)-1]
		parent.built = append(parent.built, dir)
	}
}

func (b *TreeBuilder) buildFile(path, name string, info os.FileInfo) (*FileNode, error) {
	f, err := b.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	buf := make([]byte, fileChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
	}

	return &FileNode{
		name:        name,
		checksum:    hexDigest(h),
		permissions: PermissionsFromMode(info.Mode()),
	}, nil
}

func (b *TreeBuilder) buildSymlink(path, name string, info os.FileInfo) (*SymlinkNode, error) {
	target, err := b.FS.Readlink(path)
	if err != nil {
		return nil, fmt.Errorf("readlink %q: %w", path, err)
	}
	return &SymlinkNode{
		name:        name,
		checksum:    ChecksumString(target),
		permissions: PermissionsFromMode(info.Mode()),
	}, nil
}
