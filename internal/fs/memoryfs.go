package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MemoryFS is a pure in-memory filesystem for tests or lightweight storage.
//
// Unlike the OS, ReadDir returns entries in creation order, not sorted order.
// Tests rely on that to drive directory enumeration order explicitly.
type MemoryFS struct {
	entries map[string]*memEntry
	order   map[string][]string // dir path -> child names in creation order
	tmpSeq  int
}

type memEntry struct {
	mode   os.FileMode // full mode including type bits
	data   []byte
	target string // symlink target when mode carries ModeSymlink
}

func NewMemoryFS() *MemoryFS {
	f := &MemoryFS{
		entries: make(map[string]*memEntry),
		order:   make(map[string][]string),
	}
	f.entries["."] = &memEntry{mode: os.ModeDir | 0o755}
	f.entries["/"] = &memEntry{mode: os.ModeDir | 0o755}
	return f
}

// normalize paths
func clean(p string) string {
	if p == "" {
		return "."
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func (f *MemoryFS) ensureDirExists(p string) error {
	p = clean(p)
	e, ok := f.entries[p]
	if !ok || !e.mode.IsDir() {
		return iofs.ErrNotExist
	}
	return nil
}

func (f *MemoryFS) addChild(p string) {
	dir, name := path.Dir(p), path.Base(p)
	for _, n := range f.order[dir] {
		if n == name {
			return
		}
	}
	f.order[dir] = append(f.order[dir], name)
}

func (f *MemoryFS) removeChild(p string) {
	dir, name := path.Dir(p), path.Base(p)
	kids := f.order[dir]
	for i, n := range kids {
		if n == name {
			f.order[dir] = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

// resolve follows symlinks until a non-link entry is reached.
func (f *MemoryFS) resolve(p string) (string, *memEntry, error) {
	p = clean(p)
	for range 40 {
		e, ok := f.entries[p]
		if !ok {
			return "", nil, iofs.ErrNotExist
		}
		if e.mode&os.ModeSymlink == 0 {
			return p, e, nil
		}
		t := e.target
		if !path.IsAbs(t) {
			t = path.Join(path.Dir(p), t)
		}
		p = clean(t)
	}
	return "", nil, errors.New("too many levels of symbolic links")
}

// FS Interface Implementation

func (f *MemoryFS) Open(p string) (io.ReadSeekCloser, error) {
	_, e, err := f.resolve(p)
	if err != nil {
		return nil, err
	}
	if !e.mode.IsRegular() {
		return nil, fmt.Errorf("open %q: not a regular file", p)
	}
	return &memReadSeekCloser{Reader: bytes.NewReader(e.data)}, nil
}

type memReadSeekCloser struct {
	*bytes.Reader
}

func (m *memReadSeekCloser) Close() error { return nil }

func (f *MemoryFS) ReadFile(p string) ([]byte, error) {
	_, e, err := f.resolve(p)
	if err != nil {
		return nil, err
	}
	if !e.mode.IsRegular() {
		return nil, fmt.Errorf("read %q: not a regular file", p)
	}
	return append([]byte(nil), e.data...), nil
}

func (f *MemoryFS) WriteFile(p string, data []byte, perm os.FileMode) error {
	p = clean(p)
	if e, ok := f.entries[p]; ok {
		if e.mode&os.ModeSymlink != 0 {
			_, re, err := f.resolve(p)
			if err != nil {
				return err
			}
			re.data = append([]byte(nil), data...)
			return nil
		}
		if e.mode.IsDir() {
			return fmt.Errorf("write %q: is a directory", p)
		}
		e.data = append([]byte(nil), data...)
		return nil
	}
	dir := path.Dir(p)
	if err := f.ensureDirExists(dir); err != nil {
		return fmt.Errorf("write: dir %q does not exist", dir)
	}
	f.entries[p] = &memEntry{mode: perm & modeBits, data: append([]byte(nil), data...)}
	f.addChild(p)
	return nil
}

// modeBits are the permission bits MemoryFS tracks (rwx plus setuid/setgid/sticky).
const modeBits = os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky

func (f *MemoryFS) MkdirAll(p string, perm os.FileMode) error {
	p = clean(p)
	if p == "." || p == "/" {
		return nil
	}
	cur := "."
	if strings.HasPrefix(p, "/") {
		cur = "/"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." {
			continue
		}
		next := path.Join(cur, seg)
		if e, ok := f.entries[next]; ok {
			if !e.mode.IsDir() {
				return fmt.Errorf("mkdir %q: not a directory", next)
			}
		} else {
			f.entries[next] = &memEntry{mode: os.ModeDir | (perm & modeBits)}
			f.addChild(next)
		}
		cur = next
	}
	return nil
}

// Symlink creates a symbolic link carrying the raw target string. The target
// does not need to exist.
func (f *MemoryFS) Symlink(target, link string) error {
	link = clean(link)
	if _, ok := f.entries[link]; ok {
		return iofs.ErrExist
	}
	if err := f.ensureDirExists(path.Dir(link)); err != nil {
		return fmt.Errorf("symlink: dir %q does not exist", path.Dir(link))
	}
	f.entries[link] = &memEntry{mode: os.ModeSymlink | 0o777, target: target}
	f.addChild(link)
	return nil
}

// Mkfifo creates a named pipe entry. Useful for exercising unsupported-kind
// handling without touching the real filesystem.
func (f *MemoryFS) Mkfifo(p string, perm os.FileMode) error {
	p = clean(p)
	if _, ok := f.entries[p]; ok {
		return iofs.ErrExist
	}
	if err := f.ensureDirExists(path.Dir(p)); err != nil {
		return fmt.Errorf("mkfifo: dir %q does not exist", path.Dir(p))
	}
	f.entries[p] = &memEntry{mode: os.ModeNamedPipe | (perm & modeBits)}
	f.addChild(p)
	return nil
}

func (f *MemoryFS) Readlink(p string) (string, error) {
	e, ok := f.entries[clean(p)]
	if !ok {
		return "", iofs.ErrNotExist
	}
	if e.mode&os.ModeSymlink == 0 {
		return "", fmt.Errorf("readlink %q: not a symlink", p)
	}
	return e.target, nil
}

func (f *MemoryFS) Chmod(p string, mode os.FileMode) error {
	_, e, err := f.resolve(p)
	if err != nil {
		return err
	}
	e.mode = e.mode&^modeBits | mode&modeBits
	return nil
}

func (f *MemoryFS) Remove(p string) error {
	p = clean(p)
	e, ok := f.entries[p]
	if !ok {
		return iofs.ErrNotExist
	}
	if e.mode.IsDir() && len(f.order[p]) > 0 {
		return fmt.Errorf("remove %q: directory not empty", p)
	}
	delete(f.entries, p)
	delete(f.order, p)
	f.removeChild(p)
	return nil
}

func (f *MemoryFS) Rename(oldp, newp string) error {
	oldp, newp = clean(oldp), clean(newp)
	e, ok := f.entries[oldp]
	if !ok {
		return iofs.ErrNotExist
	}
	if f.ensureDirExists(path.Dir(newp)) != nil {
		return iofs.ErrNotExist
	}
	delete(f.entries, oldp)
	f.removeChild(oldp)
	if _, exists := f.entries[newp]; !exists {
		f.addChild(newp)
	}
	f.entries[newp] = e
	return nil
}

func (f *MemoryFS) Stat(p string) (os.FileInfo, error) {
	rp, e, err := f.resolve(p)
	if err != nil {
		return nil, err
	}
	return &fakeInfo{name: path.Base(rp), size: int64(len(e.data)), mode: e.mode}, nil
}

func (f *MemoryFS) Lstat(p string) (os.FileInfo, error) {
	p = clean(p)
	e, ok := f.entries[p]
	if !ok {
		return nil, iofs.ErrNotExist
	}
	return &fakeInfo{name: path.Base(p), size: int64(len(e.data)), mode: e.mode}, nil
}

func (f *MemoryFS) ReadDir(p string) ([]os.DirEntry, error) {
	p = clean(p)
	if err := f.ensureDirExists(p); err != nil {
		return nil, err
	}

	var out []os.DirEntry
	for _, name := range f.order[p] {
		child := f.entries[path.Join(p, name)]
		if child == nil {
			continue
		}
		out = append(out, fakeDirEntry{name: name, mode: child.mode})
	}
	return out, nil
}

func (f *MemoryFS) CreateTempFile(dir, pattern string) (io.WriteCloser, string, error) {
	if err := f.ensureDirExists(clean(dir)); err != nil {
		return nil, "", err
	}

	f.tmpSeq++
	base := strings.ReplaceAll(pattern, "*", fmt.Sprintf("%06d", f.tmpSeq))
	tmpName := path.Join(clean(dir), base)
	buf := &bytes.Buffer{}

	wc := &memWriteCloser{
		buf: buf,
		onClose: func() {
			f.entries[tmpName] = &memEntry{mode: 0o600, data: buf.Bytes()}
			f.addChild(tmpName)
		},
	}
	return wc, tmpName, nil
}

type memWriteCloser struct {
	buf     *bytes.Buffer
	onClose func()
}

func (m *memWriteCloser) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memWriteCloser) Close() error {
	if m.onClose != nil {
		m.onClose()
	}
	return nil
}

func (f *MemoryFS) IsNotExist(err error) bool { return errors.Is(err, iofs.ErrNotExist) }

func (f *MemoryFS) IsDir(p string) bool {
	e, ok := f.entries[clean(p)]
	return ok && e.mode.IsDir()
}

func (f *MemoryFS) Exists(p string) bool {
	_, ok := f.entries[clean(p)]
	return ok
}

// Helpers

type fakeInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (f *fakeInfo) Name() string        { return f.name }
func (f *fakeInfo) Size() int64         { return f.size }
func (f *fakeInfo) Mode() iofs.FileMode { return f.mode }
func (f *fakeInfo) ModTime() time.Time  { return time.Time{} }
func (f *fakeInfo) IsDir() bool         { return f.mode.IsDir() }
func (f *fakeInfo) Sys() interface{}    { return nil }

type fakeDirEntry struct {
	name string
	mode os.FileMode
}

func (d fakeDirEntry) Name() string        { return d.name }
func (d fakeDirEntry) IsDir() bool         { return d.mode.IsDir() }
func (d fakeDirEntry) Type() iofs.FileMode { return d.mode.Type() }
func (d fakeDirEntry) Info() (os.FileInfo, error) {
	return &fakeInfo{name: d.name, mode: d.mode}, nil
}
