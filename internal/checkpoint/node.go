package checkpoint

import (
	"fmt"
	"os"
	"sort"

	"github.com/zeebo/xxh3"
)

// Node type discriminators as they appear in serialized documents.
const (
	TypeDirectory = "directory"
	TypeFile      = "file"
	TypeSymlink   = "symlink"
)

// Node is one entry in a checkpoint tree. The variant set is closed:
// *DirectoryNode, *FileNode and *SymlinkNode are the only implementations.
// Trees are immutable once built or decoded.
type Node interface {
	// Name is the entry's own path segment; the root node's name is "".
	Name() string
	// Checksum is the fixed-length lowercase hex digest of the node's
	// content. Permissions never enter the digest.
	Checksum() string
	// Permissions holds the POSIX mode bits: rwx for owner, group and
	// other, plus setuid, setgid and sticky.
	Permissions() uint32

	node()
}

// FileNode captures a regular file. Its checksum covers the file bytes.
type FileNode struct {
	name        string
	checksum    string
	permissions uint32
}

func NewFileNode(name, checksum string, permissions uint32) *FileNode {
	return &FileNode{name: name, checksum: checksum, permissions: permissions}
}

func (n *FileNode) Name() string        { return n.name }
func (n *FileNode) Checksum() string    { return n.checksum }
func (n *FileNode) Permissions() uint32 { return n.permissions }
func (n *FileNode) node()               {}

// SymlinkNode captures a symbolic link. Its checksum covers the raw,
// unresolved target string, never the target's content.
type SymlinkNode struct {
	name        string
	checksum    string
	permissions uint32
}

func NewSymlinkNode(name, checksum string, permissions uint32) *SymlinkNode {
	return &SymlinkNode{name: name, checksum: checksum, permissions: permissions}
}

func (n *SymlinkNode) Name() string        { return n.name }
func (n *SymlinkNode) Checksum() string    { return n.checksum }
func (n *SymlinkNode) Permissions() uint32 { return n.permissions }
func (n *SymlinkNode) node()               {}

// DirectoryNode captures a directory and owns its children.
type DirectoryNode struct {
	name        string
	checksum    string
	permissions uint32
	children    childList
}

// NewDirectoryNode builds a directory over the given children and computes
// its checksum from them. A repeated child name replaces the earlier node
// but keeps its position.
func NewDirectoryNode(name string, permissions uint32, children ...Node) *DirectoryNode {
	n := &DirectoryNode{name: name, permissions: permissions}
	for _, c := range children {
		n.children.put(c)
	}
	n.checksum = directoryChecksum(n.children.ordered())
	return n
}

func (n *DirectoryNode) Name() string        { return n.name }
func (n *DirectoryNode) Checksum() string    { return n.checksum }
func (n *DirectoryNode) Permissions() uint32 { return n.permissions }
func (n *DirectoryNode) node()               {}

// Children returns the child nodes in insertion order.
func (n *DirectoryNode) Children() []Node { return n.children.ordered() }

// Child looks up a child node by name.
func (n *DirectoryNode) Child(name string) (Node, bool) { return n.children.get(name) }

// childList keeps child nodes unique by name while preserving insertion
// order. Replacing an existing name keeps the original position.
type childList struct {
	nodes  []Node
	byName map[string]int
}

func (c *childList) put(n Node) {
	if c.byName == nil {
		c.byName = make(map[string]int)
	}
	if i, ok := c.byName[n.Name()]; ok {
		c.nodes[i] = n
		return
	}
	c.byName[n.Name()] = len(c.nodes)
	c.nodes = append(c.nodes, n)
}

func (c *childList) get(name string) (Node, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.nodes[i], true
}

func (c *childList) len() int { return len(c.nodes) }

func (c *childList) ordered() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Checksum protocol

func hexDigest(h *xxh3.Hasher) string {
	return fmt.Sprintf("%016x", h.Sum64())
}

// ChecksumBytes digests a byte slice the way file content is digested.
func ChecksumBytes(data []byte) string {
	h := xxh3.New()
	h.Write(data)
	return hexDigest(h)
}

// ChecksumString digests a string; symlink targets are hashed this way.
func ChecksumString(s string) string {
	h := xxh3.New()
	h.WriteString(s)
	return hexDigest(h)
}

// directoryChecksum folds the children's checksum strings in lexicographic
// order of child name into one digest. The names order the fold but are not
// themselves hashed, so the digest ignores renames that keep content
// identical. Enumeration order never matters: the sort happens here, right
// before hashing.
func directoryChecksum(children []Node) string {
	sorted := make([]Node, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	h := xxh3.New()
	for _, c := range sorted {
		h.WriteString(c.Checksum())
	}
	return hexDigest(h)
}

// Permission bits

// PermissionsFromMode packs an os.FileMode into the stored 12-bit POSIX
// form: setuid 0o4000, setgid 0o2000, sticky 0o1000, rwx bits below.
func PermissionsFromMode(mode os.FileMode) uint32 {
	p := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		p |= 0o4000
	}
	if mode&os.ModeSetgid != 0 {
		p |= 0o2000
	}
	if mode&os.ModeSticky != 0 {
		p |= 0o1000
	}
	return p
}

// ModeFromPermissions is the inverse of PermissionsFromMode.
func ModeFromPermissions(p uint32) os.FileMode {
	mode := os.FileMode(p & 0o777)
	if p&0o4000 != 0 {
		mode |= os.ModeSetuid
	}
	if p&0o2000 != 0 {
		mode |= os.ModeSetgid
	}
	if p&0o1000 != 0 {
		mode |= os.ModeSticky
	}
	return mode
}
