package checkpoint

import (
	"encoding/json"
	"fmt"
	"iter"
	"regexp"
	"time"

	"github.com/grufelous/bakker/internal/fs"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidationError reports a checkpoint name outside the allowed charset.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid checkpoint name %q: allowed characters are letters, digits, underscore, dot and hyphen", e.Name)
}

// Checkpoint is one immutable snapshot of a filesystem subtree: a node tree,
// a creation time and an optional name.
type Checkpoint struct {
	root Node
	time time.Time
	name string // "" when unnamed
}

// New wraps a built or decoded tree into a checkpoint. An empty name means
// unnamed; any other name must match [A-Za-z0-9_.-]+. Times are truncated
// to microsecond precision so document and identifier round-trips are
// exact.
func New(root Node, at time.Time, name string) (*Checkpoint, error) {
	if root == nil {
		return nil, fmt.Errorf("checkpoint needs a root node")
	}
	if name != "" && !namePattern.MatchString(name) {
		return nil, &ValidationError{Name: name}
	}
	return &Checkpoint{root: root, time: at.Truncate(time.Microsecond), name: name}, nil
}

// Build scans the subtree at path and wraps it into a checkpoint stamped
// with the current time.
func Build(fsys fs.FS, path, name string) (*Checkpoint, error) {
	return NewTreeBuilder(fsys).Checkpoint(path, name)
}

// Checkpoint builds a tree with the builder's settings and wraps it,
// stamped with the current time.
func (b *TreeBuilder) Checkpoint(path, name string) (*Checkpoint, error) {
	root, err := b.Build(path)
	if err != nil {
		return nil, err
	}
	return New(root, time.Now(), name)
}

func (c *Checkpoint) Root() Node      { return c.root }
func (c *Checkpoint) Time() time.Time { return c.time }

// Name returns the checkpoint name, or "" when unnamed.
func (c *Checkpoint) Name() string { return c.name }

// Meta derives the identifier triple for this checkpoint.
func (c *Checkpoint) Meta() Meta {
	return Meta{Checksum: c.root.Checksum(), Time: c.time, Name: c.name}
}

// checkpointDoc is the serialized document shape. Name is a pointer so an
// unnamed checkpoint serializes as null, never as "".
type checkpointDoc struct {
	Root nodeRepr `json:"root"`
	Time string   `json:"time"`
	Name *string  `json:"name"`
}

// Serialize renders the checkpoint as an indented JSON document.
func (c *Checkpoint) Serialize() ([]byte, error) {
	doc := checkpointDoc{Root: toRepr(c.root), Time: formatTime(c.time)}
	if c.name != "" {
		doc.Name = &c.name
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize is the inverse of Serialize. Times parse with or without a
// fractional-seconds part, so documents written by second-resolution
// producers still round-trip.
func Deserialize(data []byte) (*Checkpoint, error) {
	var doc checkpointDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodingError{Reason: fmt.Sprintf("invalid checkpoint document: %v", err)}
	}

	root, err := fromRepr(doc.Root)
	if err != nil {
		return nil, err
	}
	at, err := parseTime(doc.Time)
	if err != nil {
		return nil, &DecodingError{Reason: fmt.Sprintf("invalid checkpoint time %q", doc.Time)}
	}

	name := ""
	if doc.Name != nil {
		name = *doc.Name
	}
	return New(root, at, name)
}

// Walk yields (node, relative path) pairs depth first, starting with
// (root, ""). A directory's children are pushed in stored order, so its
// most recently inserted child is visited first. Every call starts a fresh
// walk; the sequence is not resumable.
func (c *Checkpoint) Walk() iter.Seq2[Node, string] {
	type item struct {
		node Node
		rel  string
	}
	return func(yield func(Node, string) bool) {
		stack := []item{{c.root, ""}}
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(it.node, it.rel) {
				return
			}
			dir, ok := it.node.(*DirectoryNode)
			if !ok {
				continue
			}
			for _, child := range dir.Children() {
				rel := child.Name()
				if it.rel != "" {
					rel = it.rel + "/" + child.Name()
				}
				stack = append(stack, item{child, rel})
			}
		}
	}
}
