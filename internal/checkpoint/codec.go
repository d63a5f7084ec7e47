package checkpoint

import (
	"encoding/json"
	"fmt"
)

// DecodingError reports a malformed checkpoint document or identifier.
type DecodingError struct {
	Reason string
}

func (e *DecodingError) Error() string {
	return "decode checkpoint: " + e.Reason
}

// nodeRepr is the JSON shape of one node. Children is a pointer so that
// directories always carry an array (possibly empty) while files and
// symlinks omit the field entirely.
type nodeRepr struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Checksum    string      `json:"checksum"`
	Permissions uint32      `json:"permissions"`
	Children    *[]nodeRepr `json:"children,omitempty"`
}

func toRepr(n Node) nodeRepr {
	r := nodeRepr{Name: n.Name(), Checksum: n.Checksum(), Permissions: n.Permissions()}
	switch v := n.(type) {
	case *DirectoryNode:
		r.Type = TypeDirectory
		kids := make([]nodeRepr, 0, v.children.len())
		for _, c := range v.children.ordered() {
			kids = append(kids, toRepr(c))
		}
		r.Children = &kids
	case *FileNode:
		r.Type = TypeFile
	case *SymlinkNode:
		r.Type = TypeSymlink
	}
	return r
}

// fromRepr rebuilds a node from its representation, dispatching on the type
// discriminator. Checksums are taken verbatim, never recomputed. Duplicate
// child names keep the first occurrence's position but the last occurrence's
// node, mirroring what keyed insertion has always done.
func fromRepr(r nodeRepr) (Node, error) {
	if r.Checksum == "" {
		return nil, &DecodingError{Reason: fmt.Sprintf("node %q has no checksum", r.Name)}
	}

	switch r.Type {
	case TypeDirectory:
		if r.Children == nil {
			return nil, &DecodingError{Reason: fmt.Sprintf("directory %q has no children array", r.Name)}
		}
		dir := &DirectoryNode{name: r.Name, checksum: r.Checksum, permissions: r.Permissions}
		for _, cr := range *r.Children {
			child, err := fromRepr(cr)
			if err != nil {
				return nil, err
			}
			dir.children.put(child)
		}
		return dir, nil
	case TypeFile:
		return &FileNode{name: r.Name, checksum: r.Checksum, permissions: r.Permissions}, nil
	case TypeSymlink:
		return &SymlinkNode{name: r.Name, checksum: r.Checksum, permissions: r.Permissions}, nil
	default:
		return nil, &DecodingError{Reason: fmt.Sprintf("unknown node type %q", r.Type)}
	}
}

// MarshalNode renders a node tree as an indented JSON representation.
func MarshalNode(n Node) ([]byte, error) {
	return json.MarshalIndent(toRepr(n), "", "  ")
}

// UnmarshalNode reconstructs a node tree from its JSON representation.
func UnmarshalNode(data []byte) (Node, error) {
	var r nodeRepr
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &DecodingError{Reason: fmt.Sprintf("invalid node document: %v", err)}
	}
	return fromRepr(r)
}
