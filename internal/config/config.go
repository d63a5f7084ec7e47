package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grufelous/bakker/internal/fs"
	"github.com/grufelous/bakker/internal/util"
)

// Known configuration keys.
const (
	DefaultStorageKey         = "default.storage"
	StorageFileSystemPath     = "storage.file_system.path"
	StorageFileSystemCompress = "storage.file_system.compress"
)

// DefaultStorageChoices lists the backends a default storage may name.
var DefaultStorageChoices = []string{"fs"}

// Store is a dotted-key view over one JSON document. String values live at
// the leaves, sections are nested objects, and every Set or Unset writes the
// document back immediately.
type Store struct {
	fsys fs.FS
	path string
	data map[string]any
}

// Item is one dotted key and its value.
type Item struct {
	Key   string
	Value string
}

// Load reads the configuration document at path. A missing file yields an
// empty store.
func Load(fsys fs.FS, path string) (*Store, error) {
	s := &Store{fsys: fsys, path: path, data: map[string]any{}}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if fsys.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return s, nil
}

// Open loads the configuration from its default location.
func Open(fsys fs.FS) (*Store, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Load(fsys, path)
}

// Get returns the string value stored under a dotted key. Keys that resolve
// to a section rather than a value report false.
func (s *Store) Get(key string) (string, bool) {
	current := any(s.data)
	for _, part := range strings.Split(key, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		if current, ok = obj[part]; !ok {
			return "", false
		}
	}
	value, ok := current.(string)
	if !ok {
		return "", false
	}
	return value, true
}

// Has reports whether a value exists under the dotted key.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set stores value under a dotted key, creating intermediate sections on
// demand, and saves the document. A key whose path runs through an existing
// value is an error.
func (s *Store) Set(key, value string) error {
	parts := strings.Split(key, ".")
	current := s.data
	for i, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			child := map[string]any{}
			current[part] = child
			current = child
			continue
		}
		obj, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("config key %q: %q holds a value, not a section", key, strings.Join(parts[:i+1], "."))
		}
		current = obj
	}
	current[parts[len(parts)-1]] = value
	return s.save()
}

// Unset removes the entry under a dotted key, prunes any sections it leaves
// empty, and saves the document.
func (s *Store) Unset(key string) error {
	if !removeKey(s.data, strings.Split(key, ".")) {
		return fmt.Errorf("config key %q not set", key)
	}
	return s.save()
}

func removeKey(obj map[string]any, parts []string) bool {
	if len(parts) == 1 {
		if _, ok := obj[parts[0]]; !ok {
			return false
		}
		delete(obj, parts[0])
		return true
	}

	child, ok := obj[parts[0]].(map[string]any)
	if !ok {
		return false
	}
	if !removeKey(child, parts[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(obj, parts[0])
	}
	return true
}

// Items returns every dotted key and its value, sorted by key. Entries that
// are neither sections nor strings are ignored.
func (s *Store) Items() []Item {
	var items []Item
	collectItems(s.data, "", &items)
	return items
}

func collectItems(obj map[string]any, prefix string, out *[]Item) {
	for _, key := range util.SortedKeys(obj) {
		dotted := key
		if prefix != "" {
			dotted = prefix + "." + key
		}
		switch v := obj[key].(type) {
		case map[string]any:
			collectItems(v, dotted, out)
		case string:
			*out = append(*out, Item{Key: dotted, Value: v})
		}
	}
}

func (s *Store) save() error {
	if err := s.fsys.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return util.WriteJSON(s.fsys, s.path, s.data)
}
