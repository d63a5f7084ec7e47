package checkpoint

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryChecksum_OrderIndependence(t *testing.T) {
	a := NewFileNode("a", "1111111111111111", 0o644)
	b := NewFileNode("b", "2222222222222222", 0o644)
	c := NewFileNode("c", "3333333333333333", 0o644)

	first := NewDirectoryNode("", 0o755, a, b, c)
	second := NewDirectoryNode("", 0o755, c, a, b)

	// Insertion order differs but the checksum must not.
	assert.Equal(t, first.Checksum(), second.Checksum())

	// Stored order still reflects insertion.
	var names []string
	for _, child := range second.Children() {
		names = append(names, child.Name())
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestDirectoryChecksum_PermissionsNeverHashed(t *testing.T) {
	child := NewFileNode("f", "aaaaaaaaaaaaaaaa", 0o644)

	loose := NewDirectoryNode("", 0o777, child)
	tight := NewDirectoryNode("", 0o700, child)

	assert.Equal(t, loose.Checksum(), tight.Checksum())
	assert.NotEqual(t, loose.Permissions(), tight.Permissions())
}

func TestDirectoryChecksum_ChildNamesOrderButAreNotHashed(t *testing.T) {
	// Child names only induce the fold order. Two directories whose
	// children carry the same checksums in the same sorted positions hash
	// identically even under different names.
	one := NewDirectoryNode("", 0o755,
		NewFileNode("a", "1111111111111111", 0o644),
		NewFileNode("b", "2222222222222222", 0o644),
	)
	other := NewDirectoryNode("", 0o755,
		NewFileNode("x", "1111111111111111", 0o644),
		NewFileNode("y", "2222222222222222", 0o644),
	)

	assert.Equal(t, one.Checksum(), other.Checksum())
}

func TestDirectoryNode_DuplicateChildName(t *testing.T) {
	first := NewFileNode("f", "1111111111111111", 0o644)
	replacement := NewFileNode("f", "2222222222222222", 0o600)
	tail := NewFileNode("z", "3333333333333333", 0o644)

	dir := NewDirectoryNode("", 0o755, first, tail, replacement)

	// The later node wins but keeps the first occurrence's position.
	kids := dir.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, "f", kids[0].Name())
	assert.Equal(t, "2222222222222222", kids[0].Checksum())
	assert.Equal(t, "z", kids[1].Name())

	got, ok := dir.Child("f")
	require.True(t, ok)
	assert.Equal(t, replacement, got)

	_, ok = dir.Child("missing")
	assert.False(t, ok)
}

func TestEmptyDirectoriesShareOneChecksum(t *testing.T) {
	assert.Equal(t,
		NewDirectoryNode("", 0o755).Checksum(),
		NewDirectoryNode("other", 0o700).Checksum(),
	)
}

func TestChecksumHelpers_FixedWidthHex(t *testing.T) {
	for _, sum := range []string{
		ChecksumBytes(nil),
		ChecksumBytes([]byte("content")),
		ChecksumString(""),
		ChecksumString("../target"),
	} {
		assert.Regexp(t, `^[0-9a-f]{16}$`, sum)
	}

	// byte and string digests agree on the same content
	assert.Equal(t, ChecksumBytes([]byte("same")), ChecksumString("same"))
	assert.NotEqual(t, ChecksumString("one"), ChecksumString("two"))
}

func TestPermissions_ModeRoundTrip(t *testing.T) {
	cases := []struct {
		mode os.FileMode
		bits uint32
	}{
		{0o644, 0o644},
		{0o755, 0o755},
		{0o750 | os.ModeSetuid, 0o4750},
		{0o750 | os.ModeSetgid, 0o2750},
		{0o1777, 0o777}, // literal 0o1777 has no sticky flag bit in FileMode
		{0o777 | os.ModeSticky, 0o1777},
		{0o4755, 0o755}, // same for setuid
	}
	for _, tc := range cases {
		assert.Equal(t, tc.bits, PermissionsFromMode(tc.mode))
	}

	// full round-trip through the mode form
	for _, bits := range []uint32{0o644, 0o755, 0o4755, 0o2750, 0o1777, 0o7777} {
		assert.Equal(t, bits, PermissionsFromMode(ModeFromPermissions(bits)))
	}
}
