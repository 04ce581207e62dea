package tui

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/surge-downloader/trtool/internal/torrent"
)

func TestNaturalLess(t *testing.T) {
	names := []string{"file10.txt", "File2.txt", "file1.txt", "alpha", "Beta", "file02.txt", "z"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	assert.Equal(t, []string{"alpha", "Beta", "file1.txt", "File2.txt", "file02.txt", "file10.txt", "z"}, names)
}

func TestNaturalLess_CaseTieBreaksByBytes(t *testing.T) {
	assert.True(t, NaturalLess("ABC", "abc"))
	assert.False(t, NaturalLess("abc", "ABC"))
	assert.False(t, NaturalLess("same", "same"))
}

func TestNaturalLess_LongDigitRuns(t *testing.T) {
	assert.True(t, NaturalLess("v99999999999999999999", "v100000000000000000000"))
	assert.True(t, NaturalLess("a", "a1"))
}

func TestTreeLines(t *testing.T) {
	files := []torrent.FileEntry{
		{Path: []string{"b10.txt"}, Length: 10},
		{Path: []string{"dir", "x.bin"}, Length: 1024},
		{Path: []string{"B2.txt"}, Length: 2},
		{Path: []string{"dir", "sub", "y"}, Length: 0},
	}

	want := []string{
		"├── B2.txt (2 [2 B])",
		"├── b10.txt (10 [10 B])",
		"└── dir",
		"    ├── sub",
		"    │   └── y (0 [0 B])",
		"    └── x.bin (1024 [1.0 KiB])",
	}
	assert.Equal(t, want, TreeLines(files))
}
