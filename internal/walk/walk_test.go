package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLister serves a fixed tree; ReadDir returns children in insertion order.
type memLister struct {
	dirs  map[string][]Entry
	files map[string]int64
	fail  map[string]bool
}

func newMemLister(root string, files map[string]int64, order []string) *memLister {
	l := &memLister{
		dirs:  map[string][]Entry{root: nil},
		files: map[string]int64{},
		fail:  map[string]bool{},
	}
	for _, rel := range order {
		size := files[rel]
		parts := strings.Split(rel, "/")
		dir := root
		for i, part := range parts {
			p := filepath.Join(dir, part)
			if i == len(parts)-1 {
				l.files[p] = size
				l.dirs[dir] = append(l.dirs[dir], Entry{Name: part, Size: size})
				break
			}
			if _, ok := l.dirs[p]; !ok {
				l.dirs[p] = nil
				l.dirs[dir] = append(l.dirs[dir], Entry{Name: part, IsDir: true})
			}
			dir = p
		}
	}
	return l
}

func (l *memLister) Stat(p string) (Entry, error) {
	if _, ok := l.dirs[p]; ok {
		return Entry{Name: filepath.Base(p), IsDir: true}, nil
	}
	if size, ok := l.files[p]; ok {
		return Entry{Name: filepath.Base(p), Size: size}, nil
	}
	return Entry{}, os.ErrNotExist
}

func (l *memLister) ReadDir(p string) ([]Entry, error) {
	if l.fail[p] {
		return nil, os.ErrPermission
	}
	entries, ok := l.dirs[p]
	if !ok {
		return nil, os.ErrNotExist
	}
	return entries, nil
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath()
	}
	return out
}

var sampleSizes = map[string]int64{
	"z.txt":       1,
	"a/x.txt":     10,
	"a/b/y.txt":   5,
	"c/w.txt":     10,
	"a/b/c/v.txt": 3,
	"B.txt":       7,
}

// deliberately scrambled listing order
var sampleOrder = []string{"c/w.txt", "a/b/y.txt", "z.txt", "a/b/c/v.txt", "a/x.txt", "B.txt"}

func TestWalk_Modes(t *testing.T) {
	tests := []struct {
		mode Mode
		want []string
	}{
		{ModeDefault, []string{"c/w.txt", "a/b/y.txt", "a/b/c/v.txt", "a/x.txt", "z.txt", "B.txt"}},
		{ModeAlphabetical, []string{"B.txt", "a/b/c/v.txt", "a/b/y.txt", "a/x.txt", "c/w.txt", "z.txt"}},
		{ModeBreadthFirstAlphabetical, []string{"B.txt", "z.txt", "a/x.txt", "a/b/y.txt", "a/b/c/v.txt", "c/w.txt"}},
		{ModeBreadthFirstLevel, []string{"B.txt", "z.txt", "a/x.txt", "c/w.txt", "a/b/y.txt", "a/b/c/v.txt"}},
		{ModeFileSize, []string{"z.txt", "a/b/c/v.txt", "a/b/y.txt", "B.txt", "a/x.txt", "c/w.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			l := newMemLister("/root", sampleSizes, sampleOrder)
			files, err := Walk(context.Background(), l, "/root", tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relPaths(files))
		})
	}
}

func TestWalk_LevelExample(t *testing.T) {
	sizes := map[string]int64{"a/x.txt": 10, "a/b/y.txt": 5, "z.txt": 1}
	l := newMemLister("/t", sizes, []string{"a/b/y.txt", "a/x.txt", "z.txt"})
	files, err := Walk(context.Background(), l, "/t", ModeBreadthFirstLevel)
	require.NoError(t, err)
	assert.Equal(t, []string{"z.txt", "a/x.txt", "a/b/y.txt"}, relPaths(files))
	assert.Equal(t, []int64{1, 10, 5}, []int64{files[0].Size, files[1].Size, files[2].Size})
}

func TestWalk_Deterministic(t *testing.T) {
	orders := [][]string{
		sampleOrder,
		{"B.txt", "a/x.txt", "a/b/c/v.txt", "z.txt", "a/b/y.txt", "c/w.txt"},
	}
	for mode := ModeAlphabetical; mode <= ModeFileSize; mode++ {
		var first []string
		for _, ord := range orders {
			l := newMemLister("/r", sampleSizes, ord)
			files, err := Walk(context.Background(), l, "/r", mode)
			require.NoError(t, err)
			if first == nil {
				first = relPaths(files)
				continue
			}
			assert.Equal(t, first, relPaths(files), "mode %s", mode)
		}
	}
}

func TestWalk_SingleFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "one.bin")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	for mode := ModeDefault; mode <= ModeFileSize; mode++ {
		files, err := Walk(context.Background(), OSLister{}, p, mode)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Empty(t, files[0].Path)
		assert.Equal(t, int64(5), files[0].Size)
	}
}

func TestWalk_OSTree(t *testing.T) {
	dir := t.TempDir()
	for rel, size := range sampleSizes {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

	files, err := Walk(context.Background(), OSLister{}, dir, ModeAlphabetical)
	require.NoError(t, err)
	assert.Equal(t, []string{"B.txt", "a/b/c/v.txt", "a/b/y.txt", "a/x.txt", "c/w.txt", "z.txt"}, relPaths(files))

	def, err := Walk(context.Background(), OSLister{}, dir, ModeDefault)
	require.NoError(t, err)
	assert.ElementsMatch(t, relPaths(files), relPaths(def))
}

func TestWalk_Errors(t *testing.T) {
	_, err := Walk(context.Background(), OSLister{}, filepath.Join(t.TempDir(), "missing"), ModeAlphabetical)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWalk))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	l := newMemLister("/r", sampleSizes, sampleOrder)
	l.fail[filepath.Join("/r", "a", "b")] = true
	_, err = Walk(context.Background(), l, "/r", ModeAlphabetical)
	var we *WalkError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, filepath.Join("/r", "a", "b"), we.Path)

	_, err = Walk(context.Background(), l, "/r", Mode(9))
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestWalk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newMemLister("/r", sampleSizes, sampleOrder)
	_, err := Walk(ctx, l, "/r", ModeAlphabetical)
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestParseMode(t *testing.T) {
	for n := 0; n <= 4; n++ {
		m, err := ParseMode(n)
		require.NoError(t, err)
		assert.Equal(t, Mode(n), m)
	}
	_, err := ParseMode(5)
	assert.True(t, errors.Is(err, ErrInvalidMode))
	_, err = ParseMode(-1)
	assert.Error(t, err)
}
