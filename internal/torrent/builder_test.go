package torrent

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/trtool/internal/testutil"
	"github.com/surge-downloader/trtool/internal/walk"
)

func TestValidatePieceLength(t *testing.T) {
	valid := []int64{1 << 14, 1 << 18, 1 << 27}
	for _, n := range valid {
		assert.NoError(t, ValidatePieceLength(n), "n=%d", n)
	}

	invalid := []int64{0, -1, 1 << 13, 1 << 28, 300000, (1 << 14) + 1}
	for _, n := range invalid {
		err := ValidatePieceLength(n)
		require.ErrorIs(t, err, ErrUnsupportedPieceSize, "n=%d", n)
		var pe *PieceSizeError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, n, pe.Got)
		assert.Equal(t, int64(1<<14), pe.Min)
		assert.Equal(t, int64(1<<27), pe.Max)
	}
}

func TestPieceLengthFromExponent(t *testing.T) {
	n, err := PieceLengthFromExponent(18)
	require.NoError(t, err)
	assert.Equal(t, int64(262144), n)

	for _, exp := range []int{-1, 13, 28, 64} {
		_, err := PieceLengthFromExponent(exp)
		assert.ErrorIs(t, err, ErrUnsupportedPieceSize, "exp=%d", exp)
	}
}

func TestBuild_BadPieceLengthDoesNoIO(t *testing.T) {
	o := newMemOpener(map[string][]byte{"a": []byte("data")})
	_, err := Build(context.Background(), "t", []FileEntry{{Path: []string{"a"}, Length: 4}}, o, BuildOptions{PieceLength: 1000})
	require.ErrorIs(t, err, ErrUnsupportedPieceSize)
	assert.Equal(t, int32(0), o.opens.Load())
	assert.Equal(t, int32(0), o.stats.Load())

	_, err = BuildFromPath(context.Background(), nil, "/definitely/not/here", walk.ModeAlphabetical, o, BuildOptions{PieceLength: 3})
	require.ErrorIs(t, err, ErrUnsupportedPieceSize)
	assert.NotErrorIs(t, err, ErrWalk)
}

func TestBuild_MultiFileMatchesReference(t *testing.T) {
	a := testutil.PatternBytes(20000, 1)
	b := testutil.PatternBytes(5000, 2)
	c := testutil.PatternBytes(30000, 3)
	o := newMemOpener(map[string][]byte{"a.bin": a, "sub/b.bin": b, "c.bin": c})
	files := []FileEntry{
		{Path: []string{"a.bin"}, Length: 20000},
		{Path: []string{"sub", "b.bin"}, Length: 5000},
		{Path: []string{"c.bin"}, Length: 30000},
	}

	built, err := Build(context.Background(), "payload", files, o, BuildOptions{
		PieceLength:    1 << 14,
		AnnounceGroups: [][]string{{"http://one/announce"}, {"", "udp://two:80"}, {""}},
		Comment:        "note",
		CreatedBy:      "trtool test",
		Encoding:       "UTF-8",
		Private:        true,
		Workers:        4,
	})
	require.NoError(t, err)

	meta := built.Meta
	assert.Equal(t, referencePieces(1<<14, a, b, c), meta.Info.Pieces)
	assert.Equal(t, files, meta.Info.Files)
	assert.Equal(t, "payload", meta.Info.Name)
	assert.True(t, meta.Info.Private)
	assert.Equal(t, "http://one/announce", meta.Announce)
	assert.Equal(t, [][]string{{"http://one/announce"}, {"udp://two:80"}}, meta.AnnounceList)
	assert.Equal(t, "note", meta.Comment)
	assert.Equal(t, "trtool test", meta.CreatedBy)
	assert.Equal(t, "UTF-8", meta.Encoding)
	assert.Nil(t, meta.CreationDate)

	// Cross-check with an independent implementation.
	mi, err := metainfo.Load(bytes.NewReader(built.Bytes))
	require.NoError(t, err)
	assert.Equal(t, [20]byte(mi.HashInfoBytes()), meta.InfoHash)
	info, err := mi.UnmarshalInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(55000), info.TotalLength())
	assert.Equal(t, 4, info.NumPieces())
	assert.Equal(t, "payload", info.Name)
	assert.Equal(t, mi.Announce, meta.Announce)
}

func TestBuild_SingleFile(t *testing.T) {
	data := testutil.PatternBytes(40000, 9)
	o := newMemOpener(map[string][]byte{"": data})
	created := time.Unix(1700000000, 0)

	built, err := Build(context.Background(), "movie.bin", []FileEntry{{Length: int64(len(data))}}, o, BuildOptions{
		PieceLength:  1 << 14,
		CreationDate: &created,
	})
	require.NoError(t, err)

	meta := built.Meta
	assert.True(t, meta.Info.IsSingleFile())
	assert.Equal(t, "movie.bin", meta.Info.DisplayPath(0))
	assert.Equal(t, referencePieces(1<<14, data), meta.Info.Pieces)
	require.NotNil(t, meta.CreationDate)
	assert.Equal(t, created.Unix(), meta.CreationDate.Unix())
	assert.Empty(t, meta.Announce)
	assert.Nil(t, meta.AnnounceList)

	mi, err := metainfo.Load(bytes.NewReader(built.Bytes))
	require.NoError(t, err)
	info, err := mi.UnmarshalInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(40000), info.Length)
	assert.Empty(t, info.Files)
}

func TestBuild_WorkerCountIndependent(t *testing.T) {
	files := map[string][]byte{}
	var entries []FileEntry
	for i, size := range []int{1, 16384, 70000, 0, 12345, 99999} {
		name := string(rune('a'+i)) + ".bin"
		files[name] = testutil.PatternBytes(size, int64(i))
		entries = append(entries, FileEntry{Path: []string{name}, Length: int64(size)})
	}

	var outputs [][]byte
	for _, workers := range []int{1, 8} {
		built, err := Build(context.Background(), "w", entries, newMemOpener(files), BuildOptions{
			PieceLength: 1 << 14,
			Workers:     workers,
		})
		require.NoError(t, err)
		outputs = append(outputs, built.Bytes)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestBuild_Progress(t *testing.T) {
	data := testutil.PatternBytes(5*(1<<14)+1, 4)
	var seen [6]atomic.Int32
	_, err := Build(context.Background(), "p", []FileEntry{{Length: int64(len(data))}}, newMemOpener(map[string][]byte{"": data}), BuildOptions{
		PieceLength: 1 << 14,
		Workers:     3,
		Progress: func(index, total int) {
			assert.Equal(t, 6, total)
			if assert.True(t, index >= 0 && index < len(seen), "index %d", index) {
				seen[index].Add(1)
			}
		},
	})
	require.NoError(t, err)
	for i := range seen {
		assert.Equal(t, int32(1), seen[i].Load(), "piece %d", i)
	}
}

func TestBuild_ShortFileFails(t *testing.T) {
	o := newMemOpener(map[string][]byte{"a": []byte("abc"), "b": []byte("short")})
	files := []FileEntry{
		{Path: []string{"a"}, Length: 3},
		{Path: []string{"b"}, Length: 100},
	}
	built, err := Build(context.Background(), "x", files, o, BuildOptions{PieceLength: 1 << 14})
	require.ErrorIs(t, err, ErrIO)
	assert.Nil(t, built)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "b", ioErr.Path)
}

func TestBuild_MissingFileFails(t *testing.T) {
	_, err := Build(context.Background(), "x", []FileEntry{{Path: []string{"gone"}, Length: 10}}, failingOpener{}, BuildOptions{PieceLength: 1 << 14})
	assert.ErrorIs(t, err, ErrIO)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := testutil.PatternBytes(1<<16, 5)
	built, err := Build(ctx, "c", []FileEntry{{Length: int64(len(data))}}, newMemOpener(map[string][]byte{"": data}), BuildOptions{PieceLength: 1 << 14})
	require.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, built)
}

func TestBuild_EmptyInputs(t *testing.T) {
	built, err := Build(context.Background(), "empty", nil, failingOpener{}, BuildOptions{PieceLength: 1 << 14})
	require.NoError(t, err)
	assert.Equal(t, 0, built.Meta.Info.NumPieces())
	assert.Empty(t, built.Meta.Info.Files)
	assert.False(t, built.Meta.Info.IsSingleFile())

	_, err = Build(context.Background(), "", nil, failingOpener{}, BuildOptions{PieceLength: 1 << 14})
	assert.ErrorIs(t, err, ErrMalformedTorrent)

	_, err = Build(context.Background(), "x", []FileEntry{{Length: 1}, {Length: 2}}, failingOpener{}, BuildOptions{PieceLength: 1 << 14})
	assert.ErrorIs(t, err, ErrMalformedTorrent)
}

func TestBuildFromPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "content")
	a := testutil.PatternBytes(500, 11)
	b := testutil.PatternBytes(1000, 12)
	c := testutil.PatternBytes(17000, 13)
	require.NoError(t, testutil.WriteTree(dir, map[string][]byte{
		"z.bin":     a,
		"a/b.bin":   b,
		"a/c/d.bin": c,
	}))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "emptydir"), 0o755))

	built, err := BuildFromPath(context.Background(), walk.OSLister{}, dir, walk.ModeAlphabetical, nil, BuildOptions{PieceLength: 1 << 14})
	require.NoError(t, err)
	meta := built.Meta
	assert.Equal(t, "content", meta.Info.Name)
	assert.Equal(t, []FileEntry{
		{Path: []string{"a", "b.bin"}, Length: 1000},
		{Path: []string{"a", "c", "d.bin"}, Length: 17000},
		{Path: []string{"z.bin"}, Length: 500},
	}, meta.Info.Files)
	assert.Equal(t, referencePieces(1<<14, b, c, a), meta.Info.Pieces)

	bySize, err := BuildFromPath(context.Background(), nil, dir, walk.ModeFileSize, nil, BuildOptions{PieceLength: 1 << 14})
	require.NoError(t, err)
	assert.Equal(t, "z.bin", bySize.Meta.Info.DisplayPath(0))
	assert.Equal(t, "a/c/d.bin", bySize.Meta.Info.DisplayPath(2))
	assert.NotEqual(t, meta.InfoHash, bySize.Meta.InfoHash)

	single, err := BuildFromPath(context.Background(), nil, filepath.Join(dir, "z.bin"), walk.ModeDefault, nil, BuildOptions{PieceLength: 1 << 14})
	require.NoError(t, err)
	assert.True(t, single.Meta.Info.IsSingleFile())
	assert.Equal(t, "z.bin", single.Meta.Info.Name)
	assert.Equal(t, referencePieces(1<<14, a), single.Meta.Info.Pieces)

	_, err = BuildFromPath(context.Background(), nil, filepath.Join(dir, "nope"), walk.ModeDefault, nil, BuildOptions{PieceLength: 1 << 14})
	assert.True(t, errors.Is(err, ErrWalk))
}
