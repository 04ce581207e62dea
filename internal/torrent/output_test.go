package torrent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/trtool/internal/testutil"
)

func TestWriteTorrentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.torrent")

	require.NoError(t, WriteTorrentFile(path, []byte("first"), false))
	require.NoError(t, testutil.VerifyFileSize(path, 5))
	assert.False(t, testutil.FileExists(path+".lock"))

	err := WriteTorrentFile(path, []byte("second"), false)
	require.ErrorIs(t, err, ErrOutputExists)
	got, _ := os.ReadFile(path)
	assert.Equal(t, "first", string(got))

	require.NoError(t, WriteTorrentFile(path, []byte("second"), true))
	got, _ = os.ReadFile(path)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteTorrentFile_Locked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.torrent")

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = other.Unlock() }()

	err = WriteTorrentFile(path, []byte("data"), true)
	require.ErrorIs(t, err, ErrIO)
	assert.False(t, testutil.FileExists(path))
}

func TestWriteTorrentFile_BadDir(t *testing.T) {
	err := WriteTorrentFile(filepath.Join(t.TempDir(), "no", "such", "dir", "x.torrent"), []byte("x"), false)
	assert.ErrorIs(t, err, ErrIO)
}
