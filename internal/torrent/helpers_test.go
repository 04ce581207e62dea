package torrent

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/surge-downloader/trtool/internal/engine/types"
)

// memOpener serves payload files from memory and counts accesses. A file
// stored under the empty key makes the root itself a file.
type memOpener struct {
	mu    sync.Mutex
	files map[string][]byte

	opens atomic.Int32
	stats atomic.Int32
}

func newMemOpener(files map[string][]byte) *memOpener {
	return &memOpener{files: files}
}

type memReader struct {
	*bytes.Reader
}

func (memReader) Close() error { return nil }

func (m *memOpener) Open(path []string) (RangeReader, error) {
	m.opens.Add(1)
	m.mu.Lock()
	data, ok := m.files[strings.Join(path, "/")]
	m.mu.Unlock()
	if !ok {
		return nil, fs.ErrNotExist
	}
	return memReader{bytes.NewReader(data)}, nil
}

func (m *memOpener) Stat(path []string) (int64, bool, error) {
	m.stats.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.Join(path, "/")
	if data, ok := m.files[key]; ok {
		return int64(len(data)), false, nil
	}
	if key == "" {
		return 0, true, nil
	}
	for k := range m.files {
		if strings.HasPrefix(k, key+"/") {
			return 0, true, nil
		}
	}
	return 0, false, fs.ErrNotExist
}

func (m *memOpener) set(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
}

func (m *memOpener) remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// failingOpener refuses every access.
type failingOpener struct{}

func (failingOpener) Open([]string) (RangeReader, error) { return nil, errors.New("no access") }
func (failingOpener) Stat([]string) (int64, bool, error) { return 0, false, errors.New("no access") }

// referencePieces hashes the concatenation of chunks the simplest way possible.
func referencePieces(pieceLength int, chunks ...[]byte) [][types.HashSize]byte {
	stream := bytes.Join(chunks, nil)
	var out [][types.HashSize]byte
	for off := 0; off < len(stream); off += pieceLength {
		end := min(off+pieceLength, len(stream))
		out = append(out, sha1.Sum(stream[off:end]))
	}
	return out
}
