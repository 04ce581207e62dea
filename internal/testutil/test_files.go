package testutil

import (
	"crypto/rand"
	mrand "math/rand"
	"os"
	"path/filepath"
)

// TempDir creates a temporary directory for test files and returns a cleanup function.
func TempDir(prefix string) (string, func(), error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		_ = os.RemoveAll(dir)
	}

	return dir, cleanup, nil
}

// CreateTestFile creates a test file with the specified size filled
// with either zeros or random data.
func CreateTestFile(dir, name string, size int64, random bool) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if random {
		// Write in chunks for large files
		chunkSize := int64(64 * 1024) // 64KB
		chunk := make([]byte, chunkSize)
		remaining := size

		for remaining > 0 {
			if remaining < chunkSize {
				chunk = make([]byte, remaining)
			}
			_, _ = rand.Read(chunk)
			n, err := f.Write(chunk)
			if err != nil {
				return "", err
			}
			remaining -= int64(n)
		}
	} else {
		// Pre-allocate with zeros (sparse file)
		if err := f.Truncate(size); err != nil {
			return "", err
		}
	}

	return path, nil
}

// PatternBytes returns n reproducible pseudo-random bytes for seed.
func PatternBytes(n int, seed int64) []byte {
	buf := make([]byte, n)
	r := mrand.New(mrand.NewSource(seed))
	_, _ = r.Read(buf)
	return buf
}

// WriteTree creates every file in files under dir. Keys are slash-separated
// relative paths and parent directories are created as needed.
func WriteTree(dir string, files map[string][]byte) error {
	for rel, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// FlipByte inverts every bit of the byte at offset in path.
func FlipByte(path string, offset int64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	b := make([]byte, 1)
	if _, err := f.ReadAt(b, offset); err != nil {
		return err
	}
	b[0] ^= 0xff
	_, err = f.WriteAt(b, offset)
	return err
}

// VerifyFileSize checks if a file has the expected size.
func VerifyFileSize(path string, expectedSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() != expectedSize {
		return &FileSizeMismatchError{
			Path:     path,
			Expected: expectedSize,
			Actual:   info.Size(),
		}
	}
	return nil
}

// FileSizeMismatchError indicates a file size doesn't match expected.
type FileSizeMismatchError struct {
	Path     string
	Expected int64
	Actual   int64
}

func (e *FileSizeMismatchError) Error() string {
	return "file size mismatch: " + e.Path
}

// ReadFileChunk reads a specific byte range from a file.
func ReadFileChunk(path string, offset, length int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make([]byte, length)
	_, err = f.ReadAt(data, offset)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
