package walk

import (
	"os"
	"path/filepath"
)

// Entry describes one directory member as seen by a Lister.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// Lister is the directory enumeration capability the walker consumes.
type Lister interface {
	Stat(path string) (Entry, error)
	ReadDir(path string) ([]Entry, error)
}

// OSLister enumerates the local filesystem. ReadDir returns entries in raw
// directory order and follows symlinks; entries that are neither regular
// files nor directories are skipped.
type OSLister struct{}

func (OSLister) Stat(path string) (Entry, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: fi.Name(), IsDir: fi.IsDir(), Size: fi.Size()}, nil
}

func (OSLister) ReadDir(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dirents, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		fi, err := os.Stat(filepath.Join(path, de.Name()))
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() && !fi.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), IsDir: fi.IsDir(), Size: fi.Size()})
	}
	return entries, nil
}
