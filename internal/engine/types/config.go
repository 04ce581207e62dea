package types

import "runtime"

// Size constants
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// Piece length bounds. Both ends are inclusive.
const (
	MinPieceExponent = 14
	MaxPieceExponent = 27

	MinPieceLength = 1 << MinPieceExponent // 16 KiB
	MaxPieceLength = 1 << MaxPieceExponent // 128 MiB

	DefaultPieceLength = 64 * KB
)

// HashSize is the length of a SHA-1 piece digest.
const HashSize = 20

// HashConfig contains the parameters for one hashing run
type HashConfig struct {
	Workers  int
	Progress ProgressFunc
}

// GetWorkers returns the configured worker count or the number of CPUs
func (c *HashConfig) GetWorkers() int {
	if c == nil || c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
