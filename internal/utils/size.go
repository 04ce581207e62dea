package utils

import (
	"github.com/dustin/go-humanize"
)

// ConvertBytesToHumanReadable formats a byte count with binary prefixes,
// e.g. "500 B", "1.5 KiB", "64 KiB".
func ConvertBytesToHumanReadable(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
