package cmd

import (
	"context"
	"fmt"
	"net/textproto"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/surge-downloader/trtool/internal/config"
	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/torrent"
	"github.com/surge-downloader/trtool/internal/tui"
)

// resolveOutputPath applies the -o rules: the name must end in .torrent, a
// bare file name lands next to the target, anything with a directory part is
// used as given. Without -o the torrent is written as <target>.torrent.
func resolveOutputPath(target, output string) (string, error) {
	clean := filepath.Clean(target)
	if output == "" {
		return clean + ".torrent", nil
	}
	if !strings.HasSuffix(strings.ToLower(output), ".torrent") {
		return "", fmt.Errorf("output file %q must end with .torrent", output)
	}
	if filepath.IsAbs(output) || strings.ContainsRune(output, '/') || strings.ContainsRune(output, filepath.Separator) {
		return output, nil
	}
	return filepath.Join(filepath.Dir(clean), output), nil
}

// parsePieceFlag accepts an exponent (16 means 64 KiB) or an explicit size.
func parsePieceFlag(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < 64 {
		return torrent.PieceLengthFromExponent(n)
	}
	length, err := config.ParsePieceLength(s)
	if err != nil {
		return 0, err
	}
	if err := torrent.ValidatePieceLength(length); err != nil {
		return 0, err
	}
	return length, nil
}

// parseHeaders turns "Key: Value" flags into a request header map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("invalid header %q (want \"Key: Value\")", h)
		}
		key = textproto.CanonicalMIMEHeaderKey(key)
		value = strings.TrimSpace(value)
		if key == "Authorization" {
			if _, _, err := splitAuth(value); err != nil {
				return nil, err
			}
		}
		out[key] = value
	}
	return out, nil
}

// splitAuth checks that an Authorization value has a scheme and credentials.
func splitAuth(value string) (string, string, error) {
	scheme, creds, ok := strings.Cut(value, " ")
	if !ok || scheme == "" || strings.TrimSpace(creds) == "" {
		return "", "", fmt.Errorf("invalid Authorization header %q", value)
	}
	return scheme, strings.TrimSpace(creds), nil
}

// describeHeaders lists the header names for the debug log without values.
func describeHeaders(h map[string]string) string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// hashFunc runs one hashing pass, reporting through progress.
type hashFunc func(ctx context.Context, progress types.ProgressFunc) error

// withProgress runs fn, drawing a progress bar when attached to a terminal.
func (a *app) withProgress(ctx context.Context, label string, fn hashFunc) error {
	ps := types.NewProgressState(uuid.New().String(), 0)
	progress := func(index, total int) { ps.Observe(index, total) }

	if !a.interactive || a.opts.quiet {
		return fn(ctx, progress)
	}
	return tui.RunWithProgress(ctx, label, ps, a.stdout, func(ctx context.Context) error {
		return fn(ctx, progress)
	})
}
