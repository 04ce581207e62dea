package source

import (
	"errors"
	"net/url"
	"strings"
)

type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindTarget      Kind = "target"
	KindTorrentFile Kind = "torrent-file"
	KindTorrentURL  Kind = "torrent-url"
	KindMagnet      Kind = "magnet"
)

func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func IsTorrentURL(raw string) bool {
	if !IsHTTPURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".torrent")
}

func IsMagnet(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if strings.ToLower(u.Scheme) != "magnet" {
		return false
	}
	// Accept any non-empty magnet payload (opaque or query).
	return u.Opaque != "" || u.RawQuery != ""
}

// IsTorrentPath reports whether raw names a local .torrent file.
func IsTorrentPath(raw string) bool {
	return !IsHTTPURL(raw) && strings.HasSuffix(strings.ToLower(raw), ".torrent")
}

func KindOf(raw string) Kind {
	s := Normalize(raw)
	if s == "" {
		return KindUnknown
	}
	if IsMagnet(s) {
		return KindMagnet
	}
	if IsTorrentURL(s) {
		return KindTorrentURL
	}
	if IsHTTPURL(s) {
		return KindUnknown
	}
	if IsTorrentPath(s) {
		return KindTorrentFile
	}
	return KindTarget
}

// IsTorrent reports whether k describes existing metainfo.
func (k Kind) IsTorrent() bool {
	return k == KindTorrentFile || k == KindTorrentURL || k == KindMagnet
}

// Action is what the bare command line asks for.
type Action int

const (
	ActionCreate Action = iota
	ActionInfo
	ActionVerify
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionInfo:
		return "info"
	case ActionVerify:
		return "verify"
	default:
		return "unknown"
	}
}

var (
	ErrUsage        = errors.New("provide one target (create), one .torrent (info), or a .torrent plus target (verify)")
	ErrNoTorrent    = errors.New("one of the two arguments must be a .torrent file")
	ErrUnsupported  = errors.New("unsupported input: only local paths, .torrent links and magnet links are accepted")
	ErrMagnetVerify = errors.New("magnet links carry no piece hashes and cannot be verified")
)

// Plan is a resolved command line.
type Plan struct {
	Action  Action
	Torrent string
	Kind    Kind
	Target  string
}

// Resolve picks the action for positional arguments. One target creates, one
// torrent shows info, and a torrent plus a target in either order verifies.
func Resolve(args []string) (Plan, error) {
	switch len(args) {
	case 1:
		arg := Normalize(args[0])
		kind := KindOf(arg)
		switch {
		case kind.IsTorrent():
			return Plan{Action: ActionInfo, Torrent: arg, Kind: kind}, nil
		case kind == KindTarget:
			return Plan{Action: ActionCreate, Target: arg, Kind: kind}, nil
		default:
			return Plan{}, ErrUnsupported
		}
	case 2:
		first, second := Normalize(args[0]), Normalize(args[1])
		torrent, target := first, second
		if !KindOf(first).IsTorrent() {
			torrent, target = second, first
		}
		kind := KindOf(torrent)
		if !kind.IsTorrent() {
			return Plan{}, ErrNoTorrent
		}
		if kind == KindMagnet {
			return Plan{}, ErrMagnetVerify
		}
		if KindOf(target) != KindTarget {
			return Plan{}, ErrUnsupported
		}
		return Plan{Action: ActionVerify, Torrent: torrent, Kind: kind, Target: target}, nil
	default:
		return Plan{}, ErrUsage
	}
}
