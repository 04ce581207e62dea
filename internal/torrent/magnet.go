package torrent

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

type Magnet struct {
	InfoHash    [20]byte
	Trackers    []string
	DisplayName string
}

// MagnetURI renders a v1 magnet link with the display name and every tracker.
func (m *TorrentMeta) MagnetURI() string {
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(m.HexHash())
	if m.Info.Name != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(m.Info.Name))
	}
	for _, tr := range m.Trackers() {
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tr))
	}
	return b.String()
}

// ParseMagnet decodes a magnet link. It carries no piece hashes, so it can be
// described but never verified against.
func ParseMagnet(raw string) (*Magnet, error) {
	m, err := metainfo.ParseMagnetUri(raw)
	if err != nil {
		return nil, err
	}
	if m.InfoHash == ([20]byte{}) {
		return nil, fmt.Errorf("missing or invalid infohash")
	}

	out := &Magnet{
		Trackers:    append([]string(nil), m.Trackers...),
		DisplayName: m.DisplayName,
	}
	copy(out.InfoHash[:], m.InfoHash[:])
	return out, nil
}
