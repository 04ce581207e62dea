package torrent

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/surge-downloader/trtool/internal/engine/types"
	"github.com/surge-downloader/trtool/internal/torrent/bencode"
)

// ReadTorrentFile loads and parses a .torrent file from disk.
func ReadTorrentFile(path string) (*TorrentMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	meta, err := ParseTorrent(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, explainMalformed(data, err))
	}
	return meta, nil
}

// ParseTorrent decodes metainfo. The info hash is taken over the exact bytes
// of the info dictionary as they appear in data.
func ParseTorrent(data []byte) (*TorrentMeta, error) {
	root, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	if root.Kind != bencode.KindDict {
		return nil, malformed("", "top level is a %s, not a dictionary", root.Kind)
	}
	infoVal, ok := root.Get("info")
	if !ok {
		return nil, malformed("info", "missing")
	}
	if infoVal.Kind != bencode.KindDict {
		return nil, malformed("info", "not a dictionary")
	}

	info, err := parseInfo(infoVal)
	if err != nil {
		return nil, err
	}

	infoBytes := bytes.Clone(infoVal.Raw(data))
	meta := &TorrentMeta{
		Info:      info,
		InfoHash:  sha1.Sum(infoBytes),
		InfoBytes: infoBytes,
	}

	if meta.Announce, err = optString(root, "announce"); err != nil {
		return nil, err
	}
	if meta.Comment, err = optString(root, "comment"); err != nil {
		return nil, err
	}
	if meta.CreatedBy, err = optString(root, "created by"); err != nil {
		return nil, err
	}
	if meta.Encoding, err = optString(root, "encoding"); err != nil {
		return nil, err
	}
	if v, ok := root.Get("creation date"); ok {
		if v.Kind != bencode.KindInt {
			return nil, malformed("creation date", "not an integer")
		}
		ts := time.Unix(v.Int, 0).UTC()
		meta.CreationDate = &ts
	}
	if v, ok := root.Get("announce-list"); ok {
		tiers, err := parseAnnounceList(v)
		if err != nil {
			return nil, err
		}
		meta.AnnounceList = tiers
	}

	return meta, nil
}

func parseInfo(d bencode.Value) (Info, error) {
	var info Info

	name, ok := d.Get("name")
	if !ok {
		return info, malformed("name", "missing")
	}
	if name.Kind != bencode.KindBytes {
		return info, malformed("name", "not a string")
	}
	if len(name.Bytes) == 0 {
		return info, malformed("name", "empty")
	}
	info.Name = name.Str()

	pl, ok := d.Get("piece length")
	if !ok {
		return info, malformed("piece length", "missing")
	}
	if pl.Kind != bencode.KindInt || pl.Int <= 0 {
		return info, malformed("piece length", "must be a positive integer")
	}
	info.PieceLength = pl.Int

	pieces, ok := d.Get("pieces")
	if !ok {
		return info, malformed("pieces", "missing")
	}
	if pieces.Kind != bencode.KindBytes {
		return info, malformed("pieces", "not a string")
	}
	if len(pieces.Bytes)%types.HashSize != 0 {
		return info, malformed("pieces", "length %d is not a multiple of %d", len(pieces.Bytes), types.HashSize)
	}
	info.Pieces = make([][types.HashSize]byte, len(pieces.Bytes)/types.HashSize)
	for i := range info.Pieces {
		copy(info.Pieces[i][:], pieces.Bytes[i*types.HashSize:])
	}

	if v, ok := d.Get("private"); ok {
		if v.Kind != bencode.KindInt || (v.Int != 0 && v.Int != 1) {
			return info, malformed("private", "must be 0 or 1")
		}
		info.Private = v.Int == 1
	}

	length, hasLength := d.Get("length")
	files, hasFiles := d.Get("files")
	switch {
	case hasLength && hasFiles:
		return info, malformed("length", "both length and files present")
	case hasLength:
		if length.Kind != bencode.KindInt || length.Int < 0 {
			return info, malformed("length", "must be a non-negative integer")
		}
		info.Files = []FileEntry{{Length: length.Int}}
	case hasFiles:
		entries, err := parseFiles(files)
		if err != nil {
			return info, err
		}
		info.Files = entries
	default:
		return info, malformed("length", "neither length nor files present")
	}

	var total int64
	for _, f := range info.Files {
		if f.Length > math.MaxInt64-total {
			return info, malformed("files", "total length overflows")
		}
		total += f.Length
	}
	want := pieceCount(total, info.PieceLength)
	if int64(len(info.Pieces)) != want {
		return info, malformed("pieces", "%d hashes for %d bytes at piece length %d, want %d",
			len(info.Pieces), total, info.PieceLength, want)
	}
	return info, nil
}

func parseFiles(v bencode.Value) ([]FileEntry, error) {
	if v.Kind != bencode.KindList {
		return nil, malformed("files", "not a list")
	}
	out := make([]FileEntry, 0, len(v.List))
	for i, item := range v.List {
		if item.Kind != bencode.KindDict {
			return nil, malformed("files", "entry %d is not a dictionary", i)
		}
		length, ok := item.Get("length")
		if !ok || length.Kind != bencode.KindInt || length.Int < 0 {
			return nil, malformed("files.length", "entry %d: must be a non-negative integer", i)
		}
		p, ok := item.Get("path")
		if !ok || p.Kind != bencode.KindList || len(p.List) == 0 {
			return nil, malformed("files.path", "entry %d: must be a non-empty list", i)
		}
		segs := make([]string, len(p.List))
		for j, s := range p.List {
			if s.Kind != bencode.KindBytes {
				return nil, malformed("files.path", "entry %d: segment %d is not a string", i, j)
			}
			if !validSegment(s.Bytes) {
				return nil, malformed("files.path", "entry %d: illegal segment %q", i, s.Bytes)
			}
			segs[j] = s.Str()
		}
		out = append(out, FileEntry{Path: segs, Length: length.Int})
	}
	return out, nil
}

// validSegment rejects segments that would escape or alias the content root.
func validSegment(b []byte) bool {
	switch string(b) {
	case "", ".", "..":
		return false
	}
	return bytes.IndexByte(b, '/') < 0 && bytes.IndexByte(b, '\\') < 0 && bytes.IndexByte(b, 0) < 0
}

func parseAnnounceList(v bencode.Value) ([][]string, error) {
	if v.Kind != bencode.KindList {
		return nil, malformed("announce-list", "not a list")
	}
	var tiers [][]string
	for i, tier := range v.List {
		if tier.Kind != bencode.KindList {
			return nil, malformed("announce-list", "tier %d is not a list", i)
		}
		var urls []string
		for _, u := range tier.List {
			if u.Kind != bencode.KindBytes {
				return nil, malformed("announce-list", "tier %d holds a non-string", i)
			}
			urls = append(urls, u.Str())
		}
		if len(urls) == 0 {
			continue
		}
		tiers = append(tiers, urls)
	}
	return tiers, nil
}

func optString(d bencode.Value, key string) (string, error) {
	v, ok := d.Get(key)
	if !ok {
		return "", nil
	}
	if v.Kind != bencode.KindBytes {
		return "", malformed(key, "not a string")
	}
	return v.Str(), nil
}
