// Package bencode implements the BitTorrent serialization format.
//
// Decoded values remember the byte range they occupied in the source buffer, so
// callers can hash a sub-value from its original bytes instead of a re-encoding.
package bencode

import (
	"bytes"
	"sort"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBytes
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBytes:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Span is the half-open range [Start, End) a value occupied in its source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

type DictEntry struct {
	Key   []byte
	Value Value
}

// Value is a decoded or constructed bencode value. Only the field matching
// Kind is meaningful. Dict keeps entries in source order; Encode sorts them.
type Value struct {
	Kind  Kind
	Int   int64
	Bytes []byte
	List  []Value
	Dict  []DictEntry
	Span  Span
}

func Int(n int64) Value {
	return Value{Kind: KindInt, Int: n}
}

func String(s string) Value {
	return Value{Kind: KindBytes, Bytes: []byte(s)}
}

func Bytes(b []byte) Value {
	return Value{Kind: KindBytes, Bytes: b}
}

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, List: items}
}

func Dict(entries ...DictEntry) Value {
	if entries == nil {
		entries = []DictEntry{}
	}
	return Value{Kind: KindDict, Dict: entries}
}

// Entry builds a DictEntry with a string key.
func Entry(key string, v Value) DictEntry {
	return DictEntry{Key: []byte(key), Value: v}
}

// Get returns the value stored under key in a dictionary.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, e := range v.Dict {
		if string(e.Key) == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Keys returns dictionary keys in source order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.Dict))
	for _, e := range v.Dict {
		keys = append(keys, string(e.Key))
	}
	return keys
}

// Raw returns the bytes of src the value was decoded from.
func (v Value) Raw(src []byte) []byte {
	if v.Span.End <= v.Span.Start || v.Span.End > len(src) {
		return nil
	}
	return src[v.Span.Start:v.Span.End]
}

func (v Value) Str() string {
	return string(v.Bytes)
}

// Equal reports whether a and b hold the same logical value. Spans and the
// order of dictionary entries are ignored.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindBytes:
		return bytes.Equal(a.Bytes, b.Bytes)
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(a.Dict) != len(b.Dict) {
			return false
		}
		as, bs := sortedEntries(a.Dict), sortedEntries(b.Dict)
		for i := range as {
			if !bytes.Equal(as[i].Key, bs[i].Key) || !Equal(as[i].Value, bs[i].Value) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func sortedEntries(entries []DictEntry) []DictEntry {
	out := make([]DictEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return bytes.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}
