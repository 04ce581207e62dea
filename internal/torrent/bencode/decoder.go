package bencode

import (
	"fmt"
	"strconv"
)

// MaxDepth bounds list/dictionary nesting.
const MaxDepth = 256

// Decode parses exactly one value spanning all of data.
func Decode(data []byte) (Value, error) {
	d := decoder{data: data}
	v, err := d.decode()
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(data) {
		return Value{}, d.errorf("trailing data after value")
	}
	return v, nil
}

type decoder struct {
	data  []byte
	pos   int
	depth int
}

func (d *decoder) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: d.pos, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) decode() (Value, error) {
	if d.pos >= len(d.data) {
		return Value{}, d.errorf("unexpected end of input")
	}
	switch c := d.data[d.pos]; {
	case c == 'i':
		return d.decodeInt()
	case c == 'l':
		return d.decodeList()
	case c == 'd':
		return d.decodeDict()
	case c >= '0' && c <= '9':
		return d.decodeString()
	default:
		return Value{}, d.errorf("invalid character %q", c)
	}
}

func (d *decoder) decodeInt() (Value, error) {
	start := d.pos
	d.pos++ // 'i'
	digits := d.pos
	if d.pos < len(d.data) && d.data[d.pos] == '-' {
		d.pos++
	}
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return Value{}, d.errorf("unterminated integer")
	}
	if d.data[d.pos] != 'e' {
		return Value{}, d.errorf("invalid character %q in integer", d.data[d.pos])
	}
	s := string(d.data[digits:d.pos])
	switch {
	case s == "" || s == "-":
		return Value{}, d.errorf("empty integer")
	case s == "-0":
		return Value{}, d.errorf("negative zero")
	case len(s) > 1 && s[0] == '0', len(s) > 2 && s[0] == '-' && s[1] == '0':
		return Value{}, d.errorf("leading zero in integer %q", s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, d.errorf("integer %q out of range", s)
	}
	d.pos++ // 'e'
	return Value{Kind: KindInt, Int: n, Span: Span{Start: start, End: d.pos}}, nil
}

func (d *decoder) decodeString() (Value, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return Value{}, d.errorf("truncated string length")
	}
	if d.data[d.pos] != ':' {
		return Value{}, d.errorf("invalid character %q in string length", d.data[d.pos])
	}
	length, err := strconv.Atoi(string(d.data[start:d.pos]))
	if err != nil || length < 0 {
		return Value{}, d.errorf("invalid string length")
	}
	d.pos++ // ':'
	if length > len(d.data)-d.pos {
		return Value{}, d.errorf("string of length %d exceeds input", length)
	}
	buf := make([]byte, length)
	copy(buf, d.data[d.pos:d.pos+length])
	d.pos += length
	return Value{Kind: KindBytes, Bytes: buf, Span: Span{Start: start, End: d.pos}}, nil
}

func (d *decoder) enter() error {
	d.depth++
	if d.depth > MaxDepth {
		return d.errorf("nesting deeper than %d", MaxDepth)
	}
	return nil
}

func (d *decoder) decodeList() (Value, error) {
	start := d.pos
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	d.pos++ // 'l'
	list := []Value{}
	for {
		if d.pos >= len(d.data) {
			return Value{}, d.errorf("unterminated list")
		}
		if d.data[d.pos] == 'e' {
			break
		}
		v, err := d.decode()
		if err != nil {
			return Value{}, err
		}
		list = append(list, v)
	}
	d.pos++ // 'e'
	d.depth--
	return Value{Kind: KindList, List: list, Span: Span{Start: start, End: d.pos}}, nil
}

func (d *decoder) decodeDict() (Value, error) {
	start := d.pos
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	d.pos++ // 'd'
	entries := []DictEntry{}
	seen := make(map[string]struct{})
	for {
		if d.pos >= len(d.data) {
			return Value{}, d.errorf("unterminated dictionary")
		}
		if d.data[d.pos] == 'e' {
			break
		}
		if c := d.data[d.pos]; c < '0' || c > '9' {
			return Value{}, d.errorf("dictionary key must be a string, got %q", c)
		}
		keyPos := d.pos
		key, err := d.decodeString()
		if err != nil {
			return Value{}, err
		}
		if _, dup := seen[string(key.Bytes)]; dup {
			d.pos = keyPos
			return Value{}, d.errorf("duplicate key %q", key.Bytes)
		}
		seen[string(key.Bytes)] = struct{}{}
		v, err := d.decode()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, DictEntry{Key: key.Bytes, Value: v})
	}
	d.pos++ // 'e'
	d.depth--
	return Value{Kind: KindDict, Dict: entries, Span: Span{Start: start, End: d.pos}}, nil
}
