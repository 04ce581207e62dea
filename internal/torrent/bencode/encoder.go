package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Encode serializes v canonically: dictionary keys ascending by raw bytes.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeAny serializes plain Go values: integers, strings, byte slices, lists
// and string-keyed maps, plus Value itself.
func EncodeAny(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeAny(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindInt:
		encodeInt(buf, v.Int)
	case KindBytes:
		encodeString(buf, v.Bytes)
	case KindList:
		buf.WriteByte('l')
		for _, item := range v.List {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case KindDict:
		entries := sortedEntries(v.Dict)
		buf.WriteByte('d')
		for i, e := range entries {
			if i > 0 && bytes.Equal(entries[i-1].Key, e.Key) {
				return fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
			}
			encodeString(buf, e.Key)
			if err := encodeValue(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	default:
		return fmt.Errorf("cannot encode %s value", v.Kind)
	}
	return nil
}

func encodeAny(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case Value:
		return encodeValue(buf, t)
	case int:
		encodeInt(buf, int64(t))
	case int64:
		encodeInt(buf, t)
	case uint32:
		encodeInt(buf, int64(t))
	case bool:
		if t {
			encodeInt(buf, 1)
		} else {
			encodeInt(buf, 0)
		}
	case string:
		encodeString(buf, []byte(t))
	case []byte:
		encodeString(buf, t)
	case []string:
		buf.WriteByte('l')
		for _, s := range t {
			encodeString(buf, []byte(s))
		}
		buf.WriteByte('e')
	case [][]string:
		buf.WriteByte('l')
		for _, tier := range t {
			if err := encodeAny(buf, tier); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case []any:
		buf.WriteByte('l')
		for _, item := range t {
			if err := encodeAny(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('e')
	case map[string]any:
		return encodeMap(buf, t)
	default:
		return fmt.Errorf("unsupported type %T", v)
	}
	return nil
}

func encodeInt(buf *bytes.Buffer, n int64) {
	buf.WriteByte('i')
	buf.WriteString(strconv.FormatInt(n, 10))
	buf.WriteByte('e')
}

func encodeString(buf *bytes.Buffer, b []byte) {
	buf.WriteString(strconv.Itoa(len(b)))
	buf.WriteByte(':')
	buf.Write(b)
}

func encodeMap(buf *bytes.Buffer, m map[string]any) error {
	buf.WriteByte('d')
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encodeString(buf, []byte(k))
		if err := encodeAny(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('e')
	return nil
}
