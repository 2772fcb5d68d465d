package jsontext

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Options controls the textual layout of the encoded output. Layout never
// affects the decoded value.
type Options struct {
	// Indent is the number of spaces per nesting level. Negative means
	// compact single-line output with minimal separators.
	Indent int
	// SortKeys emits object keys in sorted order instead of insertion
	// order.
	SortKeys bool
	// EscapeNonASCII replaces every rune outside the ASCII range with its
	// \uXXXX escape, so the output is pure ASCII.
	EscapeNonASCII bool
}

// UnsupportedValueError reports a tree leaf the encoder cannot represent.
// The structural converter is total over its declared value classes, so
// seeing this error indicates a caller bypassed it.
type UnsupportedValueError struct {
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("cannot encode value of type %T", e.Value)
}

// Encode renders a native tree as JSON text.
func Encode(tree any, opts Options) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, tree, opts, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encodeValue(b *strings.Builder, value any, opts Options, level int) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		if err := encodeString(b, v, opts); err != nil {
			return err
		}
	case json.Number:
		if v == "" {
			return &UnsupportedValueError{Value: v}
		}
		b.WriteString(string(v))
	case []any:
		return encodeArray(b, v, opts, level)
	case *orderedmap.OrderedMap[string, any]:
		return encodeObject(b, v, opts, level)
	default:
		return &UnsupportedValueError{Value: value}
	}
	return nil
}

func encodeArray(b *strings.Builder, arr []any, opts Options, level int) error {
	if len(arr) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNewlineIndent(b, opts, level+1)
		if err := encodeValue(b, elem, opts, level+1); err != nil {
			return err
		}
	}
	writeNewlineIndent(b, opts, level)
	b.WriteByte(']')
	return nil
}

func encodeObject(b *strings.Builder, obj *orderedmap.OrderedMap[string, any], opts Options, level int) error {
	if obj.Len() == 0 {
		b.WriteString("{}")
		return nil
	}

	keys := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	if opts.SortKeys {
		sort.Strings(keys)
	}

	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNewlineIndent(b, opts, level+1)
		if err := encodeString(b, key, opts); err != nil {
			return err
		}
		b.WriteByte(':')
		if opts.Indent >= 0 {
			b.WriteByte(' ')
		}
		value, _ := obj.Get(key)
		if err := encodeValue(b, value, opts, level+1); err != nil {
			return err
		}
	}
	writeNewlineIndent(b, opts, level)
	b.WriteByte('}')
	return nil
}

// encodeString writes s as a quoted JSON string. json.Marshal handles the
// mandatory escapes; runes beyond ASCII stay UTF-8 unless EscapeNonASCII is
// set, in which case they become \uXXXX escapes (surrogate pairs above the
// basic plane).
func encodeString(b *strings.Builder, s string, opts Options) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if !opts.EscapeNonASCII {
		b.Write(raw)
		return nil
	}
	for _, r := range string(raw) {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(b, `\u%04x`, r)
	}
	return nil
}

func writeNewlineIndent(b *strings.Builder, opts Options, level int) {
	if opts.Indent < 0 {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < level*opts.Indent; i++ {
		b.WriteByte(' ')
	}
}
