// Package jsontext implements the text layer of the codec: a token-level
// JSON decoder that preserves object key order and exact number literals,
// and an encoder with configurable indentation and key ordering.
//
// The decoder builds on encoding/json's tokenizer rather than a third-party
// JSON library because the tree it produces is made of insertion-ordered
// maps and json.Number leaves, which none of the struct-oriented decoders
// expose at the token level.
package jsontext

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SyntaxError reports syntactically invalid input together with the byte
// offset at which parsing failed.
type SyntaxError struct {
	Offset int64
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %s", e.Offset, e.Detail)
}

// DepthError reports input nesting deeper than the configured limit. The
// decoder enforces the limit itself so pathological input cannot exhaust
// the stack before the structural pass sees it.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("input nests deeper than %d levels", e.Limit)
}

// Decode parses a complete JSON document into a tree of ordered maps,
// slices, strings, json.Number, bools and nil. Trailing non-whitespace
// content after the document is an error.
func Decode(text string, maxDepth int) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	value, err := decodeValue(dec, 0, maxDepth)
	if err != nil {
		return nil, asDecodeError(dec, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, asDecodeError(dec, err)
	}
	return value, nil
}

func decodeValue(dec *json.Decoder, depth, maxDepth int) (any, error) {
	if depth > maxDepth {
		return nil, &DepthError{Limit: maxDepth}
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec, depth, maxDepth)
		case '[':
			return decodeArray(dec, depth, maxDepth)
		}
	}
	// string, bool, json.Number or nil
	return tok, nil
}

func decodeObject(dec *json.Decoder, depth, maxDepth int) (*orderedmap.OrderedMap[string, any], error) {
	obj := orderedmap.New[string, any]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, want string", keyTok)
		}
		value, err := decodeValue(dec, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder, depth, maxDepth int) ([]any, error) {
	arr := []any{}
	for dec.More() {
		value, err := decodeValue(dec, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return arr, nil
}

func asDecodeError(dec *json.Decoder, err error) error {
	var depthErr *DepthError
	if errors.As(err, &depthErr) {
		return err
	}
	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return &SyntaxError{Offset: jsonErr.Offset, Detail: jsonErr.Error()}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Offset: dec.InputOffset(), Detail: "unexpected end of input"}
	}
	return &SyntaxError{Offset: dec.InputOffset(), Detail: err.Error()}
}
