package serialx

import (
	"errors"
	"fmt"

	"github.com/hengadev/serialx/internal/jsontext"
)

// Codec serializes values to JSON text and reconstructs them from it. All
// state is fixed at construction, so a single Codec may be shared across
// goroutines.
type Codec struct {
	conv        *StructuralConverter
	indent      int // negative means compact output
	sortKeys    bool
	ensureASCII bool
}

// New builds a Codec. Without options the output is compact, keys keep
// their insertion order, and only the built-in special types (datetime,
// decimal, set) are registered.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		conv: &StructuralConverter{
			registry: newRegistry(),
			maxDepth: DefaultMaxDepth,
		},
		indent: -1,
	}
	for _, opt := range opts {
		if opt == nil {
			return nil, fmt.Errorf("%w: option cannot be nil", ErrNilPointer)
		}
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
		}
	}
	return c, nil
}

// Serialize converts a value to JSON text, wrapping special and custom
// values in tagged wrappers along the way.
func (c *Codec) Serialize(value any) (string, error) {
	tree, err := c.conv.ToNative(value)
	if err != nil {
		return "", err
	}
	text, err := jsontext.Encode(tree, c.encodeOptions())
	if err != nil {
		// ToNative is total over the declared value classes, so this is
		// a defect rather than an input problem.
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return text, nil
}

// Deserialize parses JSON text and reverses the tagging performed during
// serialization. Syntactically invalid input fails with ErrMalformedText;
// no partial value is ever returned.
func (c *Codec) Deserialize(text string) (any, error) {
	tree, err := jsontext.Decode(text, c.conv.maxDepth)
	if err != nil {
		var depthErr *jsontext.DepthError
		if errors.As(err, &depthErr) {
			return nil, NewDepthExceededError(depthErr.Limit)
		}
		var syn *jsontext.SyntaxError
		if errors.As(err, &syn) {
			return nil, fmt.Errorf("%w: %s at offset %d", ErrMalformedText, syn.Detail, syn.Offset)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedText, err)
	}
	return c.conv.FromNative(tree)
}

func (c *Codec) encodeOptions() jsontext.Options {
	return jsontext.Options{
		Indent:         c.indent,
		SortKeys:       c.sortKeys,
		EscapeNonASCII: c.ensureASCII,
	}
}

// ToDict converts a value to its JSON-representable tree without encoding
// it to text. Mappings in the result preserve insertion order; already
// native input passes through structurally unchanged, so the operation is
// idempotent.
func (c *Codec) ToDict(value any) (any, error) {
	return c.conv.ToNative(value)
}

// FromDict reverses ToDict, reconstructing special values from their tagged
// wrappers.
func (c *Codec) FromDict(tree any) (any, error) {
	return c.conv.FromNative(tree)
}

// Converter exposes the codec's structural converter for collaborators that
// want the tree form directly.
func (c *Codec) Converter() *StructuralConverter {
	return c.conv
}

// IsValidJSON reports whether the text parses as JSON. It is a convenience
// pre-check; Deserialize performs the same validation itself.
func IsValidJSON(text string) bool {
	_, err := jsontext.Decode(text, DefaultMaxDepth)
	return err == nil
}
