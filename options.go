package serialx

import "fmt"

// Option configures a Codec during construction.
type Option func(c *Codec) error

// WithIndent enables pretty-printed output with n spaces per nesting level.
// n must be non-negative; zero means newlines without indentation.
func WithIndent(n int) Option {
	return func(c *Codec) error {
		if n < 0 {
			return fmt.Errorf("indent must be non-negative, got %d", n)
		}
		c.indent = n
		return nil
	}
}

// WithCompactOutput restores the default single-line output. Useful to
// override a previously applied WithIndent.
func WithCompactOutput() Option {
	return func(c *Codec) error {
		c.indent = -1
		return nil
	}
}

// WithSortedKeys makes the encoder emit mapping keys in sorted order instead
// of insertion order. Decoded values are unaffected.
func WithSortedKeys() Option {
	return func(c *Codec) error {
		c.sortKeys = true
		return nil
	}
}

// WithEnsureASCII makes the encoder escape every rune outside the ASCII
// range as \uXXXX, producing pure-ASCII output. Decoding is unaffected;
// escaped text deserializes to the original string.
func WithEnsureASCII() Option {
	return func(c *Codec) error {
		c.ensureASCII = true
		return nil
	}
}

// WithMaxDepth overrides the nesting depth limit guarding the recursive
// walk.
func WithMaxDepth(n int) Option {
	return func(c *Codec) error {
		if n <= 0 {
			return fmt.Errorf("max depth must be positive, got %d", n)
		}
		c.conv.maxDepth = n
		return nil
	}
}

// WithConverter registers an additional special type under the given tag
// name. prototype is a value of the type handled by conv.Forward; pass nil
// for a reconstruction-only entry that only supplies conv.Backward. Names
// must not collide with the built-ins or with each other.
func WithConverter(name string, prototype any, conv Converter) Option {
	return func(c *Codec) error {
		return c.conv.registry.register(name, prototype, conv)
	}
}
