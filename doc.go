// Package serialx provides type-preserving JSON serialization for Go values.
//
// Plain JSON cannot represent timestamps, arbitrary-precision decimals,
// unordered collections, or user-defined objects without losing their type.
// serialx encodes such values inside a tagged wrapper so they survive a
// round trip through text:
//
//	{"__type__": "datetime", "__value__": "2024-01-01T00:00:00Z"}
//
// # Quick Start
//
//	codec, err := serialx.New(serialx.WithIndent(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := codec.Serialize(map[string]any{
//	    "name": "Maria",
//	    "ts":   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
//	})
//	// text contains a tagged wrapper for the "ts" field.
//
//	value, err := codec.Deserialize(text)
//	// value["ts"] is a time.Time again.
//
// # Supported Types
//
// Native values (nil, bool, string, numbers, sequences, string-keyed
// mappings) pass through structurally unchanged. Three special types carry
// built-in converters: time.Time, decimal.Decimal and serialx.Set. Any other
// value must either implement AttributeMapper or have a Converter registered
// with WithConverter; otherwise conversion fails with ErrUnconvertibleValue.
//
// # Round-Trip Contract
//
// Values of native or registered types deserialize back to an equal value
// under that type's equality: timestamps compare by instant, decimals by
// numeric value, sets by element membership. Custom objects without a
// registered backward converter degrade to a plain mapping of their
// attributes; the wrapper tag is dropped rather than failing the decode.
//
// Numbers are carried as json.Number end to end, so integer and decimal
// literals keep their exact textual form.
//
// # Concurrency
//
// A Codec holds only immutable state after construction. Serialize,
// Deserialize and ToDict may be called concurrently from multiple
// goroutines.
package serialx
