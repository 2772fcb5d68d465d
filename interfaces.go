package serialx

// AttributeMapper is the explicit opt-in for custom object conversion.
//
// A value implementing this interface serializes to a tagged wrapper
// carrying its type name and its attributes as a nested mapping:
//
//	{"__type__": "<TypeName>", "__dict__": {...attributes...}}
//
// Deserialization of such a wrapper degrades to the plain attribute mapping
// unless a Converter with a Backward function is registered under the same
// type name. Values that are neither native, registered, nor
// AttributeMappers fail conversion with ErrUnconvertibleValue.
type AttributeMapper interface {
	// TypeName returns the tag written into the wrapper. It should be
	// stable across versions; changing it breaks previously serialized
	// text.
	TypeName() string

	// Attributes returns the object's state as a name-to-value mapping.
	// Values are converted recursively and must themselves be
	// convertible.
	Attributes() map[string]any
}
