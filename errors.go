package serialx

import (
	"errors"
	"fmt"
)

var (
	// Conversion errors
	ErrUnconvertibleValue = errors.New("value cannot be converted to a native form")
	ErrAmbiguousTag       = errors.New("ambiguous use of reserved tag key")
	ErrDepthExceeded      = errors.New("maximum nesting depth exceeded")

	// Text codec errors
	ErrMalformedText = errors.New("malformed input text")
	ErrEncoding      = errors.New("native tree contains an unencodable value")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNilPointer           = errors.New("nil pointer encountered")
)

func NewUnconvertibleValueError(value any) error {
	return fmt.Errorf("%w: type %T has no native, registered, or attribute-mapping form", ErrUnconvertibleValue, value)
}

func NewAmbiguousTagError(detail string) error {
	return fmt.Errorf("%w: %s", ErrAmbiguousTag, detail)
}

func NewDepthExceededError(limit int) error {
	return fmt.Errorf("%w: input nests deeper than %d levels", ErrDepthExceeded, limit)
}

// IsInputError returns true if the error was caused by the caller's input
// rather than by a defect in the codec. Transport layers typically map these
// to client-error responses.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnconvertibleValue) ||
		errors.Is(err, ErrAmbiguousTag) ||
		errors.Is(err, ErrMalformedText) ||
		errors.Is(err, ErrDepthExceeded)
}

// IsDefectError returns true if the error indicates an internal invariant
// violation. These should not occur in normal operation.
func IsDefectError(err error) bool {
	return errors.Is(err, ErrEncoding)
}

// IsConfigurationError returns true if the error represents a configuration
// problem detected while constructing a codec.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrNilPointer)
}
