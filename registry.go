package serialx

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Wire format constants. These are the stable contract with previously
// serialized text; changing any of them breaks compatibility.
const (
	// TagKey marks a mapping as a tagged wrapper and names the original type.
	TagKey = "__type__"
	// ValueKey holds the payload of a registered special type.
	ValueKey = "__value__"
	// DictKey holds the attribute mapping of a custom object.
	DictKey = "__dict__"
)

// Built-in type tags.
const (
	TagDateTime = "datetime"
	TagDecimal  = "decimal"
	TagSet      = "set"
)

// Converter is a pair of functions turning a value into its native payload
// and back. Forward may be nil for a reconstruction-only entry (a tag that
// is never produced by this process but should be recognized on decode);
// Backward may be nil for a lossy forward-only entry.
type Converter struct {
	Forward  func(value any) (any, error)
	Backward func(payload any) (any, error)
}

// Registry maps type identities to converters. It is populated when a codec
// is constructed and never mutated afterwards, which is what makes a codec
// safe for concurrent use.
type Registry struct {
	byName map[string]Converter
	byType map[reflect.Type]string
}

func newRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Converter),
		byType: make(map[reflect.Type]string),
	}
	// Built-in entries mirror the wire format's special types.
	r.byName[TagDateTime] = Converter{Forward: dateTimeForward, Backward: dateTimeBackward}
	r.byType[reflect.TypeOf(time.Time{})] = TagDateTime
	r.byName[TagDecimal] = Converter{Forward: decimalForward, Backward: decimalBackward}
	r.byType[reflect.TypeOf(decimal.Decimal{})] = TagDecimal
	r.byName[TagSet] = Converter{Forward: setForward, Backward: setBackward}
	r.byType[reflect.TypeOf(Set{})] = TagSet
	return r
}

// register adds an entry during codec construction. prototype may be nil for
// a backward-only entry that has no forward type identity.
func (r *Registry) register(name string, prototype any, conv Converter) error {
	if name == "" {
		return fmt.Errorf("converter name must not be empty")
	}
	if conv.Forward == nil && conv.Backward == nil {
		return fmt.Errorf("converter %q has neither forward nor backward function", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("converter %q is already registered", name)
	}
	if prototype != nil {
		if conv.Forward == nil {
			return fmt.Errorf("converter %q has a prototype but no forward function", name)
		}
		t := reflect.TypeOf(prototype)
		if existing, exists := r.byType[t]; exists {
			return fmt.Errorf("type %s is already handled by converter %q", t, existing)
		}
		r.byType[t] = name
	}
	r.byName[name] = conv
	return nil
}

func (r *Registry) lookupType(t reflect.Type) (string, Converter, bool) {
	name, ok := r.byType[t]
	if !ok {
		return "", Converter{}, false
	}
	return name, r.byName[name], true
}

func (r *Registry) lookupName(name string) (Converter, bool) {
	conv, ok := r.byName[name]
	return conv, ok
}

func dateTimeForward(value any) (any, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected time.Time, got %T", value)
	}
	return t.Format(time.RFC3339Nano), nil
}

func dateTimeBackward(payload any) (any, error) {
	s, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("datetime payload must be a string, got %T", payload)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("parse datetime payload: %w", err)
	}
	return t, nil
}

func decimalForward(value any) (any, error) {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil, fmt.Errorf("expected decimal.Decimal, got %T", value)
	}
	return d.String(), nil
}

func decimalBackward(payload any) (any, error) {
	s, ok := payload.(string)
	if !ok {
		return nil, fmt.Errorf("decimal payload must be a string, got %T", payload)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse decimal payload: %w", err)
	}
	return d, nil
}

// setForward lists the elements sorted by their printed form so the encoded
// text is deterministic even though the set itself is unordered.
func setForward(value any) (any, error) {
	s, ok := value.(Set)
	if !ok {
		return nil, fmt.Errorf("expected serialx.Set, got %T", value)
	}
	elems := s.Elements()
	sort.Slice(elems, func(i, j int) bool {
		return fmt.Sprint(elems[i]) < fmt.Sprint(elems[j])
	})
	return elems, nil
}

func setBackward(payload any) (any, error) {
	elems, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("set payload must be a sequence, got %T", payload)
	}
	s := make(Set, len(elems))
	for _, e := range elems {
		if err := s.Add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}
