package serialx

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultMaxDepth bounds the recursive tree walk. Inputs nesting deeper than
// this fail with ErrDepthExceeded instead of exhausting the stack.
const DefaultMaxDepth = 1000

// StructuralConverter performs the bidirectional conversion between
// arbitrary values and JSON-representable trees. Tree mappings are
// insertion-ordered (*orderedmap.OrderedMap[string, any]) so that key order
// survives a round trip; numbers are carried as json.Number.
//
// A StructuralConverter is immutable and safe for concurrent use.
type StructuralConverter struct {
	registry *Registry
	maxDepth int
}

// ToNative converts a value into a JSON-representable tree, substituting
// tagged wrappers for special and custom values.
func (sc *StructuralConverter) ToNative(value any) (any, error) {
	return sc.toNative(value, 0)
}

// FromNative reverses ToNative: tagged wrappers with a registered backward
// converter are reconstructed; wrappers with an unknown tag degrade to their
// payload mapping.
func (sc *StructuralConverter) FromNative(tree any) (any, error) {
	return sc.fromNative(tree, 0)
}

func (sc *StructuralConverter) toNative(value any, depth int) (any, error) {
	if depth > sc.maxDepth {
		return nil, NewDepthExceededError(sc.maxDepth)
	}
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case bool, string, json.Number:
		return v, nil
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(v), 'g', -1, 32)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}

	// The tree's own mapping type is a pointer; it must be handled before
	// the dereference loop below strips it down to an unhandled struct.
	if om, ok := value.(*orderedmap.OrderedMap[string, any]); ok {
		out := orderedmap.New[string, any]()
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			if err := sc.checkReservedKey(om, pair.Key); err != nil {
				return nil, err
			}
			conv, err := sc.toNative(pair.Value, depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, conv)
		}
		return out, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		// Stop when the pointer type itself is convertible: a registered
		// pointer prototype or a pointer-receiver AttributeMapper.
		if _, _, ok := sc.registry.lookupType(rv.Type()); ok {
			break
		}
		if _, ok := value.(AttributeMapper); ok {
			break
		}
		rv = rv.Elem()
		value = rv.Interface()
	}

	// Registered special types take precedence over generic container and
	// custom-object handling.
	if name, conv, ok := sc.registry.lookupType(rv.Type()); ok && conv.Forward != nil {
		payload, err := conv.Forward(value)
		if err != nil {
			return nil, fmt.Errorf("convert %q value: %w", name, err)
		}
		native, err := sc.toNative(payload, depth+1)
		if err != nil {
			return nil, err
		}
		return wrapNative(name, ValueKey, native), nil
	}

	switch v := value.(type) {
	case map[string]any:
		// Go map iteration order is undefined; sort for determinism.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := orderedmap.New[string, any]()
		for _, k := range keys {
			if err := sc.checkReservedKeyPlain(v, k); err != nil {
				return nil, err
			}
			conv, err := sc.toNative(v[k], depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(k, conv)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			conv, err := sc.toNative(elem, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}

	if mapper, ok := value.(AttributeMapper); ok {
		return sc.mapperToNative(mapper, depth)
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			conv, err := sc.toNative(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, NewUnconvertibleValueError(value)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := orderedmap.New[string, any]()
		for _, k := range keys {
			conv, err := sc.toNative(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(k, conv)
		}
		return out, nil
	}

	return nil, NewUnconvertibleValueError(value)
}

func (sc *StructuralConverter) mapperToNative(mapper AttributeMapper, depth int) (any, error) {
	name := mapper.TypeName()
	if name == "" {
		return nil, fmt.Errorf("%w: %T returned an empty type name", ErrUnconvertibleValue, mapper)
	}
	attrs, err := sc.toNative(mapper.Attributes(), depth+1)
	if err != nil {
		return nil, err
	}
	return wrapNative(name, DictKey, attrs), nil
}

// checkReservedKey rejects user mappings that carry the reserved tag key
// unless the mapping is itself a well-formed wrapper (exactly a string tag
// plus one payload field), which keeps ToNative idempotent on its own
// output. Anything else would decode ambiguously, so it is refused up front.
func (sc *StructuralConverter) checkReservedKey(m *orderedmap.OrderedMap[string, any], key string) error {
	if key != TagKey {
		return nil
	}
	rawTag, _ := m.Get(TagKey)
	if _, ok := rawTag.(string); ok && m.Len() == 2 {
		if _, hasValue := m.Get(ValueKey); hasValue {
			return nil
		}
		if _, hasDict := m.Get(DictKey); hasDict {
			return nil
		}
	}
	return NewAmbiguousTagError(fmt.Sprintf("mapping uses reserved key %q but is not a well-formed wrapper", TagKey))
}

func (sc *StructuralConverter) checkReservedKeyPlain(m map[string]any, key string) error {
	if key != TagKey {
		return nil
	}
	if _, ok := m[TagKey].(string); ok && len(m) == 2 {
		if _, hasValue := m[ValueKey]; hasValue {
			return nil
		}
		if _, hasDict := m[DictKey]; hasDict {
			return nil
		}
	}
	return NewAmbiguousTagError(fmt.Sprintf("mapping uses reserved key %q but is not a well-formed wrapper", TagKey))
}

func (sc *StructuralConverter) fromNative(tree any, depth int) (any, error) {
	if depth > sc.maxDepth {
		return nil, NewDepthExceededError(sc.maxDepth)
	}

	switch t := tree.(type) {
	case *orderedmap.OrderedMap[string, any]:
		if rawTag, tagged := t.Get(TagKey); tagged {
			return sc.unwrap(t, rawTag, depth)
		}
		out := orderedmap.New[string, any]()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			conv, err := sc.fromNative(pair.Value, depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, conv)
		}
		return out, nil
	case map[string]any:
		// Trees built by callers rather than the decoder.
		om := orderedmap.New[string, any]()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			om.Set(k, t[k])
		}
		return sc.fromNative(om, depth)
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			conv, err := sc.fromNative(elem, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	default:
		return tree, nil
	}
}

func (sc *StructuralConverter) unwrap(t *orderedmap.OrderedMap[string, any], rawTag any, depth int) (any, error) {
	tag, ok := rawTag.(string)
	if !ok {
		return nil, NewAmbiguousTagError(fmt.Sprintf("tag key %q holds %T, want string", TagKey, rawTag))
	}

	if conv, known := sc.registry.lookupName(tag); known && conv.Backward != nil {
		payload, hasPayload := t.Get(ValueKey)
		if !hasPayload {
			// A registered tag written the custom-object way still
			// degrades to its attribute mapping.
			if dict, hasDict := t.Get(DictKey); hasDict {
				return sc.fromNative(dict, depth+1)
			}
			return nil, NewAmbiguousTagError(fmt.Sprintf("tag %q is missing its %q payload", tag, ValueKey))
		}
		native, err := sc.fromNative(payload, depth+1)
		if err != nil {
			return nil, err
		}
		value, err := conv.Backward(native)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %q value: %w", tag, err)
		}
		return value, nil
	}

	// Unknown tag: degrade to the payload rather than failing, so text
	// written by processes with a richer registry still decodes.
	if dict, hasDict := t.Get(DictKey); hasDict {
		return sc.fromNative(dict, depth+1)
	}
	if payload, hasPayload := t.Get(ValueKey); hasPayload {
		return sc.fromNative(payload, depth+1)
	}
	return nil, NewAmbiguousTagError(fmt.Sprintf("tag %q has no payload field", tag))
}

func wrapNative(tag, payloadKey string, payload any) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()
	om.Set(TagKey, tag)
	om.Set(payloadKey, payload)
	return om
}
