package serialx

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestToNativeScalars(t *testing.T) {
	sc := mustCodec(t).Converter()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "x", "x"},
		{"int", 42, json.Number("42")},
		{"int64", int64(-9007199254740993), json.Number("-9007199254740993")},
		{"uint64 above int64 range", uint64(18446744073709551615), json.Number("18446744073709551615")},
		{"float64", 0.5, json.Number("0.5")},
		{"json number passthrough", json.Number("1.000000000000000001"), json.Number("1.000000000000000001")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sc.ToNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToNativePointersAndTypedContainers(t *testing.T) {
	sc := mustCodec(t).Converter()

	t.Run("pointer dereference", func(t *testing.T) {
		n := 7
		got, err := sc.ToNative(&n)
		require.NoError(t, err)
		assert.Equal(t, json.Number("7"), got)
	})

	t.Run("nil typed pointer", func(t *testing.T) {
		var p *time.Time
		got, err := sc.ToNative(p)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("typed slice", func(t *testing.T) {
		got, err := sc.ToNative([]int{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []any{json.Number("1"), json.Number("2"), json.Number("3")}, got)
	})

	t.Run("typed map sorts keys", func(t *testing.T) {
		got, err := sc.ToNative(map[string]int{"b": 2, "a": 1})
		require.NoError(t, err)
		om := got.(*orderedmap.OrderedMap[string, any])
		assert.Equal(t, "a", om.Oldest().Key)
	})

	t.Run("non-string-keyed map is unconvertible", func(t *testing.T) {
		_, err := sc.ToNative(map[int]string{1: "a"})
		assert.ErrorIs(t, err, ErrUnconvertibleValue)
	})
}

func TestToNativeAcceptsOwnTreeForm(t *testing.T) {
	sc := mustCodec(t).Converter()

	t.Run("ordered mapping passes through structurally", func(t *testing.T) {
		om := orderedmap.New[string, any]()
		om.Set("b", json.Number("2"))
		om.Set("a", "one")

		got, err := sc.ToNative(om)
		require.NoError(t, err)

		out, ok := got.(*orderedmap.OrderedMap[string, any])
		require.True(t, ok, "expected an ordered mapping, got %T", got)
		assert.Equal(t, "b", out.Oldest().Key, "key order must survive")
		b, _ := out.Get("b")
		assert.Equal(t, json.Number("2"), b)
	})

	t.Run("empty ordered mapping", func(t *testing.T) {
		got, err := sc.ToNative(orderedmap.New[string, any]())
		require.NoError(t, err)
		out, ok := got.(*orderedmap.OrderedMap[string, any])
		require.True(t, ok)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("decoded tree converts back to text", func(t *testing.T) {
		c := mustCodec(t)
		back, err := c.Deserialize(`{"x":1,"y":[true,null]}`)
		require.NoError(t, err)
		_, err = c.ToDict(back)
		assert.NoError(t, err)
	})
}

type pointerUser struct {
	N int
}

func (u *pointerUser) TypeName() string { return "PointerUser" }

func (u *pointerUser) Attributes() map[string]any {
	return map[string]any{"n": u.N}
}

func TestToNativePointerReceiverAttributeMapper(t *testing.T) {
	sc := mustCodec(t).Converter()

	got, err := sc.ToNative(&pointerUser{N: 2})
	require.NoError(t, err)

	wrapper, ok := got.(*orderedmap.OrderedMap[string, any])
	require.True(t, ok)
	tag, _ := wrapper.Get(TagKey)
	assert.Equal(t, "PointerUser", tag)
	payload, hasDict := wrapper.Get(DictKey)
	require.True(t, hasDict)
	n, _ := payload.(*orderedmap.OrderedMap[string, any]).Get("n")
	assert.Equal(t, json.Number("2"), n)
}

func TestToNativeRejectsOpaqueValues(t *testing.T) {
	sc := mustCodec(t).Converter()

	_, err := sc.ToNative(func() {})
	assert.ErrorIs(t, err, ErrUnconvertibleValue)

	_, err = sc.ToNative(make(chan int))
	assert.ErrorIs(t, err, ErrUnconvertibleValue)

	// A struct without AttributeMapper is not silently introspected.
	_, err = sc.ToNative(struct{ A int }{A: 1})
	assert.ErrorIs(t, err, ErrUnconvertibleValue)
}

func TestReservedTagKeyCollision(t *testing.T) {
	sc := mustCodec(t).Converter()

	t.Run("plain mapping with tag key is rejected", func(t *testing.T) {
		_, err := sc.ToNative(map[string]any{TagKey: "NotARealWrapper", "other": 1})
		assert.ErrorIs(t, err, ErrAmbiguousTag)
	})

	t.Run("non-string tag is rejected", func(t *testing.T) {
		_, err := sc.ToNative(map[string]any{TagKey: 5, ValueKey: "x"})
		assert.ErrorIs(t, err, ErrAmbiguousTag)
	})

	t.Run("well-formed wrapper passes through", func(t *testing.T) {
		got, err := sc.ToNative(map[string]any{TagKey: "datetime", ValueKey: "2024-01-01T00:00:00Z"})
		require.NoError(t, err)
		om := got.(*orderedmap.OrderedMap[string, any])
		tag, _ := om.Get(TagKey)
		assert.Equal(t, "datetime", tag)
	})
}

func TestFromNativeTagReversal(t *testing.T) {
	sc := mustCodec(t).Converter()

	t.Run("registered tag reconstructs the value", func(t *testing.T) {
		got, err := sc.FromNative(wrapNative(TagDateTime, ValueKey, "2024-01-01T00:00:00Z"))
		require.NoError(t, err)
		require.IsType(t, time.Time{}, got)
	})

	t.Run("unknown tag with dict payload degrades", func(t *testing.T) {
		payload := orderedmap.New[string, any]()
		payload.Set("a", json.Number("1"))
		got, err := sc.FromNative(wrapNative("SomeForeignClass", DictKey, payload))
		require.NoError(t, err)
		m := got.(*orderedmap.OrderedMap[string, any])
		a, _ := m.Get("a")
		assert.Equal(t, json.Number("1"), a)
	})

	t.Run("unknown tag with value payload degrades", func(t *testing.T) {
		got, err := sc.FromNative(wrapNative("frozenset", ValueKey, []any{"a"}))
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, got)
	})

	t.Run("non-string tag fails", func(t *testing.T) {
		om := orderedmap.New[string, any]()
		om.Set(TagKey, json.Number("1"))
		_, err := sc.FromNative(om)
		assert.ErrorIs(t, err, ErrAmbiguousTag)
	})

	t.Run("tag without payload fails", func(t *testing.T) {
		om := orderedmap.New[string, any]()
		om.Set(TagKey, "mystery")
		_, err := sc.FromNative(om)
		assert.ErrorIs(t, err, ErrAmbiguousTag)
	})

	t.Run("registered tag with bad payload surfaces the converter error", func(t *testing.T) {
		_, err := sc.FromNative(wrapNative(TagDateTime, ValueKey, "not a timestamp"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "datetime")
	})

	t.Run("mapping without tag recurses untouched", func(t *testing.T) {
		om := orderedmap.New[string, any]()
		om.Set("inner", wrapNative(TagDecimal, ValueKey, "1.5"))
		got, err := sc.FromNative(om)
		require.NoError(t, err)
		inner, _ := got.(*orderedmap.OrderedMap[string, any]).Get("inner")
		assert.IsType(t, decimal.Decimal{}, inner)
	})
}

func TestNestedSpecialValues(t *testing.T) {
	c := mustCodec(t)

	v := map[string]any{
		"events": []any{
			map[string]any{"at": time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), "tags": NewSet("x")},
		},
	}
	text, err := c.Serialize(v)
	require.NoError(t, err)

	back, err := c.Deserialize(text)
	require.NoError(t, err)

	events, _ := back.(*orderedmap.OrderedMap[string, any]).Get("events")
	event := events.([]any)[0].(*orderedmap.OrderedMap[string, any])
	at, _ := event.Get("at")
	assert.IsType(t, time.Time{}, at)
	tags, _ := event.Get("tags")
	assert.True(t, tags.(Set).Contains("x"))
}
