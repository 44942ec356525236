package jsonq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLenient(t *testing.T) {
	// Comments, trailing commas and unquoted keys all appear in hand
	// maintained config files.
	v := Parse([]byte(`{
		// the feature block
		features: {
			enabled: true,
		},
	}`))
	require.True(t, v.Exists())
	on, ok := v.At(MustPath(".features.enabled")).AsBool()
	require.True(t, ok)
	assert.True(t, on)
}

func TestParseBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a": 1}`)...)
	v := Parse(data)
	require.True(t, v.Exists())
	assert.True(t, v.At(MustPath(".a")).Exists())
}

func TestParseMalformed(t *testing.T) {
	assert.False(t, Parse([]byte(`{"a": `)).Exists())
	assert.False(t, Parse(nil).Exists())
	assert.False(t, Parse([]byte("   ")).Exists())
}

func TestAsConversions(t *testing.T) {
	v := Parse([]byte(`{"s": "hi", "i": 3, "f": 2.5, "b": false, "n": null}`))

	s, ok := v.At(MustPath(".s")).AsString()
	require.True(t, ok)
	assert.Equal(t, "hi", s)

	i, ok := v.At(MustPath(".i")).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(3), i)

	f, ok := v.At(MustPath(".f")).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	// Numeric conversions cross representations.
	f, ok = v.At(MustPath(".i")).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)
	i, ok = v.At(MustPath(".f")).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(2), i)

	b, ok := v.At(MustPath(".b")).AsBool()
	require.True(t, ok)
	assert.False(t, b)

	_, ok = v.At(MustPath(".s")).AsInt()
	assert.False(t, ok)
}

func TestNullIsPresent(t *testing.T) {
	v := Parse([]byte(`{"a": null}`))
	at := v.At(MustPath(".a"))
	assert.True(t, at.Exists(), "an explicit null is present, unlike a missing key")
	assert.Nil(t, at.Data())
	assert.False(t, v.At(MustPath(".b")).Exists())
}

func TestEqual(t *testing.T) {
	v := Parse([]byte(`{"a": 1, "b": "x", "n": null}`))
	assert.True(t, v.At(MustPath(".a")).Equal(1))
	assert.True(t, v.At(MustPath(".a")).Equal(1.0))
	assert.True(t, v.At(MustPath(".b")).Equal("x"))
	assert.True(t, v.At(MustPath(".n")).Equal(nil))

	// Absence equals nothing, not even nil.
	assert.False(t, v.At(MustPath(".missing")).Equal(nil))
	assert.False(t, v.At(MustPath(".missing")).Equal(v.At(MustPath(".also_missing"))))
}

func TestEqualComposite(t *testing.T) {
	v := Parse([]byte(`{"tags": ["x", "y"], "obj": {"a": 1}}`))
	tags := v.At(MustPath(".tags"))

	assert.True(t, tags.Equal(tags))
	assert.True(t, tags.Equal([]any{"x", "y"}))
	assert.False(t, tags.Equal([]any{"x"}))
	assert.False(t, tags.Equal("x"))

	obj := v.At(MustPath(".obj"))
	assert.True(t, obj.Equal(obj))
	assert.False(t, obj.Equal(tags))
	assert.False(t, obj.Equal(map[string]any{}))

	// And the other direction: a scalar against a composite operand.
	assert.False(t, v.At(MustPath(".obj.a")).Equal([]any{1}))
}

func TestItems(t *testing.T) {
	v := Parse([]byte(`[1, 2, 3]`))
	assert.Len(t, v.Items(), 3)
	assert.Empty(t, Parse([]byte(`{"a": 1}`)).Items())
}

func TestQueryEscapeHatch(t *testing.T) {
	v := Parse([]byte(`{"users": [{"name": "ann", "admin": true}, {"name": "bob"}]}`))
	got, err := v.Query(`$.users[?@.admin == true].name`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	name, _ := got[0].AsString()
	assert.Equal(t, "ann", name)

	_, err = v.Query(`$[`)
	assert.Error(t, err)
}
