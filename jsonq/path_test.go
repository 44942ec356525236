package jsonq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	p, err := ParsePath(".a.b")
	require.NoError(t, err)
	assert.Equal(t, ".a.b", p.String())
	assert.False(t, p.Wildcard())

	p, err = ParsePath(".a.[].b?")
	require.NoError(t, err)
	assert.True(t, p.Wildcard())

	_, err = ParsePath(`.["dotted.key"].x`)
	require.NoError(t, err)

	// Identity path.
	_, err = ParsePath(".")
	require.NoError(t, err)
}

func TestParsePathErrors(t *testing.T) {
	for _, expr := range []string{
		"a.b",        // missing leading dot
		"..a",        // empty segment
		".a.",        // trailing dot
		`.["open`,    // unterminated bracket
		`.[""]`,      // empty bracketed key
		".a.?",       // bare optional marker
	} {
		_, err := ParsePath(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestAtResolvesNesting(t *testing.T) {
	v := Parse([]byte(`{"a": {"b": {"c": 42}}}`))
	got, ok := v.At(MustPath(".a.b.c")).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(42), got)
}

func TestAtMissingIsAbsent(t *testing.T) {
	v := Parse([]byte(`{"a": 1}`))
	assert.False(t, v.At(MustPath(".nope")).Exists())
	assert.False(t, v.At(MustPath(".a.deeper")).Exists())
	assert.False(t, v.At(MustPath(".nope?")).Exists())

	// Wrong-kind parent: .a is a number, not an object.
	assert.False(t, v.At(MustPath(".a.b.c")).Exists())
}

func TestAllAtWildcard(t *testing.T) {
	v := Parse([]byte(`{"a": {"b": [1, 2, 3]}}`))
	matches := v.AllAt(MustPath(".a.b.[]?"))
	require.Len(t, matches, 3)
	n, _ := matches[1].AsInt()
	assert.Equal(t, int64(2), n)

	// Same path over a tree without the array.
	assert.Empty(t, Parse([]byte(`{}`)).AllAt(MustPath(".a.b.[]?")))
}

func TestAllAtNestedWildcards(t *testing.T) {
	v := Parse([]byte(`{"sets": [{"ids": ["a", "b"]}, {"ids": ["c"]}, {}]}`))
	matches := v.AllAt(MustPath(".sets.[].ids.[]"))
	require.Len(t, matches, 3)
	got := make([]string, len(matches))
	for i, m := range matches {
		got[i], _ = m.AsString()
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestWildcardOnNonArray(t *testing.T) {
	v := Parse([]byte(`{"a": {"k": 1}}`))
	assert.Empty(t, v.AllAt(MustPath(".a.[]")))
}

func TestBracketedKey(t *testing.T) {
	v := Parse([]byte(`{"feature.flags": {"on": true}}`))
	got, ok := v.At(MustPath(`.["feature.flags"].on`)).AsBool()
	require.True(t, ok)
	assert.True(t, got)
}

func TestAtOnAbsentValue(t *testing.T) {
	var absent Value
	assert.False(t, absent.At(MustPath(".a")).Exists())
	assert.Empty(t, absent.AllAt(MustPath(".a.[]")))
}
