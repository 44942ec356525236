// Package jsonq wraps JSON-like trees in an absence-tolerant Value and
// resolves declarative path expressions against them. Missing data is
// represented, never raised: a missing key, a failed parse or an empty file
// all yield the absent Value, and every lookup on an absent Value is itself
// absent. Only a structurally invalid path expression is an error, because
// that is a bug in the query rather than in the data.
package jsonq

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/sen"
	"github.com/theory/jsonpath"
)

// Value wraps one node of a JSON-like tree: map[string]any, []any, string,
// numeric, bool or nil. The zero value is absent. A present Value holding
// JSON null is distinct from the absent Value, and a stored false is
// distinct from both.
type Value struct {
	data    any
	present bool
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Parse decodes raw artifact bytes leniently: a UTF-8 BOM is stripped and
// comments and trailing commas are tolerated, since artifact JSON in the
// wild carries both. Empty or malformed input yields the absent Value:
// a bad artifact is a data problem, not an error.
func Parse(data []byte) Value {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}
	}
	v, err := sen.Parse(data)
	if err != nil {
		return Value{}
	}
	return Value{data: v, present: true}
}

// Wrap lifts an already-decoded tree into a present Value. Wrap(nil) is a
// present JSON null, not the absent Value.
func Wrap(data any) Value { return Value{data: data, present: true} }

// Exists reports whether the Value holds anything, including JSON null.
func (v Value) Exists() bool { return v.present }

// Data returns the underlying tree, nil when absent.
func (v Value) Data() any { return v.data }

func (v Value) String() string {
	if !v.present {
		return "<absent>"
	}
	return fmt.Sprintf("%v", v.data)
}

// AsString returns the value as a string; ok is false when absent or not a
// string.
func (v Value) AsString() (string, bool) {
	s, ok := v.data.(string)
	return s, v.present && ok
}

// AsInt returns the value as an int64, accepting any numeric representation
// the parser produces; ok is false when absent or non-numeric.
func (v Value) AsInt() (int64, bool) {
	if !v.present {
		return 0, false
	}
	switch n := v.data.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// AsFloat returns the value as a float64; ok is false when absent or
// non-numeric.
func (v Value) AsFloat() (float64, bool) {
	if !v.present {
		return 0, false
	}
	switch n := v.data.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// AsBool returns the value as a bool; ok is false when absent or not a
// bool. A stored false returns (false, true), which is how callers keep
// absence distinguishable from false.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, v.present && ok
}

// Items returns the elements of an array value; nil when absent or not an
// array.
func (v Value) Items() []Value {
	if !v.present {
		return nil
	}
	arr, ok := v.data.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, e := range arr {
		out[i] = Value{data: e, present: true}
	}
	return out
}

// Equal compares against other, unwrapping other when it is itself a Value.
// The absent Value equals nothing, including another absent Value; a
// present null equals nil. Numeric values compare across int/float
// representations. Arrays and objects compare structurally, element by
// element; Equal never panics, whatever the operand kinds.
func (v Value) Equal(other any) bool {
	if !v.present {
		return false
	}
	if ov, ok := other.(Value); ok {
		if !ov.present {
			return false
		}
		other = ov.data
	}
	if af, aok := v.AsFloat(); aok {
		if bf, bok := Wrap(other).AsFloat(); bok {
			return af == bf
		}
		return false
	}
	switch v.data.(type) {
	case []any, map[string]any:
		// Slices and maps are not ==-comparable; a deep compare keeps
		// equality total over everything Parse can produce.
		return reflect.DeepEqual(v.data, other)
	}
	return v.data == other
}

// Query evaluates an arbitrary RFC 9535 JSONPath expression against the
// value, for selections the segment path grammar cannot express (filters,
// recursive descent). An invalid expression is a programmer error and is
// returned as such; an absent receiver yields no matches, nil error.
func (v Value) Query(expr string) ([]Value, error) {
	p, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("jsonq: invalid jsonpath %q: %w", expr, err)
	}
	if !v.present {
		return nil, nil
	}
	nodes := p.Select(v.data)
	out := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Value{data: n, present: true})
	}
	return out, nil
}
