package jsonq

import (
	"fmt"
	"strings"
)

// Path is a parsed path expression: an ordered list of segments, each a
// plain key, a bracketed literal key, or the [] wildcard, optionally marked
// with a trailing ?. A Path is validated once at construction and evaluated
// repeatedly without re-parsing.
//
// Grammar, informally:
//
//	path     = segment* ;
//	segment  = "." (key | "[\"" literal "\"]" | "[]") "?"? ;
//
// Plain keys run to the next "." and may not contain '.', '[', ']' or '?';
// keys containing dots use the bracketed literal form. "[]" expands every
// element of the array at that position. A trailing "?" marks the segment
// optional: absence of the key (or a parent of the wrong kind) yields an
// empty result for that branch instead of failing, though per the
// absence-not-error contract, the non-optional forms also resolve missing
// data to absence rather than raising. The marker is kept per segment so
// the two cases can diverge without a grammar change.
type Path struct {
	raw  string
	segs []segment
}

type segment struct {
	key      string
	wildcard bool
	optional bool
}

// ParsePath compiles a path expression. A structurally invalid expression
// is a programmer error, a bug in the query rather than in the data, and is
// reported immediately.
func ParsePath(expr string) (Path, error) {
	p := Path{raw: expr}
	rest := expr
	for len(rest) > 0 {
		if rest[0] != '.' {
			return Path{}, fmt.Errorf("jsonq: path %q: expected '.' at %q", expr, rest)
		}
		rest = rest[1:]
		if rest == "" {
			// Trailing "." on its own means the identity path only when it
			// is the whole expression.
			if expr == "." {
				return p, nil
			}
			return Path{}, fmt.Errorf("jsonq: path %q: trailing '.'", expr)
		}
		var seg segment
		switch {
		case strings.HasPrefix(rest, "[]"):
			seg.wildcard = true
			rest = rest[len("[]"):]
		case strings.HasPrefix(rest, `["`):
			end := strings.Index(rest[2:], `"]`)
			if end < 0 {
				return Path{}, fmt.Errorf("jsonq: path %q: unterminated bracketed key", expr)
			}
			seg.key = rest[2 : 2+end]
			if seg.key == "" {
				return Path{}, fmt.Errorf("jsonq: path %q: empty bracketed key", expr)
			}
			rest = rest[2+end+2:]
		default:
			n := strings.IndexAny(rest, ".[]?")
			if n == 0 {
				return Path{}, fmt.Errorf("jsonq: path %q: empty segment at %q", expr, rest)
			}
			if n < 0 {
				n = len(rest)
			}
			seg.key = rest[:n]
			rest = rest[n:]
		}
		if strings.HasPrefix(rest, "?") {
			seg.optional = true
			rest = rest[1:]
		}
		p.segs = append(p.segs, seg)
	}
	return p, nil
}

// MustPath is ParsePath for path literals; it panics on a syntax error.
func MustPath(expr string) Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.raw }

// Wildcard reports whether any segment is the [] expansion, i.e. whether
// AllAt can return more than one match per tree.
func (p Path) Wildcard() bool {
	for _, s := range p.segs {
		if s.wildcard {
			return true
		}
	}
	return false
}

// At resolves the path and returns the single (first, under wildcard
// expansion) matched value. Any non-optional missing segment yields the
// absent Value; nothing raises.
func (v Value) At(p Path) Value {
	all := v.AllAt(p)
	if len(all) == 0 {
		return Value{}
	}
	return all[0]
}

// AllAt resolves the path and returns every match, flattened in tree order.
// A path with no [] segments yields at most one match. Missing keys and
// wrong-kind parents contribute nothing; the result for a tree that has
// none of the path is an empty slice, never an error.
func (v Value) AllAt(p Path) []Value {
	if !v.present {
		return nil
	}
	current := []any{v.data}
	for _, seg := range p.segs {
		var next []any
		for _, node := range current {
			if seg.wildcard {
				if arr, ok := node.([]any); ok {
					next = append(next, arr...)
				}
				continue
			}
			if m, ok := node.(map[string]any); ok {
				if val, found := m[seg.key]; found {
					next = append(next, val)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	out := make([]Value, len(current))
	for i, d := range current {
		out[i] = Value{data: d, present: true}
	}
	return out
}
