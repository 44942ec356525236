// Package version parses and orders dotted version identifiers with an
// optional prerelease suffix, as found in frontend, backend and runtime
// framework version strings.
//
// Absent versions are first-class: a record with no discoverable version
// string carries the zero Version, and every relational predicate against
// it evaluates false. Sorting uses Order, which is a total order and
// therefore treats absence differently (absent sorts first).
package version

import (
	"regexp"
	"strconv"
	"strings"
)

var versionRE = regexp.MustCompile(`^(\d+)(\.(\d+))?(\.(\d+))?(-(.+))?$`)

// Version is an immutable parsed version identifier. The zero value is the
// absent version.
type Version struct {
	raw          string
	major        int
	minor, patch int
	hasMinor     bool
	hasPatch     bool
	pre          string
	ok           bool
}

// Parse never fails: input that does not look like a version (including the
// empty string) yields the absent Version. Accepted forms are MAJOR,
// MAJOR.MINOR, MAJOR.MINOR.PATCH and MAJOR.MINOR.PATCH-PRERELEASE.
//
// Component existence is preserved rather than zero-filled: Parse("4")
// remembers that minor and patch were not written, which is what makes the
// floating-literal comparison rule (see Compare) expressible.
func Parse(s string) Version {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{raw: s}
	}
	v := Version{raw: s, ok: true}
	v.major, _ = strconv.Atoi(m[1])
	if m[3] != "" {
		v.minor, _ = strconv.Atoi(m[3])
		v.hasMinor = true
	}
	if m[5] != "" {
		v.patch, _ = strconv.Atoi(m[5])
		v.hasPatch = true
	}
	v.pre = m[7]
	return v
}

// Exists reports whether a version was successfully parsed.
func (v Version) Exists() bool { return v.ok }

// String returns the original version string, or "" for the absent version.
func (v Version) String() string {
	if !v.ok {
		return ""
	}
	return v.raw
}

// Major returns the major component, or -1 when the version is absent.
// -1 cannot collide with a real component: components parse from digit-only
// text and are never negative. Guard with Exists to distinguish.
func (v Version) Major() int {
	if !v.ok {
		return -1
	}
	return v.major
}

// Minor returns the minor component, or -1 when the version is absent or
// the component was not written (Parse("4").Minor() == -1).
func (v Version) Minor() int {
	if !v.ok || !v.hasMinor {
		return -1
	}
	return v.minor
}

// Patch returns the patch component, or -1 when the version is absent or
// the component was not written.
func (v Version) Patch() int {
	if !v.ok || !v.hasPatch {
		return -1
	}
	return v.patch
}

// Prerelease returns the prerelease tag; ok is false when the version is
// absent or carries no tag.
func (v Version) Prerelease() (string, bool) {
	if !v.ok || v.pre == "" {
		return "", false
	}
	return v.pre, true
}

// IsPrerelease reports whether the version exists and carries a prerelease
// tag.
func (v Version) IsPrerelease() bool {
	_, ok := v.Prerelease()
	return ok
}

// Compare orders v against other. ok is false when either side is absent,
// in which case c is meaningless and every relational predicate built on
// Compare is false.
//
// Ordering is by (major, minor, patch) numerically, except that a component
// missing from one side compares greater than any concrete value on the
// other: "4" is the floating latest-4 tag, so "4" > "4.18.2". With equal
// numeric components, a prerelease orders strictly below the corresponding
// release, and two prerelease tags compare lexicographically.
func (v Version) Compare(other Version) (c int, ok bool) {
	if !v.ok || !other.ok {
		return 0, false
	}
	if v.major != other.major {
		return cmpInt(v.major, other.major), true
	}
	if c := cmpComponent(v.minor, v.hasMinor, other.minor, other.hasMinor); c != 0 {
		return c, true
	}
	if c := cmpComponent(v.patch, v.hasPatch, other.patch, other.hasPatch); c != 0 {
		return c, true
	}
	if v.pre != other.pre {
		switch {
		case v.pre == "":
			return 1, true
		case other.pre == "":
			return -1, true
		default:
			return strings.Compare(v.pre, other.pre), true
		}
	}
	return 0, true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpComponent compares one minor/patch pair. A missing component is
// greater than any present one; two missing components are equal.
func cmpComponent(a int, aok bool, b int, bok bool) int {
	switch {
	case aok && bok:
		return cmpInt(a, b)
	case !aok && bok:
		return 1
	case aok && !bok:
		return -1
	default:
		return 0
	}
}

// Equal reports raw string equality of two existing versions. Absent
// versions equal nothing, including each other. Note that "4" and "4.0"
// are not Equal even though Compare may order them adjacent: equality
// follows the written identifier, which is what makes `!v.Equals("4")`
// the "version is pinned" idiom.
func (v Version) Equal(other Version) bool {
	return v.ok && other.ok && v.raw == other.raw
}

// The string-literal predicates parse their operand with Parse, so partial
// literals keep the floating-component semantics described on Compare.
// All of them are false when the receiver is absent.

// Before reports v < lit.
func (v Version) Before(lit string) bool {
	c, ok := v.Compare(Parse(lit))
	return ok && c < 0
}

// AtMost reports v <= lit.
func (v Version) AtMost(lit string) bool {
	c, ok := v.Compare(Parse(lit))
	return ok && c <= 0
}

// After reports v > lit.
func (v Version) After(lit string) bool {
	c, ok := v.Compare(Parse(lit))
	return ok && c > 0
}

// AtLeast reports v >= lit.
func (v Version) AtLeast(lit string) bool {
	c, ok := v.Compare(Parse(lit))
	return ok && c >= 0
}

// Equals reports raw string equality with lit; false when v is absent.
func (v Version) Equals(lit string) bool {
	return v.Equal(Parse(lit))
}

// Order is a total ordering for sorts: absent versions sort first, two
// absent versions tie (stable sorts keep their input order), and existing
// versions order as Compare. Distinct from the relational predicates,
// which are all false against an absent version.
func Order(a, b Version) int {
	switch {
	case !a.ok && !b.ok:
		return 0
	case !a.ok:
		return -1
	case !b.ok:
		return 1
	}
	c, _ := a.Compare(b)
	return c
}
