// Package seq provides lazy, composable sequence combinators over ordered
// collections. A Seq is a read-only view: operators never mutate the source
// and each returns a new Seq. Consuming the same Seq twice re-runs the
// upstream computation; there is no implicit caching. Callers that need
// reuse should call Collect once and build new Seqs from the slice.
//
// Most operators are lazy. The exceptions, which materialize the upstream
// into memory when the result is first consumed, are OrderBy, SortStableFunc,
// GroupBy, Len and Collect. Unique and UniqueBy stream, but retain a set of
// seen keys while doing so.
package seq

import (
	"iter"
	"slices"
)

// Seq is an ordered, possibly-lazy view over elements of type T.
// The zero value is an empty sequence.
type Seq[T any] struct {
	it iter.Seq[T]
}

// From builds a Seq from the given elements.
func From[T any](items ...T) Seq[T] { return FromSlice(items) }

// FromSlice builds a Seq that iterates s. The slice is not copied; it must
// not be mutated while the Seq is in use.
func FromSlice[T any](s []T) Seq[T] {
	return Seq[T]{it: func(yield func(T) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}}
}

// FromFunc wraps a range-over-func iterator.
func FromFunc[T any](it iter.Seq[T]) Seq[T] {
	return Seq[T]{it: it}
}

// All exposes the sequence for range-over-func consumption.
func (s Seq[T]) All() iter.Seq[T] {
	if s.it == nil {
		return func(func(T) bool) {}
	}
	return s.it
}

// Where keeps elements satisfying pred, preserving order. Lazy.
func (s Seq[T]) Where(pred func(T) bool) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		for v := range s.All() {
			if pred(v) && !yield(v) {
				return
			}
		}
	})
}

// Filter is a synonym for Where, conventionally used on non-record element
// types such as components within a record.
func (s Seq[T]) Filter(pred func(T) bool) Seq[T] { return s.Where(pred) }

// Limit truncates the sequence to its first n elements. Lazy.
func (s Seq[T]) Limit(n int) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		count := 0
		for v := range s.All() {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	})
}

// Skip drops the first n elements. Lazy.
func (s Seq[T]) Skip(n int) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		count := 0
		for v := range s.All() {
			if count < n {
				count++
				continue
			}
			if !yield(v) {
				return
			}
		}
	})
}

// Some reports whether any element satisfies pred. Short-circuits on the
// first match; false for an empty sequence.
func (s Seq[T]) Some(pred func(T) bool) bool {
	for v := range s.All() {
		if pred(v) {
			return true
		}
	}
	return false
}

// Every reports whether all elements satisfy pred. Short-circuits on the
// first failure; true for an empty sequence.
func (s Seq[T]) Every(pred func(T) bool) bool {
	for v := range s.All() {
		if !pred(v) {
			return false
		}
	}
	return true
}

// First returns the first element, or ok=false if the sequence is empty.
func (s Seq[T]) First() (T, bool) {
	for v := range s.All() {
		return v, true
	}
	var zero T
	return zero, false
}

// IsNotEmpty reports whether the sequence has at least one element,
// pulling at most one element from the source.
func (s Seq[T]) IsNotEmpty() bool {
	_, ok := s.First()
	return ok
}

// Len consumes the sequence and returns its element count. Eager.
func (s Seq[T]) Len() int {
	n := 0
	for range s.All() {
		n++
	}
	return n
}

// Collect consumes the sequence into a slice. Eager.
func (s Seq[T]) Collect() []T {
	var out []T
	for v := range s.All() {
		out = append(out, v)
	}
	return out
}

// SortStableFunc returns the elements sorted by cmp; elements comparing
// equal keep their input order. The upstream is materialized when the
// result is first consumed, not when SortStableFunc is called.
func (s Seq[T]) SortStableFunc(cmp func(a, b T) int) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		items := s.Collect()
		slices.SortStableFunc(items, cmp)
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	})
}
