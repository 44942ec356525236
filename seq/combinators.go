package seq

import (
	"cmp"
	"slices"
)

// Operators that introduce a new type parameter cannot be methods on Seq,
// so they live here as package functions.

// Map transforms each element with f, preserving order. Lazy.
func Map[T, R any](s Seq[T], f func(T) R) Seq[R] {
	return FromFunc(func(yield func(R) bool) {
		for v := range s.All() {
			if !yield(f(v)) {
				return
			}
		}
	})
}

// FlatMap maps each element to a sequence and flattens one level, preserving
// the relative order of outer then inner elements. Lazy.
func FlatMap[T, R any](s Seq[T], f func(T) Seq[R]) Seq[R] {
	return FromFunc(func(yield func(R) bool) {
		for v := range s.All() {
			for r := range f(v).All() {
				if !yield(r) {
					return
				}
			}
		}
	})
}

// OrderBy returns the elements sorted by key. The sort is stable: elements
// with equal keys keep their input order, so output is deterministic after a
// prior GroupBy. Each key is computed once per element. The upstream is
// materialized when the result is first consumed.
func OrderBy[T any, K cmp.Ordered](s Seq[T], key func(T) K, reverse bool) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		type keyed struct {
			k K
			v T
		}
		var items []keyed
		for v := range s.All() {
			items = append(items, keyed{k: key(v), v: v})
		}
		sortFn := func(a, b keyed) int {
			c := cmp.Compare(a.k, b.k)
			if reverse {
				c = -c
			}
			return c
		}
		slices.SortStableFunc(items, sortFn)
		for _, kv := range items {
			if !yield(kv.v) {
				return
			}
		}
	})
}

// Group is one bucket produced by GroupBy: a key and the sub-sequence of
// elements sharing it, in original order.
type Group[K comparable, T any] struct {
	Key   K
	Items Seq[T]
}

// GroupBy buckets elements by key. Group order is the order of first
// appearance of each distinct key; within-group order preserves the input
// order. The upstream is materialized when the result is first consumed.
func GroupBy[T any, K comparable](s Seq[T], key func(T) K) Seq[Group[K, T]] {
	return FromFunc(func(yield func(Group[K, T]) bool) {
		var order []K
		buckets := make(map[K][]T)
		for v := range s.All() {
			k := key(v)
			if _, seen := buckets[k]; !seen {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], v)
		}
		for _, k := range order {
			if !yield(Group[K, T]{Key: k, Items: FromSlice(buckets[k])}) {
				return
			}
		}
	})
}

// Unique drops elements equal to an earlier element, keeping the first
// occurrence. Streams, but retains the set of seen values.
func Unique[T comparable](s Seq[T]) Seq[T] {
	return UniqueBy(s, func(v T) T { return v })
}

// UniqueBy drops elements whose key equals an earlier element's key,
// keeping the first occurrence.
func UniqueBy[T any, K comparable](s Seq[T], key func(T) K) Seq[T] {
	return FromFunc(func(yield func(T) bool) {
		seen := make(map[K]struct{})
		for v := range s.All() {
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if !yield(v) {
				return
			}
		}
	})
}

// Reduce folds the sequence into a single value, left to right.
func Reduce[T, R any](s Seq[T], init R, f func(R, T) R) R {
	acc := init
	for v := range s.All() {
		acc = f(acc, v)
	}
	return acc
}
