package appsight

import (
	"io"

	"github.com/jward/appsight/render"
	"github.com/jward/appsight/seq"
)

// Apps is a lazy view over records. Every combinator returns a new view;
// nothing is evaluated until a terminal operation (Collect, Len, First,
// Some, Every, Table, CSV) runs. Views are cheap to build and reusable.
type Apps struct {
	seq seq.Seq[*Record]
}

// FromRecords wraps an already materialized record slice.
func FromRecords(records []*Record) Apps {
	return Apps{seq: seq.FromSlice(records)}
}

// Seq exposes the underlying sequence for use with the seq combinators.
func (a Apps) Seq() seq.Seq[*Record] { return a.seq }

// Where keeps the records the predicate accepts.
func (a Apps) Where(pred func(*Record) bool) Apps {
	return Apps{seq: a.seq.Where(pred)}
}

// OrderBy sorts by a string key. Ordering is stable in both directions, so
// equal-key records keep their relative load order.
func (a Apps) OrderBy(key func(*Record) string, reverse bool) Apps {
	return Apps{seq: seq.OrderBy(a.seq, key, reverse)}
}

// OrderByFunc sorts with an arbitrary comparison, e.g. version.Order over
// a version attribute.
func (a Apps) OrderByFunc(cmp func(a, b *Record) int) Apps {
	return Apps{seq: a.seq.SortStableFunc(cmp)}
}

// Unique drops records whose env-org-app key was already seen.
func (a Apps) Unique() Apps {
	return Apps{seq: seq.UniqueBy(a.seq, (*Record).Key)}
}

// UniqueRepos keeps one record per org/app repository, regardless of how
// many environments it is deployed to. The first environment encountered
// wins.
func (a Apps) UniqueRepos() Apps {
	return Apps{seq: seq.UniqueBy(a.seq, (*Record).RepoKey)}
}

// Limit caps the view at n records.
func (a Apps) Limit(n int) Apps {
	return Apps{seq: a.seq.Limit(n)}
}

// Skip drops the first n records.
func (a Apps) Skip(n int) Apps {
	return Apps{seq: a.seq.Skip(n)}
}

// Some reports whether any record matches. Stops at the first match.
func (a Apps) Some(pred func(*Record) bool) bool {
	return a.seq.Some(pred)
}

// Every reports whether all records match. Stops at the first miss.
func (a Apps) Every(pred func(*Record) bool) bool {
	return a.seq.Every(pred)
}

// First returns the first record, if any.
func (a Apps) First() (*Record, bool) {
	return a.seq.First()
}

// IsNotEmpty reports whether the view holds at least one record.
func (a Apps) IsNotEmpty() bool {
	return a.seq.IsNotEmpty()
}

// Len counts the records. This consumes the pipeline.
func (a Apps) Len() int {
	return a.seq.Len()
}

// Collect materializes the view.
func (a Apps) Collect() []*Record {
	return a.seq.Collect()
}

// Select projects each record into a row of named fields.
func (a Apps) Select(fields ...seq.Field[*Record]) seq.Seq[seq.Row] {
	return seq.Select(a.seq, fields)
}

// GroupBy buckets the view by one or more fields, preserving first
// occurrence order of the composite keys. Key values bucket by their
// rendered string form, so values of different types that print
// identically land in the same group.
func (a Apps) GroupBy(fields ...seq.Field[*Record]) Groups {
	return newGroups(a.seq, fields)
}

// Table writes the selected fields as an aligned text table.
func (a Apps) Table(w io.Writer, fields ...seq.Field[*Record]) error {
	return render.Table(w, a.Select(fields...))
}

// CSV writes the selected fields as CSV. The header row is always
// written, even for an empty view.
func (a Apps) CSV(w io.Writer, fields ...seq.Field[*Record]) error {
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return render.CSV(w, columns, a.Select(fields...))
}
