package seq

// Field declares one named projection in a Select. Value must be a pure
// function of the element.
type Field[T any] struct {
	Name  string
	Value func(T) any
}

// Row is an ordered name→value projection of one element. Field order is
// the order declared in the Select that produced the row, and is what
// table and CSV sinks use for column order.
type Row struct {
	columns []string
	values  []any
}

// NewRow builds a row directly. columns and values must have equal length;
// mismatched lengths are a programmer error and panic.
func NewRow(columns []string, values []any) Row {
	if len(columns) != len(values) {
		panic("seq: NewRow: column/value count mismatch")
	}
	return Row{columns: columns, values: values}
}

// Columns returns the field names in declared order.
func (r Row) Columns() []string { return r.columns }

// Values returns the cell values in declared order.
func (r Row) Values() []any { return r.values }

// Get returns the value of the named field. ok is false when the row has
// no such column; callers treat that as a bug in the query, not as data
// absence.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Select projects each element into a named row. The declared field order
// is preserved on every row. Lazy; each field's Value runs once per element
// at consumption time.
func Select[T any](s Seq[T], fields []Field[T]) Seq[Row] {
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return Map(s, func(v T) Row {
		values := make([]any, len(fields))
		for i, f := range fields {
			values[i] = f.Value(v)
		}
		return Row{columns: columns, values: values}
	})
}
