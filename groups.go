package appsight

import (
	"fmt"
	"io"
	"strings"

	"github.com/jward/appsight/render"
	"github.com/jward/appsight/seq"
)

// Group is one bucket produced by Apps.GroupBy: the field values that key
// the bucket plus a view over its records.
type Group struct {
	names  []string
	values []any
	Apps   Apps
}

// Names returns the grouping field names.
func (g Group) Names() []string { return g.names }

// Values returns the key values, aligned with Names.
func (g Group) Values() []any { return g.values }

// Value returns the key value for a named field.
func (g Group) Value(name string) (any, bool) {
	for i, n := range g.names {
		if n == name {
			return g.values[i], true
		}
	}
	return nil, false
}

// Key renders the composite key for display.
func (g Group) Key() string {
	parts := make([]string, len(g.values))
	for i, v := range g.values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "/")
}

// Groups is a lazy view over grouped records.
type Groups struct {
	seq   seq.Seq[Group]
	names []string
}

// Field values are not generally comparable, so composite keys are encoded
// as unit-separated strings of each value's rendered form. The original
// values ride along per bucket.
const keySep = "\x1f"

func newGroups(records seq.Seq[*Record], fields []seq.Field[*Record]) Groups {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	type keyed struct {
		rec    *Record
		values []any
	}
	withKeys := seq.Map(records, func(r *Record) keyed {
		values := make([]any, len(fields))
		for i, f := range fields {
			values[i] = f.Value(r)
		}
		return keyed{rec: r, values: values}
	})

	buckets := seq.GroupBy(withKeys, func(k keyed) string {
		parts := make([]string, len(k.values))
		for i, v := range k.values {
			parts[i] = fmt.Sprint(v)
		}
		return strings.Join(parts, keySep)
	})

	groups := seq.Map(buckets, func(b seq.Group[string, keyed]) Group {
		items := b.Items.Collect()
		records := make([]*Record, len(items))
		for i, k := range items {
			records[i] = k.rec
		}
		return Group{
			names:  names,
			values: items[0].values,
			Apps:   FromRecords(records),
		}
	})

	return Groups{seq: groups, names: names}
}

// Agg computes one summary value per group.
type Agg struct {
	Name  string
	Value func(Apps) any
}

// Count is the record count aggregate.
func Count() Agg {
	return Agg{Name: "count", Value: func(a Apps) any { return a.Len() }}
}

// CountWhere counts the records in each group matching the predicate.
func CountWhere(name string, pred func(*Record) bool) Agg {
	return Agg{Name: name, Value: func(a Apps) any { return a.Where(pred).Len() }}
}

// Where keeps the groups the predicate accepts.
func (g Groups) Where(pred func(Group) bool) Groups {
	return Groups{seq: g.seq.Where(pred), names: g.names}
}

// OrderBy sorts groups by a string key, stably.
func (g Groups) OrderBy(key func(Group) string, reverse bool) Groups {
	return Groups{seq: seq.OrderBy(g.seq, key, reverse), names: g.names}
}

// OrderByCount sorts groups by size, biggest first when reverse is set.
func (g Groups) OrderByCount(reverse bool) Groups {
	return Groups{seq: seq.OrderBy(g.seq, func(gr Group) int { return gr.Apps.Len() }, reverse), names: g.names}
}

// Limit caps the view at n groups.
func (g Groups) Limit(n int) Groups {
	return Groups{seq: g.seq.Limit(n), names: g.names}
}

// Len counts the groups.
func (g Groups) Len() int { return g.seq.Len() }

// Collect materializes the groups.
func (g Groups) Collect() []Group { return g.seq.Collect() }

// Select projects each group into a row: the key fields first, then one
// column per aggregate.
func (g Groups) Select(aggs ...Agg) seq.Seq[seq.Row] {
	columns := make([]string, 0, len(g.names)+len(aggs))
	columns = append(columns, g.names...)
	for _, a := range aggs {
		columns = append(columns, a.Name)
	}
	return seq.Map(g.seq, func(gr Group) seq.Row {
		values := make([]any, 0, len(columns))
		values = append(values, gr.values...)
		for _, a := range aggs {
			values = append(values, a.Value(gr.Apps))
		}
		return seq.NewRow(columns, values)
	})
}

// Table writes the groups as an aligned text table.
func (g Groups) Table(w io.Writer, aggs ...Agg) error {
	return render.Table(w, g.Select(aggs...))
}

// CSV writes the groups as CSV. The header row is always written, even
// when no groups remain.
func (g Groups) CSV(w io.Writer, aggs ...Agg) error {
	columns := make([]string, 0, len(g.names)+len(aggs))
	columns = append(columns, g.names...)
	for _, a := range aggs {
		columns = append(columns, a.Name)
	}
	return render.CSV(w, columns, g.Select(aggs...))
}

// Pie writes an HTML pie chart of group sizes, labeled by the composite key.
func (g Groups) Pie(w io.Writer, title string) error {
	rows := seq.Map(g.seq, func(gr Group) seq.Row {
		return seq.NewRow(
			[]string{"label", "value"},
			[]any{gr.Key(), gr.Apps.Len()},
		)
	})
	return render.Pie(w, title, rows, []string{"label"}, "value")
}
