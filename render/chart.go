package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jward/appsight/seq"
)

// Pie writes an HTML pie chart. Each slice is labeled by the joined label
// fields and sized by the value field. Rows missing a named field are an
// error, not a silent zero.
func Pie(w io.Writer, title string, rows seq.Seq[seq.Row], labelFields []string, valueField string) error {
	var items []opts.PieData
	for row := range rows.All() {
		label, value, err := sliceOf(row, labelFields, valueField)
		if err != nil {
			return err
		}
		items = append(items, opts.PieData{Name: label, Value: value})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	pie.AddSeries(title, items)
	return pie.Render(w)
}

// Bar writes an HTML bar chart with one bar per row.
func Bar(w io.Writer, title string, rows seq.Seq[seq.Row], labelFields []string, valueField string) error {
	var labels []string
	var items []opts.BarData
	for row := range rows.All() {
		label, value, err := sliceOf(row, labelFields, valueField)
		if err != nil {
			return err
		}
		labels = append(labels, label)
		items = append(items, opts.BarData{Value: value})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
	bar.SetXAxis(labels).AddSeries(title, items)
	return bar.Render(w)
}

func sliceOf(row seq.Row, labelFields []string, valueField string) (string, float64, error) {
	parts := make([]string, len(labelFields))
	for i, f := range labelFields {
		v, ok := row.Get(f)
		if !ok {
			return "", 0, fmt.Errorf("chart label field %q not in row columns %v", f, row.Columns())
		}
		parts[i] = formatCell(v)
	}
	raw, ok := row.Get(valueField)
	if !ok {
		return "", 0, fmt.Errorf("chart value field %q not in row columns %v", valueField, row.Columns())
	}
	value, ok := asNumber(raw)
	if !ok {
		return "", 0, fmt.Errorf("chart value field %q is not numeric: %v", valueField, raw)
	}
	return strings.Join(parts, "/"), value, nil
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
