// Package render writes row sequences as tables, CSV files and charts.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jward/appsight/seq"
)

// Table writes rows as an aligned text table with a header line and a
// trailing count.
func Table(w io.Writer, rows seq.Seq[seq.Row]) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	count := 0
	for row := range rows.All() {
		if count == 0 {
			for i, col := range row.Columns() {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, col)
			}
			fmt.Fprintln(tw)
		}
		for i, v := range row.Values() {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatCell(v))
		}
		fmt.Fprintln(tw)
		count++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nCount: %d\n", count)
	return err
}

// CSV writes rows as CSV. The header is the declared column list and is
// written even when the sequence is empty, so downstream tooling always
// sees the selected fields.
func CSV(w io.Writer, columns []string, rows seq.Seq[seq.Row]) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for row := range rows.All() {
		record := make([]string, len(row.Values()))
		for i, v := range row.Values() {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
