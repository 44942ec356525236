package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/appsight"
	"github.com/jward/appsight/internal/runtime"
	"github.com/jward/appsight/seq"
)

var (
	flagWhere       string
	flagSelect      []string
	flagGroupBy     []string
	flagOrderBy     string
	flagReverse     bool
	flagLimit       int
	flagUniqueRepos bool
	flagFormat      string
	flagOut         string
	flagPie         bool
	flagTitle       string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter, project and group the loaded apps",
	Long: `Filter, project and group the loaded apps.

Filters and computed fields are Risor expressions evaluated per app with
an 'app' global, e.g.:

  appsight query --where 'app["env"] == "prod"' --select org,app,frontend_version
  appsight query --group-by frontend_major --pie --out majors.html

Plain field names (org, app, env, frontend_version, ...) resolve directly;
anything else is treated as an expression.`,
	RunE: runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.StringVar(&flagWhere, "where", "", "filter expression")
	f.StringSliceVar(&flagSelect, "select", nil, "fields or expressions to output")
	f.StringSliceVar(&flagGroupBy, "group-by", nil, "fields or expressions to group by")
	f.StringVar(&flagOrderBy, "order-by", "", "field or expression to sort by")
	f.BoolVar(&flagReverse, "reverse", false, "sort descending")
	f.IntVar(&flagLimit, "limit", 0, "cap the output at this many rows (0 = all)")
	f.BoolVar(&flagUniqueRepos, "unique-repos", false, "one row per org/app repository")
	f.StringVar(&flagFormat, "format", "table", "output format: table or csv")
	f.StringVar(&flagOut, "out", "", "write output to this file instead of stdout")
	f.BoolVar(&flagPie, "pie", false, "render grouped output as an HTML pie chart")
	f.StringVar(&flagTitle, "title", "apps", "chart title")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if flagPie && len(flagGroupBy) == 0 {
		return fmt.Errorf("--pie requires --group-by")
	}
	if flagFormat != "table" && flagFormat != "csv" {
		return fmt.Errorf("unknown format %q (want table or csv)", flagFormat)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	apps := s.Apps()
	if flagWhere != "" {
		apps = apps.Where(predicate(ctx, flagWhere))
	}
	if flagUniqueRepos {
		apps = apps.UniqueRepos()
	}
	if flagOrderBy != "" {
		apps = orderedBy(apps, resolveField(ctx, flagOrderBy), flagReverse)
	}

	out, closeOut, err := outputWriter()
	if err != nil {
		return err
	}
	defer closeOut()

	if len(flagGroupBy) > 0 {
		return runGrouped(ctx, apps, out)
	}

	if flagLimit > 0 {
		apps = apps.Limit(flagLimit)
	}
	fields := resolveFields(ctx, flagSelect)
	if flagFormat == "csv" {
		return apps.CSV(out, fields...)
	}
	return apps.Table(out, fields...)
}

func runGrouped(ctx context.Context, apps appsight.Apps, out io.Writer) error {
	groups := apps.GroupBy(resolveFields(ctx, flagGroupBy)...)
	if flagOrderBy == "" {
		groups = groups.OrderByCount(true)
	}
	if flagLimit > 0 {
		groups = groups.Limit(flagLimit)
	}
	switch {
	case flagPie:
		return groups.Pie(out, flagTitle)
	case flagFormat == "csv":
		return groups.CSV(out, appsight.Count())
	default:
		return groups.Table(out, appsight.Count())
	}
}

func outputWriter() (io.Writer, func(), error) {
	if flagOut == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", flagOut, err)
	}
	return f, func() { f.Close() }, nil
}

// orderedBy sorts stably by a field's value: numerically when both values
// are numeric, by string rendering otherwise. A plain string sort would
// put a major version of 10 before 9.
func orderedBy(apps appsight.Apps, key seq.Field[*appsight.Record], reverse bool) appsight.Apps {
	return apps.OrderByFunc(func(a, b *appsight.Record) int {
		c := compareValues(key.Value(a), key.Value(b))
		if reverse {
			c = -c
		}
		return c
	})
}

func compareValues(a, b any) int {
	if af, aok := asNumber(a); aok {
		if bf, bok := asNumber(b); bok {
			return cmp.Compare(af, bf)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// predicate wraps an expression as a record filter. An expression that
// fails on a record excludes it; the failure is logged once per record.
func predicate(ctx context.Context, expr string) func(*appsight.Record) bool {
	return func(r *appsight.Record) bool {
		ok, err := runtime.EvalPredicate(ctx, expr, r)
		if err != nil {
			log.Printf("warning: %s: %v", r.Key(), err)
			return false
		}
		return ok
	}
}

func resolveFields(ctx context.Context, names []string) []seq.Field[*appsight.Record] {
	if len(names) == 0 {
		names = []string{"env", "org", "app", "frontend_version", "backend_version"}
	}
	fields := make([]seq.Field[*appsight.Record], len(names))
	for i, name := range names {
		fields[i] = resolveField(ctx, name)
	}
	return fields
}

// resolveField maps a standard field name to its accessor, and anything
// else to a per-record expression evaluation.
func resolveField(ctx context.Context, name string) seq.Field[*appsight.Record] {
	if f, ok := appsight.FieldByName(name); ok {
		return f
	}
	return appsight.F(name, func(r *appsight.Record) any {
		v, err := runtime.EvalValue(ctx, name, r)
		if err != nil {
			log.Printf("warning: %s: %v", r.Key(), err)
			return nil
		}
		return v
	})
}
