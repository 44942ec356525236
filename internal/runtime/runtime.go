// Package runtime evaluates query expressions against corpus records.
//
// Expressions are Risor scripts. Each record is exposed as an `app` global
// holding plain values, so scripts read like `app["org"] == "ttd" &&
// version_at_least(app["frontend_version"], "4")`.
package runtime

import (
	"context"
	"fmt"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"

	"github.com/jward/appsight/internal/corpus"
	"github.com/jward/appsight/jsonq"
	"github.com/jward/appsight/version"
)

// Globals builds the evaluation environment for one record.
func Globals(r *corpus.Record) map[string]any {
	settings := make(map[string]any, len(r.AppSettings))
	for _, s := range r.AppSettings {
		settings[s.Environment] = s.Config.Data()
	}
	var componentTypes []any
	seen := map[string]bool{}
	for _, c := range r.Components().Collect() {
		if c.Type == "" || seen[c.Type] {
			continue
		}
		seen[c.Type] = true
		componentTypes = append(componentTypes, c.Type)
	}

	app := map[string]any{
		"env":              r.Env,
		"org":              r.Org,
		"app":              r.App,
		"key":              r.Key(),
		"repo_url":         r.RepoURL,
		"app_url":          r.AppURL,
		"frontend_version": versionMap(r.FrontendVersion),
		"backend_version":  versionMap(r.BackendVersion),
		"dotnet_version":   versionMap(r.DotnetVersion),
		"metadata":         r.Metadata.Data(),
		"settings":         settings,
		"component_types":  componentTypes,
	}

	return map[string]any{
		"app":              toObject(app),
		"version_at_least": object.NewBuiltin("version_at_least", builtinVersionAtLeast),
		"version_before":   object.NewBuiltin("version_before", builtinVersionBefore),
		"version_equal":    object.NewBuiltin("version_equal", builtinVersionEqual),
		"path_first":       object.NewBuiltin("path_first", builtinPathFirst),
		"path_all":         object.NewBuiltin("path_all", builtinPathAll),
	}
}

func versionMap(v version.Version) map[string]any {
	m := map[string]any{
		"raw":    v.String(),
		"exists": v.Exists(),
		"major":  int64(v.Major()),
		"minor":  int64(v.Minor()),
		"patch":  int64(v.Patch()),
	}
	if pre, ok := v.Prerelease(); ok {
		m["prerelease"] = pre
	} else {
		m["prerelease"] = ""
	}
	return m
}

// EvalValue runs an expression against one record and returns its result as
// a plain Go value.
func EvalValue(ctx context.Context, expr string, r *corpus.Record) (any, error) {
	var opts []risor.Option
	for name, val := range Globals(r) {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	result, err := risor.Eval(ctx, expr, opts...)
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", expr, err)
	}
	return goValue(result), nil
}

// EvalPredicate runs an expression and interprets the result as a filter
// decision. Nil, false, zero, empty string and empty containers are false.
func EvalPredicate(ctx context.Context, expr string, r *corpus.Record) (bool, error) {
	v, err := EvalValue(ctx, expr, r)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func goValue(obj object.Object) any {
	switch o := obj.(type) {
	case *object.NilType:
		return nil
	case *object.Bool:
		return o.Value()
	case *object.Int:
		return o.Value()
	case *object.Float:
		return o.Value()
	case *object.String:
		return o.Value()
	case *object.List:
		items := o.Value()
		out := make([]any, 0, len(items))
		for _, it := range items {
			out = append(out, goValue(it))
		}
		return out
	case *object.Map:
		items := o.Value()
		out := make(map[string]any, len(items))
		for k, v := range items {
			out[k] = goValue(v)
		}
		return out
	default:
		return obj.Inspect()
	}
}

// toObject converts plain data back into script values. Unsupported types
// render through their string form.
func toObject(v any) object.Object {
	switch t := v.(type) {
	case nil:
		return object.Nil
	case bool:
		return object.NewBool(t)
	case int:
		return object.NewInt(int64(t))
	case int64:
		return object.NewInt(t)
	case float64:
		return object.NewFloat(t)
	case string:
		return object.NewString(t)
	case []any:
		items := make([]object.Object, 0, len(t))
		for _, it := range t {
			items = append(items, toObject(it))
		}
		return object.NewList(items)
	case map[string]any:
		m := make(map[string]object.Object, len(t))
		for k, it := range t {
			m[k] = toObject(it)
		}
		return object.NewMap(m)
	default:
		return object.NewString(fmt.Sprint(t))
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func argVersion(obj object.Object) version.Version {
	switch o := obj.(type) {
	case *object.String:
		return version.Parse(o.Value())
	case *object.Map:
		raw := o.Value()["raw"]
		if s, ok := raw.(*object.String); ok {
			return version.Parse(s.Value())
		}
	}
	return version.Parse("")
}

func twoArgs(name string, args []object.Object) (object.Object, string, *object.Error) {
	if len(args) != 2 {
		return nil, "", object.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	lit, ok := args[1].(*object.String)
	if !ok {
		return nil, "", object.Errorf("%s: second argument must be a string", name)
	}
	return args[0], lit.Value(), nil
}

func builtinVersionAtLeast(ctx context.Context, args ...object.Object) object.Object {
	v, lit, errObj := twoArgs("version_at_least", args)
	if errObj != nil {
		return errObj
	}
	return object.NewBool(argVersion(v).AtLeast(lit))
}

func builtinVersionBefore(ctx context.Context, args ...object.Object) object.Object {
	v, lit, errObj := twoArgs("version_before", args)
	if errObj != nil {
		return errObj
	}
	return object.NewBool(argVersion(v).Before(lit))
}

func builtinVersionEqual(ctx context.Context, args ...object.Object) object.Object {
	v, lit, errObj := twoArgs("version_equal", args)
	if errObj != nil {
		return errObj
	}
	return object.NewBool(argVersion(v).Equals(lit))
}

func builtinPathFirst(ctx context.Context, args ...object.Object) object.Object {
	data, expr, errObj := twoArgs("path_first", args)
	if errObj != nil {
		return errObj
	}
	p, err := jsonq.ParsePath(expr)
	if err != nil {
		return object.Errorf("path_first: %v", err)
	}
	v := jsonq.Wrap(goValue(data)).At(p)
	if !v.Exists() {
		return object.Nil
	}
	return toObject(v.Data())
}

func builtinPathAll(ctx context.Context, args ...object.Object) object.Object {
	data, expr, errObj := twoArgs("path_all", args)
	if errObj != nil {
		return errObj
	}
	p, err := jsonq.ParsePath(expr)
	if err != nil {
		return object.Errorf("path_all: %v", err)
	}
	matches := jsonq.Wrap(goValue(data)).AllAt(p)
	items := make([]object.Object, 0, len(matches))
	for _, m := range matches {
		items = append(items, toObject(m.Data()))
	}
	return object.NewList(items)
}
