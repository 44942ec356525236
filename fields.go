package appsight

import "github.com/jward/appsight/seq"

// Field is a named projection over records.
type Field = seq.Field[*Record]

// F builds a named projection field over records.
func F(name string, value func(*Record) any) seq.Field[*Record] {
	return seq.Field[*Record]{Name: name, Value: value}
}

// Projection fields for the record attributes every command understands.
var standardFields = map[string]func(*Record) any{
	"env":              func(r *Record) any { return r.Env },
	"org":              func(r *Record) any { return r.Org },
	"app":              func(r *Record) any { return r.App },
	"key":              func(r *Record) any { return r.Key() },
	"repo":             func(r *Record) any { return r.RepoKey() },
	"repo_url":         func(r *Record) any { return r.RepoURL },
	"app_url":          func(r *Record) any { return r.AppURL },
	"frontend_version": func(r *Record) any { return r.FrontendVersion.String() },
	"backend_version":  func(r *Record) any { return r.BackendVersion.String() },
	"dotnet_version":   func(r *Record) any { return r.DotnetVersion.String() },
	"frontend_major":   func(r *Record) any { return r.FrontendVersion.Major() },
	"backend_major":    func(r *Record) any { return r.BackendVersion.Major() },
}

// FieldByName resolves a standard field name to a projection field.
func FieldByName(name string) (seq.Field[*Record], bool) {
	fn, ok := standardFields[name]
	if !ok {
		return seq.Field[*Record]{}, false
	}
	return F(name, fn), true
}

// StandardFieldNames lists the names FieldByName accepts, sorted.
func StandardFieldNames() []string {
	return []string{
		"app", "app_url", "backend_major", "backend_version",
		"dotnet_version", "env", "frontend_major", "frontend_version",
		"key", "org", "repo", "repo_url",
	}
}
