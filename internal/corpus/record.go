// Package corpus defines the in-memory application record model and the
// loader that builds it from the local archive cache. Records are
// constructed once when a querying session opens and are read-only for the
// session's duration.
package corpus

import (
	"fmt"

	"github.com/jward/appsight/csharp"
	"github.com/jward/appsight/jsonq"
	"github.com/jward/appsight/seq"
	"github.com/jward/appsight/version"
)

// Record is one deployed instance of the platform, uniquely identified by
// (Org, App, Env) within a loaded collection. All fields are populated at
// load time; nothing is fetched or parsed mid-query.
type Record struct {
	Org string
	App string
	Env string

	FrontendVersion version.Version
	BackendVersion  version.Version
	DotnetVersion   version.Version

	RepoURL string
	AppURL  string

	Metadata      jsonq.Value
	AppSettings   []AppSettings
	LayoutSets    []LayoutSet
	TextResources []TextResource
	Sources       []*csharp.File
}

// AppSettings is one configured environment profile.
type AppSettings struct {
	Environment string
	Config      jsonq.Value
}

// LayoutSet groups the layouts, settings and rule artifacts of one named
// layout set. Apps without a layout-sets file get a single unnamed set.
type LayoutSet struct {
	ID                string
	DataType          string
	Tasks             []string
	Layouts           []Layout
	Settings          jsonq.Value
	RuleConfiguration jsonq.Value
	RuleHandler       string
}

// Layout is one layout file with its flattened component list.
type Layout struct {
	Name       string
	Raw        jsonq.Value
	Components []Component
}

// Component is one UI component descriptor within a layout.
type Component struct {
	ID        string
	Type      string
	LayoutSet string
	Layout    string
	Raw       jsonq.Value
}

// TextResource is one language-tagged text resource file.
type TextResource struct {
	Language string
	FileName string
	Raw      jsonq.Value
}

// RuleConfiguration pairs a layout set's rule configuration with its
// embedded rule-handler script text.
type RuleConfiguration struct {
	LayoutSet string
	Config    jsonq.Value
	Handler   string
}

// Key returns the record's unique identity string.
func (r *Record) Key() string {
	return fmt.Sprintf("%s-%s-%s", r.Env, r.Org, r.App)
}

// RepoKey identifies the repository independent of environment.
func (r *Record) RepoKey() string {
	return fmt.Sprintf("%s/%s", r.Org, r.App)
}

// Components returns every component across all layout sets and layouts,
// in artifact order.
func (r *Record) Components() seq.Seq[Component] {
	return seq.FlatMap(seq.FromSlice(r.LayoutSets), func(ls LayoutSet) seq.Seq[Component] {
		return seq.FlatMap(seq.FromSlice(ls.Layouts), func(l Layout) seq.Seq[Component] {
			return seq.FromSlice(l.Components)
		})
	})
}

// ComponentsOfType filters Components by the component type field.
func (r *Record) ComponentsOfType(t string) seq.Seq[Component] {
	return r.Components().Filter(func(c Component) bool { return c.Type == t })
}

// RuleConfigurations returns the rule configuration of every layout set
// that has one, with the associated handler script.
func (r *Record) RuleConfigurations() seq.Seq[RuleConfiguration] {
	return seq.Map(
		seq.FromSlice(r.LayoutSets).
			Filter(func(ls LayoutSet) bool { return ls.RuleConfiguration.Exists() }),
		func(ls LayoutSet) RuleConfiguration {
			return RuleConfiguration{LayoutSet: ls.ID, Config: ls.RuleConfiguration, Handler: ls.RuleHandler}
		})
}

// Cs returns the record's parsed C# source files.
func (r *Record) Cs() seq.Seq[*csharp.File] {
	return seq.FromSlice(r.Sources)
}

// ClassDeclarations matches across every source file of the record.
func (r *Record) ClassDeclarations(f csharp.ClassFilter) seq.Seq[csharp.ClassDecl] {
	return seq.FlatMap(r.Cs(), func(file *csharp.File) seq.Seq[csharp.ClassDecl] {
		return file.ClassDeclarations(f)
	})
}

// ObjectCreations matches across every source file of the record.
func (r *Record) ObjectCreations(f csharp.CreationFilter) seq.Seq[csharp.ObjectCreation] {
	return seq.FlatMap(r.Cs(), func(file *csharp.File) seq.Seq[csharp.ObjectCreation] {
		return file.ObjectCreations(f)
	})
}

// Invocations matches method calls across every source file of the record.
func (r *Record) Invocations(f csharp.InvocationFilter) seq.Seq[csharp.Invocation] {
	return seq.FlatMap(r.Cs(), func(file *csharp.File) seq.Seq[csharp.Invocation] {
		return file.Invocations(f)
	})
}

// MetadataAt resolves a path against the application metadata.
func (r *Record) MetadataAt(p jsonq.Path) jsonq.Value {
	return r.Metadata.At(p)
}

// SettingAt resolves a path against the ordered app-settings profiles and
// returns the first present value; absent when no profile has it.
func (r *Record) SettingAt(p jsonq.Path) jsonq.Value {
	for _, s := range r.AppSettings {
		if v := s.Config.At(p); v.Exists() {
			return v
		}
	}
	return jsonq.Value{}
}

// SettingFor resolves a path against the profile with the given
// environment tag only.
func (r *Record) SettingFor(env string, p jsonq.Path) jsonq.Value {
	for _, s := range r.AppSettings {
		if s.Environment == env {
			return s.Config.At(p)
		}
	}
	return jsonq.Value{}
}

// TextsFor returns the text resources tagged with the given language.
func (r *Record) TextsFor(lang string) seq.Seq[TextResource] {
	return seq.FromSlice(r.TextResources).
		Filter(func(t TextResource) bool { return t.Language == lang })
}
