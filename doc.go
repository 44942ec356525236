// Package appsight queries a local corpus of deployed application
// artifacts. A Session loads the cached archives for every deployed
// app and exposes them as a lazily evaluated collection:
//
//	s, err := appsight.Open(ctx, "cache", appsight.WithEnvironments("prod"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	old := s.Apps().
//		Where(func(r *appsight.Record) bool { return r.FrontendVersion.Before("4") }).
//		UniqueRepos()
//	fmt.Println(old.Len())
//
// Filters, projections, grouping and ordering compose without touching
// the archives again; evaluation happens when a terminal operation such
// as Collect, Len or Table runs.
//
// The subpackages stand alone: seq holds the lazy sequence combinators,
// version the lenient version parser, jsonq the forgiving JSON document
// wrapper, and csharp the tree-sitter backed C# source matcher.
package appsight
