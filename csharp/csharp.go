// Package csharp finds syntactic constructs in C# source by structural
// filters, using a tree-sitter parse and no symbol or type resolution.
//
// Matching is purely textual over declared names. Two classes sharing the
// same simple name in different namespaces are indistinguishable here, so
// results may be over-inclusive; that is an accepted tradeoff of staying a
// syntactic matcher, not a defect.
package csharp

import (
	"context"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/jward/appsight/seq"
)

var lang = csharp.GetLanguage()

// File is one parsed source file. A file that failed to parse is still a
// usable File: every query on it returns an empty sequence and Exists
// reports false.
type File struct {
	path string
	src  []byte
	tree *sitter.Tree
	root *sitter.Node
}

// ParseFile parses src as C#. It never returns an error; parse failure is
// per-record data absence, not a query abort.
func ParseFile(path string, src []byte) *File {
	f := &File{path: path, src: src}
	if len(src) == 0 {
		return f
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return f
	}
	f.tree = tree
	f.root = tree.RootNode()
	return f
}

// Exists reports whether the file parsed into a usable tree.
func (f *File) Exists() bool { return f.root != nil }

// Path returns the file's path within its archive.
func (f *File) Path() string { return f.path }

// Text returns the raw source text.
func (f *File) Text() string { return string(f.src) }

// Find returns the given capture group of the first match of re in the raw
// source text. Patterns are compiled by the caller (regexp.MustCompile for
// literals), so invalid patterns surface as programmer errors at compile
// time, distinct from data absence here.
func (f *File) Find(re *regexp.Regexp, group int) (string, bool) {
	m := re.FindSubmatch(f.src)
	if m == nil || group >= len(m) {
		return "", false
	}
	return string(m[group]), true
}

// FindAll returns the given capture group of every match of re, in order.
func (f *File) FindAll(re *regexp.Regexp, group int) seq.Seq[string] {
	var out []string
	for _, m := range re.FindAllSubmatch(f.src, -1) {
		if group < len(m) {
			out = append(out, string(m[group]))
		}
	}
	return seq.FromSlice(out)
}

// nodesOfType walks the tree and collects nodes of the given type, in
// source order. Nested declarations are included.
func (f *File) nodesOfType(nodeType string) []*sitter.Node {
	return nodesOfTypeIn(f.root, nodeType)
}

// nodesOfTypeIn collects nodes of the given type under root, in source
// order, root included.
func nodesOfTypeIn(root *sitter.Node, nodeType string) []*sitter.Node {
	if root == nil {
		return nil
	}
	var out []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == nodeType {
			out = append(out, n)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

// text returns the source text of a node.
func (f *File) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.src)
}

// namedChildrenOfType returns n's direct named children of the given type.
func namedChildrenOfType(n *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == nodeType {
			out = append(out, c)
		}
	}
	return out
}

// firstNamedChildOfType returns n's first direct named child of the given
// type, or nil.
func firstNamedChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// supersetOf reports whether every element of want occurs in have,
// order-independent.
func supersetOf(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
