package csharp

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/appsight/seq"
)

// ClassFilter narrows ClassDeclarations. Zero/nil fields are unconstrained:
// Name matches the simple name exactly; Implements requires the declared
// base/interface list to be a superset of the given names; Modifiers
// requires the declared modifier set to be a superset.
type ClassFilter struct {
	Name       string
	Implements []string
	Modifiers  []string
}

// MethodFilter narrows Methods. Zero/nil fields are unconstrained.
// ParameterTypes, when non-nil, matches positionally and exactly: same
// count, same order, same declared type text.
type MethodFilter struct {
	Name           string
	Returns        string
	Modifiers      []string
	ParameterTypes []string
}

// CreationFilter narrows ObjectCreations. Type is the constructed type's
// declared name; Fields, when given, requires the set of explicitly
// initialized field names to be a superset.
type CreationFilter struct {
	Type   string
	Fields []string
}

// InvocationFilter narrows Invocations. Zero/nil fields are unconstrained:
// Receiver matches the declared receiver text exactly (empty means any,
// including receiver-less calls); Method matches the invoked method's
// simple name; TypeArguments, when non-nil, matches positionally and
// exactly against the explicit generic type arguments.
type InvocationFilter struct {
	Receiver      string
	Method        string
	TypeArguments []string
}

// ClassDecl is one matched class declaration.
type ClassDecl struct {
	file *File
	node *sitter.Node
}

// MethodDecl is one matched method declaration, scoped to its class.
type MethodDecl struct {
	file *File
	node *sitter.Node
}

// ObjectCreation is one matched object-creation expression.
type ObjectCreation struct {
	file *File
	node *sitter.Node
}

// Invocation is one matched method-call expression.
type Invocation struct {
	file *File
	node *sitter.Node
}

// ClassDeclarations returns class declarations matching the filter, in
// source order. Always an empty sequence, never an error, when nothing
// matches or the file failed to parse.
func (f *File) ClassDeclarations(filter ClassFilter) seq.Seq[ClassDecl] {
	var out []ClassDecl
	for _, n := range f.nodesOfType("class_declaration") {
		d := ClassDecl{file: f, node: n}
		if filter.Name != "" && d.Name() != filter.Name {
			continue
		}
		if filter.Implements != nil && !supersetOf(d.BaseTypes(), filter.Implements) {
			continue
		}
		if filter.Modifiers != nil && !supersetOf(d.Modifiers(), filter.Modifiers) {
			continue
		}
		out = append(out, d)
	}
	return seq.FromSlice(out)
}

// Name returns the class's declared simple name.
func (d ClassDecl) Name() string {
	return d.file.text(d.node.ChildByFieldName("name"))
}

// BaseTypes returns the declared base class and interface names, in
// declaration order. No resolution: names are the declared type text.
func (d ClassDecl) BaseTypes() []string {
	bases := firstNamedChildOfType(d.node, "base_list")
	if bases == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(bases.NamedChildCount()); i++ {
		out = append(out, d.file.text(bases.NamedChild(i)))
	}
	return out
}

// Modifiers returns the class's declared modifiers (public, abstract, ...).
func (d ClassDecl) Modifiers() []string {
	return modifiersOf(d.file, d.node)
}

// Text returns the full source text of the declaration.
func (d ClassDecl) Text() string { return d.file.text(d.node) }

// StartLine returns the 1-based line the declaration starts on.
func (d ClassDecl) StartLine() int { return int(d.node.StartPoint().Row) + 1 }

// File returns the declaring file.
func (d ClassDecl) File() *File { return d.file }

// Methods returns the class's own method declarations matching the filter,
// in source order. Methods of nested classes are not included.
func (d ClassDecl) Methods(filter MethodFilter) seq.Seq[MethodDecl] {
	body := d.node.ChildByFieldName("body")
	if body == nil {
		return seq.Seq[MethodDecl]{}
	}
	var out []MethodDecl
	for _, n := range namedChildrenOfType(body, "method_declaration") {
		m := MethodDecl{file: d.file, node: n}
		if filter.Name != "" && m.Name() != filter.Name {
			continue
		}
		if filter.Returns != "" && m.Returns() != filter.Returns {
			continue
		}
		if filter.Modifiers != nil && !supersetOf(m.Modifiers(), filter.Modifiers) {
			continue
		}
		if filter.ParameterTypes != nil && !equalSlices(m.ParameterTypes(), filter.ParameterTypes) {
			continue
		}
		out = append(out, m)
	}
	return seq.FromSlice(out)
}

// Name returns the method's declared name.
func (m MethodDecl) Name() string {
	return m.file.text(m.node.ChildByFieldName("name"))
}

// Returns returns the declared return type text.
func (m MethodDecl) Returns() string {
	// Grammar revisions disagree on the field name for the return type.
	if t := m.node.ChildByFieldName("returns"); t != nil {
		return m.file.text(t)
	}
	return m.file.text(m.node.ChildByFieldName("type"))
}

// Modifiers returns the method's declared modifiers.
func (m MethodDecl) Modifiers() []string {
	return modifiersOf(m.file, m.node)
}

// ParameterTypes returns the declared parameter type text, positionally.
func (m MethodDecl) ParameterTypes() []string {
	params := m.node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []string
	for _, p := range namedChildrenOfType(params, "parameter") {
		out = append(out, m.file.text(p.ChildByFieldName("type")))
	}
	return out
}

// Text returns the full source text of the declaration.
func (m MethodDecl) Text() string { return m.file.text(m.node) }

// StartLine returns the 1-based line the declaration starts on.
func (m MethodDecl) StartLine() int { return int(m.node.StartPoint().Row) + 1 }

// ObjectCreations returns object-creation expressions of the named type
// whose explicitly initialized field names are a superset of filter.Fields,
// in source order.
func (f *File) ObjectCreations(filter CreationFilter) seq.Seq[ObjectCreation] {
	var out []ObjectCreation
	for _, n := range f.nodesOfType("object_creation_expression") {
		c := ObjectCreation{file: f, node: n}
		if filter.Type != "" && c.Type() != filter.Type {
			continue
		}
		if filter.Fields != nil && !supersetOf(c.Fields(), filter.Fields) {
			continue
		}
		out = append(out, c)
	}
	return seq.FromSlice(out)
}

// Type returns the constructed type's declared name.
func (c ObjectCreation) Type() string {
	return c.file.text(c.node.ChildByFieldName("type"))
}

// Fields returns the names explicitly initialized in the object
// initializer, in source order; nil when there is no initializer.
func (c ObjectCreation) Fields() []string {
	init := c.node.ChildByFieldName("initializer")
	if init == nil {
		init = firstNamedChildOfType(c.node, "initializer_expression")
	}
	if init == nil {
		return nil
	}
	var out []string
	for _, a := range namedChildrenOfType(init, "assignment_expression") {
		out = append(out, c.file.text(a.ChildByFieldName("left")))
	}
	return out
}

// Text returns the full source text of the expression.
func (c ObjectCreation) Text() string { return c.file.text(c.node) }

// StartLine returns the 1-based line the expression starts on.
func (c ObjectCreation) StartLine() int { return int(c.node.StartPoint().Row) + 1 }

// Invocations returns method-call expressions matching the filter, in
// source order. Calls in nested lambdas and local functions are included.
func (f *File) Invocations(filter InvocationFilter) seq.Seq[Invocation] {
	return invocationsIn(f, f.root, filter)
}

// Invocations returns the calls made inside the method's body matching the
// filter, in source order. This is how service registrations are found:
// scope to the registration method, then filter on the call name.
func (m MethodDecl) Invocations(filter InvocationFilter) seq.Seq[Invocation] {
	return invocationsIn(m.file, m.node.ChildByFieldName("body"), filter)
}

func invocationsIn(f *File, root *sitter.Node, filter InvocationFilter) seq.Seq[Invocation] {
	var out []Invocation
	for _, n := range nodesOfTypeIn(root, "invocation_expression") {
		inv := Invocation{file: f, node: n}
		if filter.Receiver != "" && inv.Receiver() != filter.Receiver {
			continue
		}
		if filter.Method != "" && inv.Method() != filter.Method {
			continue
		}
		if filter.TypeArguments != nil && !equalSlices(inv.TypeArguments(), filter.TypeArguments) {
			continue
		}
		out = append(out, inv)
	}
	return seq.FromSlice(out)
}

// fn returns the invoked function node: a member access, a generic name
// or a bare identifier.
func (i Invocation) fn() *sitter.Node {
	return i.node.ChildByFieldName("function")
}

// nameNode returns the node carrying the invoked name, past any member
// access.
func (i Invocation) nameNode() *sitter.Node {
	fn := i.fn()
	if fn == nil {
		return nil
	}
	if fn.Type() == "member_access_expression" {
		return fn.ChildByFieldName("name")
	}
	return fn
}

// Receiver returns the declared receiver text of a member call
// (services in services.AddTransient<I, T>()), or "" for a receiver-less
// call.
func (i Invocation) Receiver() string {
	fn := i.fn()
	if fn == nil || fn.Type() != "member_access_expression" {
		return ""
	}
	return i.file.text(fn.ChildByFieldName("expression"))
}

// Method returns the invoked method's simple name, without type arguments.
func (i Invocation) Method() string {
	name := i.nameNode()
	if name == nil {
		return ""
	}
	if name.Type() == "generic_name" {
		return i.file.text(firstNamedChildOfType(name, "identifier"))
	}
	return i.file.text(name)
}

// TypeArguments returns the explicit generic type arguments, positionally;
// nil for a non-generic call.
func (i Invocation) TypeArguments() []string {
	name := i.nameNode()
	if name == nil || name.Type() != "generic_name" {
		return nil
	}
	args := firstNamedChildOfType(name, "type_argument_list")
	if args == nil {
		return nil
	}
	var out []string
	for j := 0; j < int(args.NamedChildCount()); j++ {
		out = append(out, i.file.text(args.NamedChild(j)))
	}
	return out
}

// Text returns the full source text of the call.
func (i Invocation) Text() string { return i.file.text(i.node) }

// StartLine returns the 1-based line the call starts on.
func (i Invocation) StartLine() int { return int(i.node.StartPoint().Row) + 1 }

func modifiersOf(f *File, n *sitter.Node) []string {
	var out []string
	for _, m := range namedChildrenOfType(n, "modifier") {
		out = append(out, f.text(m))
	}
	return out
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
