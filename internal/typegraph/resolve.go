package typegraph

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/insidewhy/bagsakan/internal/diagnostic"
	"github.com/insidewhy/bagsakan/internal/symtab"
	"github.com/insidewhy/bagsakan/internal/tsast"
)

const (
	maxWalkDepth  = 20
	maxTotalTypes = 500
)

// Resolver builds a closed Graph by translating declaration bodies into
// TypeNodes, following named references transitively.
type Resolver struct {
	table  *symtab.Table
	diags  *diagnostic.Collector
	graph  *Graph
	source map[string][]byte // moduleID -> source text, for text() lookups
	total  int
}

// NewResolver builds a resolver bound to an indexed symbol table.
func NewResolver(table *symtab.Table, diags *diagnostic.Collector) *Resolver {
	return &Resolver{table: table, diags: diags, graph: newGraph(), source: map[string][]byte{}}
}

// Graph returns the accumulated, closed type graph.
func (r *Resolver) Graph() *Graph { return r.graph }

// Resolve locates the declaration a (module, name) pair refers to and
// ensures it (and everything it transitively reaches) is present in the
// graph. Returns the DeclID to reference, or false if unresolved.
func (r *Resolver) Resolve(moduleID, name string) (DeclID, bool) {
	decl, diag := r.table.Resolve(moduleID, name)
	if diag != nil {
		r.diags.Error(diag.Category, "", 0, diag.Message)
		return DeclID{}, false
	}
	if decl == nil {
		r.diags.Error(diagnostic.CategoryUnresolved, "", 0, "could not resolve type "+name)
		return DeclID{}, false
	}
	id := DeclID{ModuleID: decl.ModuleID, Name: decl.Name}
	r.ensure(id, decl, 0)
	return id, true
}

func (r *Resolver) ensure(id DeclID, decl *symtab.Declaration, depth int) {
	if r.graph.has(id) {
		return
	}
	if r.total >= maxTotalTypes {
		r.graph.add(&Declaration{ID: id, Node: &TypeNode{Kind: KindUnsupported, UnsupportedReason: "resolution limit exceeded"}})
		return
	}
	r.total++
	// Reserve the slot before recursing, so self/mutual references see a
	// placeholder instead of re-entering (type-graph cycles are legal).
	placeholder := &Declaration{ID: id}
	r.graph.add(placeholder)

	node := r.lowerDeclaration(id, decl, depth)
	placeholder.Node = node
	placeholder.Raw = decl.Node
}

func (r *Resolver) lowerDeclaration(id DeclID, decl *symtab.Declaration, depth int) *TypeNode {
	src := r.sourceFor(decl)
	switch decl.Kind {
	case tsast.DeclEnum:
		return lowerEnum(decl.Node, src)
	case tsast.DeclInterface:
		body := findChildByFieldName(decl.Node, "body")
		if body == nil {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "interface has no body"}
		}
		return r.lowerObjectBody(body, decl.ModuleID, src, depth)
	case tsast.DeclTypeAlias:
		value := findChildByFieldName(decl.Node, "value")
		if value == nil {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "type alias has no value"}
		}
		return r.lowerType(value, decl.ModuleID, src, depth)
	default:
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unknown declaration kind"}
	}
}

func (r *Resolver) sourceFor(decl *symtab.Declaration) []byte {
	if f, ok := r.table.File(decl.ModuleID); ok {
		return f.Source
	}
	return nil
}

// lowerType translates one type-syntax node into a TypeNode, recursing into
// named references via the symbol table.
func (r *Resolver) lowerType(n *sitter.Node, moduleID string, src []byte, depth int) *TypeNode {
	if depth > maxWalkDepth {
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "resolution limit exceeded"}
	}
	n = unwrap(n)
	if n == nil {
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "empty type"}
	}

	switch n.Kind() {
	case "predefined_type":
		return lowerPredefined(text(n, src))
	case "literal_type":
		return lowerLiteralType(n, src)
	case "type_identifier":
		return r.lowerNamedReference(text(n, src), nil, moduleID, depth)
	case "nested_type_identifier", "generic_type":
		return r.lowerGenericOrNamed(n, moduleID, src, depth)
	case "array_type":
		elem := firstTypeOperand(n)
		return &TypeNode{Kind: KindArray, Element: r.lowerType(elem, moduleID, src, depth+1)}
	case "tuple_type":
		return r.lowerTuple(n, moduleID, src, depth)
	case "union_type":
		return &TypeNode{Kind: KindUnion, Operands: r.lowerOperands(n, moduleID, src, depth)}
	case "intersection_type":
		return &TypeNode{Kind: KindIntersection, Operands: r.lowerOperands(n, moduleID, src, depth)}
	case "object_type":
		return r.lowerObjectBody(n, moduleID, src, depth)
	case "parenthesized_type":
		return r.lowerType(firstTypeOperand(n), moduleID, src, depth)
	default:
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unsupported type construct: " + n.Kind()}
	}
}

func lowerPredefined(word string) *TypeNode {
	switch strings.TrimSpace(word) {
	case "string":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveString}
	case "number":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveNumber}
	case "boolean":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveBoolean}
	case "bigint":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveBigint}
	case "undefined":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveUndefined}
	case "unknown":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveUnknown}
	case "any":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveAny}
	case "never":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveNever}
	case "void":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveVoid}
	case "null":
		return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveNull}
	default:
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unsupported predefined type: " + word}
	}
}

func lowerLiteralType(n *sitter.Node, src []byte) *TypeNode {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "string":
			return &TypeNode{Kind: KindLiteralString, LiteralString: stringLiteralValue(child, src)}
		case "number":
			val, _ := strconv.ParseFloat(text(child, src), 64)
			return &TypeNode{Kind: KindLiteralNumber, LiteralNumber: val}
		case "true":
			return &TypeNode{Kind: KindLiteralBoolean, LiteralBoolean: true}
		case "false":
			return &TypeNode{Kind: KindLiteralBoolean, LiteralBoolean: false}
		case "null":
			return &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveNull}
		}
	}
	return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unsupported literal type"}
}

func stringLiteralValue(n *sitter.Node, src []byte) string {
	if frag := findDescendant(n, "string_fragment"); frag != nil {
		return text(frag, src)
	}
	return ""
}

func (r *Resolver) lowerGenericOrNamed(n *sitter.Node, moduleID string, src []byte, depth int) *TypeNode {
	nameNode := findChildByFieldName(n, "name")
	if nameNode == nil {
		nameNode = findDescendant(n, "type_identifier")
	}
	if nameNode == nil {
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unrecognized generic type"}
	}
	name := text(nameNode, src)
	argsNode := findChildByFieldName(n, "type_arguments")

	switch name {
	case "Array":
		args := typeArguments(argsNode)
		if len(args) != 1 {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "Array<> requires exactly one type argument"}
		}
		return &TypeNode{Kind: KindArray, Element: r.lowerType(args[0], moduleID, src, depth+1)}
	case "Record":
		args := typeArguments(argsNode)
		if len(args) != 2 {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "Record<> requires exactly two type arguments"}
		}
		key := r.lowerType(args[0], moduleID, src, depth+1)
		if !isSupportedRecordKey(key) {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unsupported Record key type"}
		}
		return &TypeNode{Kind: KindRecord, Key: key, Value: r.lowerType(args[1], moduleID, src, depth+1)}
	default:
		if argsNode != nil {
			return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unsupported generic type: " + name}
		}
		return r.lowerNamedReference(name, nil, moduleID, depth)
	}
}

func isSupportedRecordKey(k *TypeNode) bool {
	if k.Kind == KindPrimitive && k.Primitive == PrimitiveString {
		return true
	}
	if k.Kind == KindUnion {
		for _, op := range k.Operands {
			if op.Kind != KindLiteralString {
				return false
			}
		}
		return true
	}
	return false
}

func (r *Resolver) lowerNamedReference(name string, _ *sitter.Node, moduleID string, depth int) *TypeNode {
	decl, diag := r.table.Resolve(moduleID, name)
	if diag != nil {
		r.diags.Error(diag.Category, "", 0, diag.Message)
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "circular or conflicting reference: " + name}
	}
	if decl == nil {
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "unresolved named type: " + name}
	}
	id := DeclID{ModuleID: decl.ModuleID, Name: decl.Name}
	r.ensure(id, decl, depth+1)
	if decl.Kind == tsast.DeclEnum {
		ref := &TypeNode{Kind: KindEnumRef, Decl: id}
		if d := r.graph.Declarations[id]; d != nil && d.Node != nil {
			ref.EnumValues = d.Node.EnumValues
		}
		return ref
	}
	return &TypeNode{Kind: KindReference, Decl: id}
}

func (r *Resolver) lowerOperands(n *sitter.Node, moduleID string, src []byte, depth int) []*TypeNode {
	var out []*TypeNode
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if !isTypeNodeKind(child.Kind()) {
			continue
		}
		// The grammar nests "a | b | c" as binary nodes; flatten them.
		if child.Kind() == n.Kind() {
			out = append(out, r.lowerOperands(child, moduleID, src, depth)...)
			continue
		}
		out = append(out, r.lowerType(child, moduleID, src, depth+1))
	}
	return out
}

func (r *Resolver) lowerTuple(n *sitter.Node, moduleID string, src []byte, depth int) *TypeNode {
	var elems []*TypeNode
	var rest *TypeNode
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch child.Kind() {
		case "rest_type":
			inner := firstTypeOperand(child)
			if inner != nil && inner.Kind() == "array_type" {
				rest = r.lowerType(firstTypeOperand(inner), moduleID, src, depth+1)
			} else {
				rest = r.lowerType(inner, moduleID, src, depth+1)
			}
		default:
			if isTypeNodeKind(child.Kind()) {
				elems = append(elems, r.lowerType(child, moduleID, src, depth+1))
			}
		}
	}
	return &TypeNode{Kind: KindTuple, Elems: elems, Rest: rest}
}

func (r *Resolver) lowerObjectBody(body *sitter.Node, moduleID string, src []byte, depth int) *TypeNode {
	var fields []Field
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		if member.Kind() != "property_signature" {
			continue
		}
		nameNode := findChildByFieldName(member, "name")
		if nameNode == nil {
			continue
		}
		typeAnn := findChildByFieldName(member, "type")
		var fieldType *TypeNode
		if typeAnn == nil {
			fieldType = &TypeNode{Kind: KindPrimitive, Primitive: PrimitiveAny}
		} else {
			fieldType = r.lowerType(typeAnn, moduleID, src, depth+1)
		}
		optional := hasOptionalMarker(member) || unionIncludesUndefined(fieldType)
		fields = append(fields, Field{
			Name:     text(nameNode, src),
			Type:     fieldType,
			Optional: optional,
			Readonly: hasReadonlyModifier(member, src),
		})
	}
	return &TypeNode{Kind: KindObject, Fields: fields}
}

func unionIncludesUndefined(t *TypeNode) bool {
	if t.Kind != KindUnion {
		return false
	}
	for _, op := range t.Operands {
		if op.Kind == KindPrimitive && op.Primitive == PrimitiveUndefined {
			return true
		}
	}
	return false
}

func hasOptionalMarker(member *sitter.Node) bool {
	for i := uint(0); i < member.ChildCount(); i++ {
		if member.Child(i).Kind() == "?" {
			return true
		}
	}
	return false
}

func hasReadonlyModifier(member *sitter.Node, src []byte) bool {
	for i := uint(0); i < member.ChildCount(); i++ {
		child := member.Child(i)
		if child.Kind() == "readonly" || (child.Kind() == "identifier" && text(child, src) == "readonly") {
			return true
		}
	}
	return false
}

func lowerEnum(n *sitter.Node, src []byte) *TypeNode {
	body := findChildByFieldName(n, "body")
	if body == nil {
		return &TypeNode{Kind: KindUnsupported, UnsupportedReason: "enum has no body"}
	}
	var values []EnumValue
	nextNumeric := 0.0
	for i := uint(0); i < body.ChildCount(); i++ {
		member := body.Child(i)
		switch member.Kind() {
		case "property_identifier", "identifier":
			values = append(values, EnumValue{IsString: false, NumberValue: nextNumeric})
			nextNumeric++
		case "enum_assignment":
			valueNode := findChildByFieldName(member, "value")
			if valueNode == nil {
				values = append(values, EnumValue{IsString: false, NumberValue: nextNumeric})
				nextNumeric++
				continue
			}
			switch valueNode.Kind() {
			case "string":
				values = append(values, EnumValue{IsString: true, StringValue: stringLiteralValue(valueNode, src)})
			case "number":
				num, _ := strconv.ParseFloat(text(valueNode, src), 64)
				values = append(values, EnumValue{IsString: false, NumberValue: num})
				nextNumeric = num + 1
			default:
				values = append(values, EnumValue{IsString: false, NumberValue: nextNumeric})
				nextNumeric++
			}
		}
	}
	return &TypeNode{Kind: KindEnumRef, EnumValues: values}
}

// --- small tree helpers ---

func text(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}

func findChildByFieldName(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

func findDescendant(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == kind {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := findDescendant(n.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

// unwrap strips type_annotation wrappers (the leading ":") down to the real
// type node; parenthesized types are handled by lowerType itself.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "type_annotation":
			n = firstTypeOperand(n)
		default:
			return n
		}
	}
	return n
}

// firstTypeOperand returns the first child that itself looks like a type
// node (skips punctuation tokens such as ":", "(", ")", "[", "]", "|", "&").
func firstTypeOperand(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if isTypeNodeKind(child.Kind()) {
			return child
		}
	}
	return nil
}

func typeArguments(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if isTypeNodeKind(child.Kind()) {
			out = append(out, child)
		}
	}
	return out
}

var typeNodeKinds = map[string]bool{
	"predefined_type":        true,
	"literal_type":           true,
	"type_identifier":        true,
	"nested_type_identifier": true,
	"generic_type":           true,
	"array_type":             true,
	"tuple_type":             true,
	"union_type":             true,
	"intersection_type":      true,
	"object_type":            true,
	"parenthesized_type":     true,
	"rest_type":              true,
	"optional_type":          true,
	"readonly_type":          true,
}

func isTypeNodeKind(kind string) bool {
	return typeNodeKinds[kind]
}
