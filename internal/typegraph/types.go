// Package typegraph lowers parsed interface/type-alias/enum bodies into a
// closed, cycle-safe intermediate representation: TypeNode. Named references
// are resolved against a symtab.Table and followed transitively, memoized by
// declaration-id, with depth and total-count ceilings (maxWalkDepth,
// maxTotalTypes) guarding against self-referential and explosively large
// type graphs.
package typegraph

import sitter "github.com/tree-sitter/go-tree-sitter"

// Kind tags the variant a TypeNode carries.
type Kind int

const (
	KindPrimitive Kind = iota
	KindLiteralString
	KindLiteralNumber
	KindLiteralBoolean
	KindArray
	KindTuple
	KindObject
	KindRecord
	KindUnion
	KindIntersection
	KindEnumRef
	KindReference
	KindUnsupported
)

// Primitive enumerates TypeNode's primitive leaves.
type Primitive string

const (
	PrimitiveString    Primitive = "string"
	PrimitiveNumber    Primitive = "number"
	PrimitiveBoolean   Primitive = "boolean"
	PrimitiveBigint    Primitive = "bigint"
	PrimitiveNull      Primitive = "null"
	PrimitiveUndefined Primitive = "undefined"
	PrimitiveUnknown   Primitive = "unknown"
	PrimitiveAny       Primitive = "any"
	PrimitiveNever     Primitive = "never"
	PrimitiveVoid      Primitive = "void"
)

// DeclID identifies a declaration uniquely across the whole type graph:
// its module-id paired with its exported name.
type DeclID struct {
	ModuleID string
	Name     string
}

// Field is one member of an Object TypeNode, preserving declaration order.
type Field struct {
	Name     string
	Type     *TypeNode
	Optional bool
	Readonly bool
}

// EnumValue is one resolved member of an EnumRef.
type EnumValue struct {
	StringValue string
	NumberValue float64
	IsString    bool
}

// TypeNode is the resolver's recursive intermediate representation.
type TypeNode struct {
	Kind Kind

	Primitive Primitive

	LiteralString  string
	LiteralNumber  float64
	LiteralBoolean bool

	Element *TypeNode // Array
	Elems   []*TypeNode
	Rest    *TypeNode // Tuple

	Fields []Field // Object

	Key   *TypeNode // Record
	Value *TypeNode // Record

	Operands []*TypeNode // Union / Intersection

	EnumValues []EnumValue // EnumRef
	Decl       DeclID      // EnumRef / Reference

	UnsupportedReason string
}

// Declaration is one resolved, named member of the type graph: an
// interface, type alias, or enum, translated into a TypeNode body.
type Declaration struct {
	ID   DeclID
	Node *TypeNode
	Raw  *sitter.Node // original syntax node, retained for diagnostics
}

// Graph is the closed set of declarations reachable from the rooted
// validator requests, with every Reference node resolved.
type Graph struct {
	Declarations map[DeclID]*Declaration
	Order        []DeclID // discovery order, for stable helper emission
}

func newGraph() *Graph {
	return &Graph{Declarations: map[DeclID]*Declaration{}}
}

func (g *Graph) has(id DeclID) bool {
	_, ok := g.Declarations[id]
	return ok
}

func (g *Graph) add(d *Declaration) {
	g.Declarations[d.ID] = d
	g.Order = append(g.Order, d.ID)
}

// HasUnsupported reports whether id, or anything transitively reachable from
// it (array elements, tuple members, object fields, record keys/values,
// union/intersection operands, or referenced declarations), contains a
// KindUnsupported node. A validator rooted at such a declaration would check
// that part as a constant false, rejecting values the type allows, so callers
// skip emitting it.
func (g *Graph) HasUnsupported(id DeclID) bool {
	return g.declHasUnsupported(g.Declarations[id], map[DeclID]bool{})
}

func (g *Graph) declHasUnsupported(d *Declaration, visited map[DeclID]bool) bool {
	if d == nil || d.Node == nil || visited[d.ID] {
		return false
	}
	visited[d.ID] = true
	return g.nodeHasUnsupported(d.Node, visited)
}

func (g *Graph) nodeHasUnsupported(n *TypeNode, visited map[DeclID]bool) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindUnsupported:
		return true
	case KindArray:
		return g.nodeHasUnsupported(n.Element, visited)
	case KindTuple:
		for _, elem := range n.Elems {
			if g.nodeHasUnsupported(elem, visited) {
				return true
			}
		}
		return g.nodeHasUnsupported(n.Rest, visited)
	case KindObject:
		for _, f := range n.Fields {
			if g.nodeHasUnsupported(f.Type, visited) {
				return true
			}
		}
		return false
	case KindRecord:
		return g.nodeHasUnsupported(n.Key, visited) || g.nodeHasUnsupported(n.Value, visited)
	case KindUnion, KindIntersection:
		for _, op := range n.Operands {
			if g.nodeHasUnsupported(op, visited) {
				return true
			}
		}
		return false
	case KindReference:
		return g.declHasUnsupported(g.Declarations[n.Decl], visited)
	default:
		return false
	}
}
