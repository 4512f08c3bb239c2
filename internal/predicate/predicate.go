// Package predicate lowers a typegraph.TypeNode into a PredicateTree — a
// tree of structural checks against a bound input value — and renders it
// as TypeScript source text.
package predicate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/insidewhy/bagsakan/internal/typegraph"
)

// Kind tags the variant a PredicateTree node carries.
type Kind int

const (
	KindConstTrue Kind = iota
	KindConstFalse
	KindTypeofIs
	KindEqualsLiteral
	KindIsUndefined
	KindIsArray
	KindElementsMatch
	KindLengthEquals
	KindLengthAtLeast
	KindPositional
	KindIsObject
	KindNotNull
	KindNotArray
	KindHasKey
	KindFieldAbsentOrUndefined
	KindFieldMatches
	KindAny
	KindAll
	KindInSet
	KindCall // call another validator helper by name
)

// elementsSource distinguishes what ElementsMatch iterates over.
type elementsSource int

const (
	sourceArray elementsSource = iota
	sourceSlice                // tuple rest: array.slice(Index)
	sourceValues               // Record: Object.values(obj)
	sourceKeys                 // Record: Object.keys(obj)
)

// Tree is one node of the predicate tree.
type Tree struct {
	Kind Kind

	TypeofTag string
	Literal   string // rendered TS literal expression, for EqualsLiteral

	Inner  *Tree // wrapped child for single-operand nodes
	Key    string
	Index  int
	Source elementsSource

	Operands []*Tree // Any / All

	SetValues []string // InSet: rendered TS literal expressions

	Length int

	FnName string // Call
}

// Synthesizer lowers TypeNodes into PredicateTrees, scheduling helper
// functions for every declaration reached (the transitive closure).
type Synthesizer struct {
	graph     *typegraph.Graph
	fnNames   map[typegraph.DeclID]string
	order     []typegraph.DeclID
	rootNames map[typegraph.DeclID]string // declarations named directly by a validator call
}

// NewSynthesizer builds a synthesizer over a closed type graph.
func NewSynthesizer(graph *typegraph.Graph) *Synthesizer {
	return &Synthesizer{
		graph:     graph,
		fnNames:   map[typegraph.DeclID]string{},
		rootNames: map[typegraph.DeclID]string{},
	}
}

// Function is one synthesized validator, exported (rooted) or internal
// (helper), in the order it was first scheduled.
type Function struct {
	ID       typegraph.DeclID
	Name     string
	Exported bool
	Body     *Tree
}

// ScheduleRoot marks a declaration as a user-named root, rendered as
// validatorName, an exported function.
func (s *Synthesizer) ScheduleRoot(id typegraph.DeclID, validatorName string) {
	s.rootNames[id] = validatorName
	s.schedule(id)
}

func (s *Synthesizer) schedule(id typegraph.DeclID) string {
	if name, ok := s.fnNames[id]; ok {
		return name
	}
	name := s.rootNames[id]
	if name == "" {
		name = "__validate" + id.Name
	}
	s.fnNames[id] = name
	s.order = append(s.order, id)
	return name
}

// Functions lowers every scheduled declaration (transitively discovering
// more along the way, since lowering a field may reference an
// undiscovered declaration) and returns them in schedule order.
func (s *Synthesizer) Functions() []Function {
	var out []Function
	for i := 0; i < len(s.order); i++ {
		id := s.order[i]
		decl, ok := s.graph.Declarations[id]
		if !ok {
			continue
		}
		body := s.lower(decl.Node)
		_, isRoot := s.rootNames[id]
		out = append(out, Function{ID: id, Name: s.fnNames[id], Exported: isRoot, Body: body})
	}
	return out
}

func (s *Synthesizer) lower(t *typegraph.TypeNode) *Tree {
	switch t.Kind {
	case typegraph.KindPrimitive:
		return s.lowerPrimitive(t.Primitive)
	case typegraph.KindLiteralString:
		return &Tree{Kind: KindEqualsLiteral, Literal: strconv.Quote(t.LiteralString)}
	case typegraph.KindLiteralNumber:
		return &Tree{Kind: KindEqualsLiteral, Literal: formatNumber(t.LiteralNumber)}
	case typegraph.KindLiteralBoolean:
		lit := "false"
		if t.LiteralBoolean {
			lit = "true"
		}
		return &Tree{Kind: KindEqualsLiteral, Literal: lit}
	case typegraph.KindArray:
		return &Tree{Kind: KindAll, Operands: []*Tree{
			{Kind: KindIsArray},
			{Kind: KindElementsMatch, Source: sourceArray, Inner: s.lower(t.Element)},
		}}
	case typegraph.KindTuple:
		return s.lowerTuple(t)
	case typegraph.KindObject:
		return s.lowerObject(t)
	case typegraph.KindRecord:
		return s.lowerRecord(t)
	case typegraph.KindUnion:
		operands := make([]*Tree, 0, len(t.Operands))
		for _, op := range t.Operands {
			operands = append(operands, s.lower(op))
		}
		return &Tree{Kind: KindAny, Operands: operands}
	case typegraph.KindIntersection:
		operands := make([]*Tree, 0, len(t.Operands))
		for _, op := range t.Operands {
			operands = append(operands, s.lower(op))
		}
		return &Tree{Kind: KindAll, Operands: operands}
	case typegraph.KindEnumRef:
		return s.lowerEnum(t)
	case typegraph.KindReference:
		fnName := s.schedule(t.Decl)
		return &Tree{Kind: KindCall, FnName: fnName}
	case typegraph.KindUnsupported:
		// Callers are expected to check typegraph.Graph.HasUnsupported before
		// scheduling a root and skip it entirely rather than reach this case;
		// it only exists as a defensive fallback against a bug in that check.
		return &Tree{Kind: KindConstFalse}
	default:
		return &Tree{Kind: KindConstFalse}
	}
}

func (s *Synthesizer) lowerPrimitive(p typegraph.Primitive) *Tree {
	switch p {
	case typegraph.PrimitiveString, typegraph.PrimitiveNumber, typegraph.PrimitiveBoolean, typegraph.PrimitiveBigint:
		return &Tree{Kind: KindTypeofIs, TypeofTag: string(p)}
	case typegraph.PrimitiveNull:
		return &Tree{Kind: KindEqualsLiteral, Literal: "null"}
	case typegraph.PrimitiveUndefined:
		return &Tree{Kind: KindIsUndefined}
	case typegraph.PrimitiveUnknown, typegraph.PrimitiveAny:
		return &Tree{Kind: KindConstTrue}
	case typegraph.PrimitiveNever:
		return &Tree{Kind: KindConstFalse}
	case typegraph.PrimitiveVoid:
		return &Tree{Kind: KindIsUndefined}
	default:
		return &Tree{Kind: KindConstFalse}
	}
}

func (s *Synthesizer) lowerTuple(t *typegraph.TypeNode) *Tree {
	operands := []*Tree{{Kind: KindIsArray}}
	if t.Rest == nil {
		operands = append(operands, &Tree{Kind: KindLengthEquals, Length: len(t.Elems)})
	} else {
		operands = append(operands, &Tree{Kind: KindLengthAtLeast, Length: len(t.Elems)})
	}
	for i, elem := range t.Elems {
		operands = append(operands, &Tree{Kind: KindPositional, Index: i, Inner: s.lower(elem)})
	}
	if t.Rest != nil {
		operands = append(operands, &Tree{Kind: KindElementsMatch, Source: sourceSlice, Index: len(t.Elems), Inner: s.lower(t.Rest)})
	}
	return &Tree{Kind: KindAll, Operands: operands}
}

func (s *Synthesizer) lowerObject(t *typegraph.TypeNode) *Tree {
	operands := []*Tree{{Kind: KindIsObject}, {Kind: KindNotNull}, {Kind: KindNotArray}}
	for _, f := range t.Fields {
		fieldCheck := s.lower(f.Type)
		if f.Optional {
			operands = append(operands, &Tree{
				Kind: KindAny,
				Operands: []*Tree{
					{Kind: KindFieldAbsentOrUndefined, Key: f.Name},
					{Kind: KindFieldMatches, Key: f.Name, Inner: fieldCheck},
				},
			})
		} else {
			operands = append(operands,
				&Tree{Kind: KindHasKey, Key: f.Name},
				&Tree{Kind: KindFieldMatches, Key: f.Name, Inner: fieldCheck},
			)
		}
	}
	return &Tree{Kind: KindAll, Operands: operands}
}

func (s *Synthesizer) lowerRecord(t *typegraph.TypeNode) *Tree {
	return &Tree{Kind: KindAll, Operands: []*Tree{
		{Kind: KindIsObject},
		{Kind: KindNotArray},
		{Kind: KindElementsMatch, Source: sourceKeys, Inner: s.lower(t.Key)},
		{Kind: KindElementsMatch, Source: sourceValues, Inner: s.lower(t.Value)},
	}}
}

func (s *Synthesizer) lowerEnum(t *typegraph.TypeNode) *Tree {
	values := make([]string, 0, len(t.EnumValues))
	for _, v := range t.EnumValues {
		if v.IsString {
			values = append(values, strconv.Quote(v.StringValue))
		} else {
			values = append(values, formatNumber(v.NumberValue))
		}
	}
	sort.Strings(values)
	return &Tree{Kind: KindInSet, SetValues: values}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
