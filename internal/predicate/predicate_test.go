package predicate

import (
	"strings"
	"testing"

	"github.com/insidewhy/bagsakan/internal/typegraph"
)

func TestRenderPrimitive(t *testing.T) {
	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{}}
	s := NewSynthesizer(graph)
	tree := s.lower(&typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveString})
	got := Render(tree, "data")
	want := `typeof data === "string"`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderArrayOfStrings(t *testing.T) {
	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{}}
	s := NewSynthesizer(graph)
	tree := s.lower(&typegraph.TypeNode{
		Kind:    typegraph.KindArray,
		Element: &typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveString},
	})
	got := Render(tree, "data")
	if !strings.Contains(got, "Array.isArray(data)") {
		t.Errorf("expected array check, got %q", got)
	}
	if !strings.Contains(got, ".every((__item) =>") {
		t.Errorf("expected every() call, got %q", got)
	}
}

func TestRenderObjectRequiredAndOptionalFields(t *testing.T) {
	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{}}
	s := NewSynthesizer(graph)
	objType := &typegraph.TypeNode{
		Kind: typegraph.KindObject,
		Fields: []typegraph.Field{
			{Name: "id", Type: &typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveNumber}},
			{Name: "nickname", Optional: true, Type: &typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveString}},
		},
	}
	tree := s.lower(objType)
	got := Render(tree, "data")
	if !strings.Contains(got, `hasOwnProperty.call(data, "id")`) {
		t.Errorf("expected required-field ownership check, got %q", got)
	}
	if !strings.Contains(got, `"nickname"`) {
		t.Errorf("expected optional field access, got %q", got)
	}
}

func TestRenderEnumInSet(t *testing.T) {
	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{}}
	s := NewSynthesizer(graph)
	tree := s.lower(&typegraph.TypeNode{
		Kind: typegraph.KindEnumRef,
		EnumValues: []typegraph.EnumValue{
			{IsString: true, StringValue: "pending"},
			{IsString: true, StringValue: "completed"},
		},
	})
	got := Render(tree, "data")
	if !strings.Contains(got, `"completed"`) || !strings.Contains(got, `"pending"`) {
		t.Errorf("expected both enum values present, got %q", got)
	}
}

func TestRenderRecordChecksOwnKeysAgainstLiteralKeyUnion(t *testing.T) {
	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{}}
	s := NewSynthesizer(graph)
	tree := s.lower(&typegraph.TypeNode{
		Kind: typegraph.KindRecord,
		Key: &typegraph.TypeNode{
			Kind: typegraph.KindUnion,
			Operands: []*typegraph.TypeNode{
				{Kind: typegraph.KindLiteralString, LiteralString: "a"},
				{Kind: typegraph.KindLiteralString, LiteralString: "b"},
			},
		},
		Value: &typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveNumber},
	})
	got := Render(tree, "data")
	if !strings.Contains(got, "Object.keys(data as Record<string, unknown>).every") {
		t.Errorf("expected an own-keys check, got %q", got)
	}
	if !strings.Contains(got, `__item === "a"`) || !strings.Contains(got, `__item === "b"`) {
		t.Errorf("expected the key check to test against the literal key union, got %q", got)
	}
	if !strings.Contains(got, "Object.values(data as Record<string, unknown>).every") {
		t.Errorf("expected the existing values check to remain, got %q", got)
	}
}

func TestScheduleRootAndReferenceProducesHelper(t *testing.T) {
	userID := typegraph.DeclID{ModuleID: "/src/models.ts", Name: "User"}
	addrID := typegraph.DeclID{ModuleID: "/src/models.ts", Name: "Address"}

	graph := &typegraph.Graph{Declarations: map[typegraph.DeclID]*typegraph.Declaration{
		userID: {ID: userID, Node: &typegraph.TypeNode{
			Kind: typegraph.KindObject,
			Fields: []typegraph.Field{
				{Name: "address", Type: &typegraph.TypeNode{Kind: typegraph.KindReference, Decl: addrID}},
			},
		}},
		addrID: {ID: addrID, Node: &typegraph.TypeNode{
			Kind: typegraph.KindObject,
			Fields: []typegraph.Field{
				{Name: "city", Type: &typegraph.TypeNode{Kind: typegraph.KindPrimitive, Primitive: typegraph.PrimitiveString}},
			},
		}},
	}}

	s := NewSynthesizer(graph)
	s.ScheduleRoot(userID, "validateUser")
	fns := s.Functions()
	if len(fns) != 2 {
		t.Fatalf("got %d functions, want 2 (root + helper): %+v", len(fns), fns)
	}
	if fns[0].Name != "validateUser" || !fns[0].Exported {
		t.Errorf("root function = %+v", fns[0])
	}
	if fns[1].Exported {
		t.Errorf("transitively-required helper should not be exported: %+v", fns[1])
	}
	if !strings.HasPrefix(fns[1].Name, "__validate") {
		t.Errorf("helper name should use the derived prefix, got %q", fns[1].Name)
	}
}
