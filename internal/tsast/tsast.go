// Package tsast parses TypeScript source into a neutral shape the rest of
// the pipeline consumes: top-level exported declarations (interfaces, type
// aliases, enums, re-exports), import statements with their specifiers and
// local aliases, and every bare-identifier call-expression callee in the
// file. Parsing itself is delegated to tree-sitter's TypeScript grammar,
// grounded on the same sitter.NewParser()/SetLanguage()/Parse() sequence
// used elsewhere in this codebase's language tooling.
package tsast

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// DeclKind tags the three declaration shapes the resolver understands.
type DeclKind int

const (
	DeclInterface DeclKind = iota
	DeclTypeAlias
	DeclEnum
)

// Declaration is a top-level exported interface, type alias, or enum.
type Declaration struct {
	Kind     DeclKind
	Name     string
	Pos      Position
	Node     *sitter.Node // the declaration's own syntax node, retained for lowering in typegraph
	Exported bool
}

// ImportSpecifier is one named binding of an import statement
// (`import { Foo as Bar } from '...'`, or a default/namespace import).
type ImportSpecifier struct {
	ImportedName string // name in the source module ("" for default/namespace)
	LocalName    string // name bound in this file
	IsDefault    bool
	IsNamespace  bool
}

// Import represents one `import ... from "specifier"` statement.
type Import struct {
	Specifier string
	Names     []ImportSpecifier
	Pos       Position
}

// ReExport represents `export { X } from "specifier"` or `export * from "specifier"`.
type ReExport struct {
	Specifier string
	Names     []ImportSpecifier // empty means `export *`
	Pos       Position
}

// CallRef is one call-expression whose callee is a bare identifier.
type CallRef struct {
	Callee string
	Pos    Position
}

// File is the parsed, neutral representation of one TypeScript source file.
type File struct {
	Path         string
	Source       []byte
	Declarations []*Declaration
	Imports      []*Import
	ReExports    []*ReExport
	Calls        []*CallRef
}

// ParseError is returned when tree-sitter cannot produce a usable tree, or
// the tree contains an ERROR node (a syntax error), bound to file+position.
type ParseError struct {
	File string
	Pos  Position
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

var tsLanguage = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())

// Parse parses one file's contents into the neutral AST shape.
func Parse(path string, source []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tsLanguage); err != nil {
		return nil, fmt.Errorf("setting typescript grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{File: path, Msg: "parse produced no tree"}
	}
	// On success the tree stays open: Declaration.Node points into it and
	// typegraph walks those nodes after Parse returns.

	root := tree.RootNode()
	if firstErr := findFirstError(root); firstErr != nil {
		pos := posOf(firstErr)
		tree.Close()
		return nil, &ParseError{File: path, Pos: pos, Msg: "syntax error"}
	}

	f := &File{Path: path, Source: source}
	walkTop(root, f)
	return f, nil
}

func posOf(n *sitter.Node) Position {
	p := n.StartPosition()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func text(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func findFirstError(n *sitter.Node) *sitter.Node {
	if n.Kind() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if found := findFirstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// walkTop recurses through the whole file: top-level constructs are
// recorded structurally, and call expressions are recorded wherever they
// occur (nested inside functions, conditionals, expression trees — anywhere).
// exported is true only for the direct children of an `export ...`
// statement that isn't a re-export (tree-sitter-typescript nests the
// declaration one level inside export_statement).
func walkTop(n *sitter.Node, f *File) {
	walk(n, f, false)
}

func walk(n *sitter.Node, f *File, exported bool) {
	switch n.Kind() {
	case "interface_declaration":
		recordDeclaration(n, f, DeclInterface, exported)
	case "type_alias_declaration":
		recordDeclaration(n, f, DeclTypeAlias, exported)
	case "enum_declaration":
		recordDeclaration(n, f, DeclEnum, exported)
	case "import_statement":
		recordImport(n, f)
	case "export_statement":
		recordExportStatement(n, f)
	case "call_expression":
		recordCall(n, f)
	}

	childExported := n.Kind() == "export_statement" && n.ChildByFieldName("source") == nil
	for i := uint(0); i < n.ChildCount(); i++ {
		walk(n.Child(i), f, childExported)
	}
}

func recordDeclaration(n *sitter.Node, f *File, kind DeclKind, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	f.Declarations = append(f.Declarations, &Declaration{
		Kind:     kind,
		Name:     text(nameNode, f.Source),
		Pos:      posOf(n),
		Node:     n,
		Exported: exported,
	})
}

func recordImport(n *sitter.Node, f *File) {
	imp := &Import{Pos: posOf(n)}

	if clause := findDescendant(n, "import_clause"); clause != nil {
		imp.Names = collectImportNames(clause, f.Source)
	}
	if s := findDescendant(n, "string_fragment"); s != nil {
		imp.Specifier = text(s, f.Source)
	}
	f.Imports = append(f.Imports, imp)
}

func collectImportNames(clause *sitter.Node, source []byte) []ImportSpecifier {
	var out []ImportSpecifier
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "identifier":
			// default import: `import Foo from '...'`
			out = append(out, ImportSpecifier{LocalName: text(child, source), IsDefault: true})
		case "namespace_import":
			if id := findDescendant(child, "identifier"); id != nil {
				out = append(out, ImportSpecifier{LocalName: text(id, source), IsNamespace: true})
			}
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec.Kind() != "import_specifier" {
					continue
				}
				out = append(out, importSpecifierFrom(spec, source))
			}
		}
	}
	return out
}

func importSpecifierFrom(spec *sitter.Node, source []byte) ImportSpecifier {
	nameNode := spec.ChildByFieldName("name")
	aliasNode := spec.ChildByFieldName("alias")
	imported := ""
	if nameNode != nil {
		imported = text(nameNode, source)
	}
	local := imported
	if aliasNode != nil {
		local = text(aliasNode, source)
	}
	return ImportSpecifier{ImportedName: imported, LocalName: local}
}

// recordExportStatement handles only the re-export shapes
// (`export { X } from '...'`, `export * from '...'`). A plain
// `export interface/type/enum ...` is handled by the exported-context
// flag threaded through walk, since the declaration is a direct child.
func recordExportStatement(n *sitter.Node, f *File) {
	src := n.ChildByFieldName("source")
	if src == nil {
		return
	}
	re := &ReExport{Pos: posOf(n)}
	if s := findDescendant(src, "string_fragment"); s != nil {
		re.Specifier = text(s, f.Source)
	}
	if clause := findDescendant(n, "export_clause"); clause != nil {
		for i := uint(0); i < clause.ChildCount(); i++ {
			spec := clause.Child(i)
			if spec.Kind() == "export_specifier" {
				re.Names = append(re.Names, importSpecifierFrom(spec, f.Source))
			}
		}
	}
	f.ReExports = append(f.ReExports, re)
}

func recordCall(n *sitter.Node, f *File) {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" {
		return
	}
	f.Calls = append(f.Calls, &CallRef{Callee: text(callee, f.Source), Pos: posOf(n)})
}

func findDescendant(n *sitter.Node, kind string) *sitter.Node {
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
