package symtab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/insidewhy/bagsakan/internal/tsast"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTable() *Table {
	return NewTable(&FileResolver{FollowExternalImports: true})
}

func TestResolveLocalDeclaration(t *testing.T) {
	f, err := tsast.Parse("/src/models.ts", []byte(`export interface User { id: number }`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := newTable()
	table.AddSourceFile("/src/models.ts", f)

	decl, diag := table.Resolve("/src/models.ts", "User")
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %+v", diag)
	}
	if decl == nil || decl.Name != "User" {
		t.Fatalf("decl = %+v", decl)
	}
}

func TestResolveThroughImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.ts"), `export interface User { id: number }`)
	writeFile(t, filepath.Join(dir, "handler.ts"), `import { User } from './models';`)

	handlerSrc, _ := os.ReadFile(filepath.Join(dir, "handler.ts"))
	handlerAST, err := tsast.Parse(filepath.Join(dir, "handler.ts"), handlerSrc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := newTable()
	table.AddSourceFile(filepath.Join(dir, "handler.ts"), handlerAST)

	decl, diag := table.Resolve(filepath.Join(dir, "handler.ts"), "User")
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %+v", diag)
	}
	if decl == nil || decl.Name != "User" {
		t.Fatalf("decl = %+v", decl)
	}
}

func TestResolveThroughReExportChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.ts"), `export interface User { id: number }`)
	writeFile(t, filepath.Join(dir, "index.ts"), `export { User } from './models';`)
	writeFile(t, filepath.Join(dir, "handler.ts"), `import { User } from './index';`)

	handlerSrc, _ := os.ReadFile(filepath.Join(dir, "handler.ts"))
	handlerAST, err := tsast.Parse(filepath.Join(dir, "handler.ts"), handlerSrc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := newTable()
	table.AddSourceFile(filepath.Join(dir, "handler.ts"), handlerAST)

	decl, diag := table.Resolve(filepath.Join(dir, "handler.ts"), "User")
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %+v", diag)
	}
	if decl == nil || decl.ModuleID != filepath.Join(dir, "models.ts") {
		t.Fatalf("decl = %+v", decl)
	}
}

func TestResolveWildcardReExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models.ts"), `export interface User { id: number }`)
	writeFile(t, filepath.Join(dir, "everything.ts"), `export * from './models';`)
	writeFile(t, filepath.Join(dir, "handler.ts"), `import { User } from './everything';`)

	handlerSrc, _ := os.ReadFile(filepath.Join(dir, "handler.ts"))
	handlerAST, err := tsast.Parse(filepath.Join(dir, "handler.ts"), handlerSrc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := newTable()
	table.AddSourceFile(filepath.Join(dir, "handler.ts"), handlerAST)

	decl, diag := table.Resolve(filepath.Join(dir, "handler.ts"), "User")
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %+v", diag)
	}
	if decl == nil {
		t.Fatal("expected User to resolve through a wildcard re-export")
	}
}

func TestResolveUnresolvedReturnsNilWithoutDiagnostic(t *testing.T) {
	f, err := tsast.Parse("/src/handler.ts", []byte(`import { Missing } from './nowhere';`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := newTable()
	table.AddSourceFile("/src/handler.ts", f)

	decl, diag := table.Resolve("/src/handler.ts", "Missing")
	if diag != nil {
		t.Fatalf("unresolved import should degrade gracefully, not diagnose at this layer: %+v", diag)
	}
	if decl != nil {
		t.Fatalf("expected nil declaration for an unresolvable import, got %+v", decl)
	}
}

func TestResolveCircularAliasChain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.ts"), "export { X } from './b';")
	writeFile(t, filepath.Join(dir, "b.ts"), "export { X } from './a';")

	aSrc, _ := os.ReadFile(filepath.Join(dir, "a.ts"))
	aAST, err := tsast.Parse(filepath.Join(dir, "a.ts"), aSrc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := newTable()
	table.AddSourceFile(filepath.Join(dir, "a.ts"), aAST)

	_, diag := table.Resolve(filepath.Join(dir, "a.ts"), "X")
	if diag == nil {
		t.Fatal("expected a CircularImport diagnostic")
	}
}
