package tsast

import "testing"

func TestParseInterfaceDeclaration(t *testing.T) {
	src := []byte(`export interface User {
	id: number;
	name: string;
	tags?: string[];
}`)
	f, err := Parse("models.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Declarations) != 1 {
		t.Fatalf("Declarations = %d, want 1", len(f.Declarations))
	}
	d := f.Declarations[0]
	if d.Kind != DeclInterface || d.Name != "User" || !d.Exported {
		t.Errorf("declaration = %+v", d)
	}
}

func TestParseNonExportedDeclaration(t *testing.T) {
	src := []byte(`interface Internal { x: number }`)
	f, err := Parse("models.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Declarations) != 1 || f.Declarations[0].Exported {
		t.Fatalf("declaration should be unexported: %+v", f.Declarations)
	}
}

func TestParseEnumAndTypeAlias(t *testing.T) {
	src := []byte(`
export enum Status { Pending = 'pending', Completed = 'completed' }
export type ID = string | number;
`)
	f, err := Parse("models.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Declarations) != 2 {
		t.Fatalf("Declarations = %d, want 2", len(f.Declarations))
	}
	if f.Declarations[0].Kind != DeclEnum || f.Declarations[0].Name != "Status" {
		t.Errorf("first decl = %+v", f.Declarations[0])
	}
	if f.Declarations[1].Kind != DeclTypeAlias || f.Declarations[1].Name != "ID" {
		t.Errorf("second decl = %+v", f.Declarations[1])
	}
}

func TestParseImports(t *testing.T) {
	src := []byte(`
import { User, Status as St } from './models';
import Default from './default';
import * as NS from './ns';
`)
	f, err := Parse("index.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Imports) != 3 {
		t.Fatalf("Imports = %d, want 3", len(f.Imports))
	}
	if f.Imports[0].Specifier != "./models" || len(f.Imports[0].Names) != 2 {
		t.Errorf("first import = %+v", f.Imports[0])
	}
	if f.Imports[0].Names[1].ImportedName != "Status" || f.Imports[0].Names[1].LocalName != "St" {
		t.Errorf("aliased import = %+v", f.Imports[0].Names[1])
	}
	if !f.Imports[1].Names[0].IsDefault {
		t.Errorf("second import should be default: %+v", f.Imports[1])
	}
	if !f.Imports[2].Names[0].IsNamespace {
		t.Errorf("third import should be namespace: %+v", f.Imports[2])
	}
}

func TestParseReExport(t *testing.T) {
	src := []byte(`export { User } from './models';
export * from './everything';`)
	f, err := Parse("index.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.ReExports) != 2 {
		t.Fatalf("ReExports = %d, want 2", len(f.ReExports))
	}
	if f.ReExports[0].Specifier != "./models" || len(f.ReExports[0].Names) != 1 {
		t.Errorf("first re-export = %+v", f.ReExports[0])
	}
	if f.ReExports[1].Specifier != "./everything" || len(f.ReExports[1].Names) != 0 {
		t.Errorf("second re-export = %+v", f.ReExports[1])
	}
}

func TestParseCallsAnywhere(t *testing.T) {
	src := []byte(`
function handler() {
	if (true) {
		return validateUser(x);
	}
}
const y = [validateOrder(a), obj.validateIgnored(b)];
`)
	f, err := Parse("handler.ts", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var callees []string
	for _, c := range f.Calls {
		callees = append(callees, c.Callee)
	}
	want := map[string]bool{"validateUser": true, "validateOrder": true}
	found := map[string]bool{}
	for _, c := range callees {
		found[c] = true
	}
	for w := range want {
		if !found[w] {
			t.Errorf("expected call %q in %v", w, callees)
		}
	}
	for _, c := range callees {
		if c == "validateIgnored" {
			t.Error("member-expression callee should not be recorded as a bare identifier call")
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	src := []byte(`export interface User { id: `)
	if _, err := Parse("broken.ts", src); err == nil {
		t.Error("expected a ParseError for malformed source")
	}
}
