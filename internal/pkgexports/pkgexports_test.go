package pkgexports

import "testing"

func TestResolveStringExports(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`"./dist/index.d.ts"`)}
	target, ok := pkg.Resolve(".", nil)
	if !ok || target != "./dist/index.d.ts" {
		t.Fatalf("Resolve(.) = %q, %v", target, ok)
	}
}

func TestResolveSubpathExports(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`{
		".": "./dist/index.d.ts",
		"./entities": "./dist/entities.d.ts"
	}`)}
	target, ok := pkg.Resolve("./entities", nil)
	if !ok || target != "./dist/entities.d.ts" {
		t.Fatalf("Resolve(./entities) = %q, %v", target, ok)
	}
}

func TestResolveWildcardExports(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`{
		"./*": "./dist/*.d.ts",
		"./entities/*": "./dist/entities/*.d.ts"
	}`)}
	// longest-prefix match should prefer "./entities/*" over "./*"
	target, ok := pkg.Resolve("./entities/user", nil)
	if !ok || target != "./dist/entities/user.d.ts" {
		t.Fatalf("Resolve(./entities/user) = %q, %v", target, ok)
	}
}

func TestResolveConditionMap(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`{
		".": {
			"types": "./dist/index.d.ts",
			"import": "./dist/index.mjs",
			"default": "./dist/index.js"
		}
	}`)}
	target, ok := pkg.Resolve(".", nil)
	if !ok || target != "./dist/index.d.ts" {
		t.Fatalf("Resolve(.) = %q, %v, want types entry preferred", target, ok)
	}
}

func TestResolveCustomCondition(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`{
		".": {
			"dev": "./dist/dev.d.ts",
			"types": "./dist/index.d.ts"
		}
	}`)}
	target, ok := pkg.Resolve(".", []string{"dev"})
	if !ok || target != "./dist/dev.d.ts" {
		t.Fatalf("Resolve(.) with dev condition = %q, %v", target, ok)
	}
}

func TestResolveFallsBackToTypes(t *testing.T) {
	pkg := &PackageJSON{Types: "./index.d.ts", Main: "./index.js"}
	target, ok := pkg.Resolve(".", nil)
	if !ok || target != "./index.d.ts" {
		t.Fatalf("Resolve(.) fallback = %q, %v", target, ok)
	}
}

func TestResolveUnknownSubpathFails(t *testing.T) {
	pkg := &PackageJSON{Exports: []byte(`{".": "./index.d.ts"}`)}
	if _, ok := pkg.Resolve("./missing", nil); ok {
		t.Fatal("expected Resolve to fail for unmapped subpath")
	}
}
