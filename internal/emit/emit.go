// Package emit writes the final validator file: deduplicated type
// imports, alphabetically ordered functions, and an atomic write that
// skips touching the file when nothing changed.
package emit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/insidewhy/bagsakan/internal/predicate"
)

// ImportedType is one named import the synthesized functions depend on.
type ImportedType struct {
	Name     string
	ModuleID string // absolute file path, or a bare package specifier
}

// Options controls output formatting.
type Options struct {
	ValidatorFile   string
	UseJsExtensions bool
}

// Render produces the full file content for the given functions and their
// required imports, relative to where the output file will live.
func Render(fns []predicate.Function, opts Options) string {
	imports := collectImports(fns)
	var buf bytes.Buffer

	buf.WriteString("// Code generated by bagsakan. DO NOT EDIT.\n\n")

	outDir := filepath.Dir(opts.ValidatorFile)
	for _, group := range groupImportsByModule(imports) {
		spec := specifierFor(group.moduleID, outDir, opts.UseJsExtensions)
		names := strings.Join(group.names, ", ")
		fmt.Fprintf(&buf, "import type { %s } from %q;\n", names, spec)
	}
	if len(imports) > 0 {
		buf.WriteString("\n")
	}

	sorted := make([]predicate.Function, len(fns))
	copy(sorted, fns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for i, fn := range sorted {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeFunction(&buf, fn)
	}

	return buf.String()
}

func writeFunction(buf *bytes.Buffer, fn predicate.Function) {
	keyword := "function"
	if fn.Exported {
		keyword = "export function"
	}
	typeName := fn.ID.Name
	fmt.Fprintf(buf, "%s %s(data: unknown): data is %s {\n", keyword, fn.Name, typeName)
	fmt.Fprintf(buf, "\treturn %s;\n", predicate.Render(fn.Body, "data"))
	buf.WriteString("}\n")
}

type importGroup struct {
	moduleID string
	names    []string
}

func collectImports(fns []predicate.Function) []ImportedType {
	var out []ImportedType
	seen := map[string]bool{}
	for _, fn := range fns {
		key := fn.ID.ModuleID + "\x00" + fn.ID.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ImportedType{Name: fn.ID.Name, ModuleID: fn.ID.ModuleID})
	}
	return out
}

func groupImportsByModule(imports []ImportedType) []importGroup {
	byModule := map[string][]string{}
	var modules []string
	for _, imp := range imports {
		if _, ok := byModule[imp.ModuleID]; !ok {
			modules = append(modules, imp.ModuleID)
		}
		byModule[imp.ModuleID] = append(byModule[imp.ModuleID], imp.Name)
	}
	sort.Strings(modules)

	groups := make([]importGroup, 0, len(modules))
	for _, m := range modules {
		names := byModule[m]
		sort.Strings(names)
		groups = append(groups, importGroup{moduleID: m, names: names})
	}
	return groups
}

// specifierFor renders the import specifier for a module-id relative to
// the output file's directory. Bare package module-ids are emitted as-is;
// file module-ids become relative specifiers, optionally suffixed with
// ".js" when useJsExtensions is set.
func specifierFor(moduleID, outDir string, useJsExtensions bool) string {
	if !filepath.IsAbs(moduleID) {
		return moduleID
	}
	rel, err := filepath.Rel(outDir, moduleID)
	if err != nil {
		rel = moduleID
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	if useJsExtensions {
		rel += ".js"
	}
	return rel
}

// Write atomically writes content to path, skipping the write entirely if
// the existing file's content is already byte-identical.
func Write(path, content string) (wrote bool, err error) {
	if existing, err := os.ReadFile(path); err == nil {
		if string(existing) == content {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("creating output directory %q: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("writing temp output file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("renaming output file: %w", err)
	}
	return true, nil
}
