// Package symtab builds the cross-file symbol table the resolver and
// synthesizer consult to turn a name into the declaration it refers to:
// (module-id, exported-name) -> Declaration, following relative and bare
// imports, re-export chains, and wildcard re-exports, and flagging
// conflicting or circular bindings along the way.
package symtab

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/insidewhy/bagsakan/internal/diagnostic"
	"github.com/insidewhy/bagsakan/internal/tsast"
)

// Declaration pairs a parsed tsast.Declaration with the module-id it
// belongs to, so downstream consumers don't need to carry both separately.
type Declaration struct {
	*tsast.Declaration
	ModuleID string
	File     string // absolute disk path the declaration was parsed from
}

type aliasTarget struct {
	ModuleID string
	Name     string
}

// Table is the fully-indexed, queryable symbol table for one source set.
type Table struct {
	resolver *FileResolver

	// decls maps "<moduleID>\x00<name>" to the owning declaration.
	decls map[string]*Declaration

	// aliases maps a module's local name to where it actually comes from,
	// populated from import statements and named re-exports.
	aliases map[string]map[string]aliasTarget

	// wildcards maps a module-id to the list of module-ids it re-exports
	// everything from (`export * from '...'`).
	wildcards map[string][]string

	// files maps module-id to the parsed file, once loaded.
	files map[string]*tsast.File

	// fileModuleID maps an absolute disk path to the module-id it was
	// first reached under (itself, for user source; the bare specifier
	// used to import it, for a package file).
	fileModuleID map[string]string
}

// NewTable constructs an empty table bound to a resolver for import
// specifiers.
func NewTable(resolver *FileResolver) *Table {
	return &Table{
		resolver:     resolver,
		decls:        map[string]*Declaration{},
		aliases:      map[string]map[string]aliasTarget{},
		wildcards:    map[string][]string{},
		files:        map[string]*tsast.File{},
		fileModuleID: map[string]string{},
	}
}

func key(moduleID, name string) string {
	return moduleID + "\x00" + name
}

// AddSourceFile registers a user source file under its own absolute path
// as module-id. Source files are always reached this way, never through a
// bare specifier, since the source set is enumerated directly.
func (t *Table) AddSourceFile(absPath string, f *tsast.File) {
	t.fileModuleID[absPath] = absPath
	t.indexFile(absPath, f)
}

func (t *Table) indexFile(moduleID string, f *tsast.File) {
	if _, ok := t.files[moduleID]; ok {
		return
	}
	t.files[moduleID] = f

	for _, d := range f.Declarations {
		if !d.Exported {
			continue
		}
		t.decls[key(moduleID, d.Name)] = &Declaration{Declaration: d, ModuleID: moduleID, File: f.Path}
	}

	if t.aliases[moduleID] == nil {
		t.aliases[moduleID] = map[string]aliasTarget{}
	}

	for _, imp := range f.Imports {
		targetModuleID, err := t.resolveAndLoad(f.Path, imp.Specifier)
		if err != nil {
			continue
		}
		for _, spec := range imp.Names {
			if spec.IsNamespace {
				continue // namespace imports get no alias entry; names reached through them do not resolve
			}
			importedName := spec.ImportedName
			if spec.IsDefault {
				importedName = "default"
			}
			t.aliases[moduleID][spec.LocalName] = aliasTarget{ModuleID: targetModuleID, Name: importedName}
		}
	}

	for _, re := range f.ReExports {
		targetModuleID, err := t.resolveAndLoad(f.Path, re.Specifier)
		if err != nil {
			continue
		}
		if len(re.Names) == 0 {
			t.wildcards[moduleID] = append(t.wildcards[moduleID], targetModuleID)
			continue
		}
		for _, spec := range re.Names {
			exportedAs := spec.LocalName
			t.aliases[moduleID][exportedAs] = aliasTarget{ModuleID: targetModuleID, Name: spec.ImportedName}
		}
	}
}

// resolveAndLoad resolves an import/re-export specifier to a module-id,
// parsing and indexing the target file on first reference.
func (t *Table) resolveAndLoad(fromFile, specifier string) (string, error) {
	fromDir := filepath.Dir(fromFile)
	absPath, bare, err := t.resolver.Resolve(fromDir, specifier)
	if err != nil {
		return "", err
	}

	moduleID, ok := t.fileModuleID[absPath]
	if !ok {
		if bare {
			moduleID = canonicalPackageModuleID(specifier)
		} else {
			moduleID = absPath
		}
		t.fileModuleID[absPath] = moduleID
	}

	if _, loaded := t.files[moduleID]; !loaded {
		parsed, err := loadAndParse(absPath)
		if err != nil {
			return "", err
		}
		t.indexFile(moduleID, parsed)
	}

	return moduleID, nil
}

// canonicalPackageModuleID strips any subpath suffix variance so that two
// specifiers resolving to the same package+subpath agree on a module-id
// (e.g. both "pkg/entities" and "pkg/entities.ts" normalize the same way,
// since the bare specifier text itself is already the canonical form).
func canonicalPackageModuleID(specifier string) string {
	return strings.TrimSuffix(specifier, "/")
}

const maxAliasChainLength = 64

// Resolve follows aliases, named re-exports, and wildcard re-exports to
// find the Declaration a name refers to within a module, detecting cycles
// (CircularImport) and ambiguous wildcard origins (Conflict).
func (t *Table) Resolve(moduleID, name string) (*Declaration, *diagnostic.Diagnostic) {
	visited := map[string]bool{}
	for steps := 0; steps < maxAliasChainLength; steps++ {
		visitKey := key(moduleID, name)
		if visited[visitKey] {
			return nil, &diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Category: diagnostic.CategoryCircularImport,
				Message:  fmt.Sprintf("circular import chain resolving %q", name),
			}
		}
		visited[visitKey] = true

		if d, ok := t.decls[visitKey]; ok {
			return d, nil
		}

		if alias, ok := t.aliases[moduleID][name]; ok {
			moduleID, name = alias.ModuleID, alias.Name
			continue
		}

		if found, diag := t.resolveViaWildcards(moduleID, name, visited); found != nil || diag != nil {
			return found, diag
		}

		return nil, nil
	}
	return nil, &diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Category: diagnostic.CategoryCircularImport,
		Message:  fmt.Sprintf("import chain resolving %q exceeded %d hops", name, maxAliasChainLength),
	}
}

func (t *Table) resolveViaWildcards(moduleID, name string, visited map[string]bool) (*Declaration, *diagnostic.Diagnostic) {
	var found *Declaration
	var foundVia string
	for _, target := range t.wildcards[moduleID] {
		if visited[key(target, name)] {
			continue
		}
		d, diag := t.Resolve(target, name)
		if diag != nil {
			return nil, diag
		}
		if d == nil {
			continue
		}
		if found != nil && found.ModuleID != d.ModuleID {
			return nil, &diagnostic.Diagnostic{
				Severity: diagnostic.SeverityError,
				Category: diagnostic.CategoryConflict,
				Message:  fmt.Sprintf("%q is re-exported from both %q and %q via wildcard exports", name, foundVia, target),
			}
		}
		found = d
		foundVia = target
	}
	return found, nil
}

// File returns the parsed file behind a module-id, if loaded.
func (t *Table) File(moduleID string) (*tsast.File, bool) {
	f, ok := t.files[moduleID]
	return f, ok
}
