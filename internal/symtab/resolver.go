package symtab

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/insidewhy/bagsakan/internal/pkgexports"
)

// FileResolver turns an import specifier, relative to the file that names
// it, into the absolute path of the file that declares the imported symbols.
// Bare (non-relative) specifiers are resolved through node_modules and the
// target package's package.json, mirroring Node.js package-exports
// resolution.
type FileResolver struct {
	FollowExternalImports bool
	ExcludePackages       []string
	Conditions            []string
}

var relativeExtensionCandidates = []string{"", ".ts", ".tsx", ".d.ts", "/index.ts", "/index.d.ts"}

// Resolve returns the absolute file path a specifier refers to, and whether
// the specifier is "bare" (a package import, for module-id purposes) as
// opposed to relative.
func (r *FileResolver) Resolve(fromDir, specifier string) (absPath string, bare bool, err error) {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		path, err := resolveRelative(fromDir, specifier)
		return path, false, err
	}
	path, err := r.resolveBare(fromDir, specifier)
	return path, true, err
}

func resolveRelative(fromDir, specifier string) (string, error) {
	base := filepath.Join(fromDir, specifier)
	bases := []string{base}
	if strings.HasSuffix(base, ".js") {
		// "./models.js" also names the TypeScript source "./models.ts".
		bases = append(bases, strings.TrimSuffix(base, ".js"))
	}
	for _, b := range bases {
		for _, suffix := range relativeExtensionCandidates {
			candidate := b + suffix
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("could not resolve relative import %q from %q", specifier, fromDir)
}

// resolveBare resolves "pkg", "@scope/pkg", "pkg/sub", "@scope/pkg/sub".
func (r *FileResolver) resolveBare(fromDir, specifier string) (string, error) {
	if !r.FollowExternalImports {
		return "", fmt.Errorf("external imports disabled: %q", specifier)
	}

	pkgName, subpath := splitPackageSpecifier(specifier)
	if r.isExcluded(pkgName) {
		return "", fmt.Errorf("package excluded: %q", pkgName)
	}

	pkgDir, err := findPackageDir(fromDir, pkgName)
	if err != nil {
		return "", err
	}

	pkg, err := pkgexports.Load(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return "", fmt.Errorf("no package.json for %q: %w", pkgName, err)
	}

	target, ok := pkg.Resolve(subpath, r.Conditions)
	if !ok {
		// A subpath package.json does not map is probed directly under the
		// package root.
		if subpath != "." {
			base := pkgexports.JoinPackageRelative(pkgDir, subpath)
			for _, suffix := range []string{".d.ts", ".ts"} {
				if info, err := os.Stat(base + suffix); err == nil && !info.IsDir() {
					return base + suffix, nil
				}
			}
		}
		return "", fmt.Errorf("no .d.ts found for %q in package %q", subpath, pkgName)
	}

	resolved := pkgexports.JoinPackageRelative(pkgDir, target)
	if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
		return resolved, nil
	}
	for _, suffix := range []string{".ts", ".d.ts"} {
		candidate := resolved + suffix
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no .d.ts found for %q in package %q", subpath, pkgName)
}

func (r *FileResolver) isExcluded(pkgName string) bool {
	for _, excluded := range r.ExcludePackages {
		if pkgName == excluded || strings.HasPrefix(pkgName, excluded+"/") {
			return true
		}
	}
	return false
}

// splitPackageSpecifier splits "pkg/sub/path" into ("pkg", "./sub/path")
// and "@scope/pkg/sub" into ("@scope/pkg", "./sub").
func splitPackageSpecifier(specifier string) (pkgName, subpath string) {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		pkgName = parts[0] + "/" + parts[1]
		rest := parts[2:]
		if len(rest) == 0 {
			return pkgName, "."
		}
		return pkgName, "./" + strings.Join(rest, "/")
	}
	pkgName = parts[0]
	rest := parts[1:]
	if len(rest) == 0 {
		return pkgName, "."
	}
	return pkgName, "./" + strings.Join(rest, "/")
}

// findPackageDir walks up from fromDir looking for node_modules/<pkgName>.
func findPackageDir(fromDir, pkgName string) (string, error) {
	dir := fromDir
	for {
		candidate := filepath.Join(dir, "node_modules", pkgName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("package not found: %q", pkgName)
}
