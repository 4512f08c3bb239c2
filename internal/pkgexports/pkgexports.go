// Package pkgexports resolves bare module specifiers ("pkg", "pkg/entities")
// against a package.json's "exports" field, falling back to "types",
// "typings", and "main". Subpath matching follows the same longest-prefix,
// longest-suffix-tiebreak wildcard algorithm Node.js uses for package-exports
// patterns — adapted from the tsconfig-paths wildcard matcher used elsewhere
// in this codebase for import-alias resolution.
package pkgexports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PackageJSON is the subset of package.json fields relevant to resolution.
type PackageJSON struct {
	Name    string          `json:"name"`
	Exports json.RawMessage `json:"exports"`
	Types   string          `json:"types"`
	Typings string          `json:"typings"`
	Main    string          `json:"main"`
}

// Load reads and parses a package.json file.
func Load(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading package.json %q: %w", path, err)
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json %q: %w", path, err)
	}
	return &pkg, nil
}

// Resolve resolves a subpath ("." for the package root, "./entities" for a
// subpath import) to a file path relative to the package directory, consulting
// exports first, then types/typings/main. conditions is consulted, in order,
// before the fixed fallback set "types", "import", "node", "default".
//
// Returns "", false if the subpath cannot be resolved from any source.
func (pkg *PackageJSON) Resolve(subpath string, conditions []string) (string, bool) {
	if len(pkg.Exports) > 0 {
		if target, ok := resolveExports(pkg.Exports, subpath, conditions); ok {
			return target, true
		}
	}

	if subpath != "." && subpath != "./" {
		return "", false
	}

	for _, candidate := range []string{pkg.Types, pkg.Typings, pkg.Main} {
		if candidate != "" {
			return candidate, true
		}
	}
	return "", false
}

// resolveExports interprets the raw "exports" field, which may be:
//   - a plain string (single entry point)
//   - a map of subpaths ("." , "./entities") to string or condition-map
//   - a map of condition names directly (when the package has one entry point)
func resolveExports(raw json.RawMessage, subpath string, conditions []string) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if subpath == "." || subpath == "./" {
			return asString, true
		}
		return "", false
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return "", false
	}

	if looksLikeSubpathMap(asMap) {
		return resolveSubpathMap(asMap, subpath, conditions)
	}

	if subpath != "." && subpath != "./" {
		return "", false
	}
	return resolveConditionMap(asMap, conditions)
}

func looksLikeSubpathMap(m map[string]json.RawMessage) bool {
	for key := range m {
		if key == "." || strings.HasPrefix(key, "./") {
			return true
		}
	}
	return false
}

func resolveSubpathMap(m map[string]json.RawMessage, subpath string, conditions []string) (string, bool) {
	normalized := subpath
	if normalized == "" {
		normalized = "."
	}
	if normalized != "." && !strings.HasPrefix(normalized, "./") {
		normalized = "./" + normalized
	}

	if raw, ok := m[normalized]; ok {
		return resolveEntry(raw, conditions)
	}

	type wildcardMatch struct {
		prefix, suffix string
		raw            json.RawMessage
	}

	longestPrefixLen := -1
	longestSuffixLen := -1
	var best wildcardMatch
	found := false

	patternKeys := make([]string, 0, len(m))
	for k := range m {
		patternKeys = append(patternKeys, k)
	}
	sort.Strings(patternKeys)

	for _, key := range patternKeys {
		starIdx := strings.IndexByte(key, '*')
		if starIdx < 0 {
			continue
		}
		prefix := key[:starIdx]
		suffix := key[starIdx+1:]
		if strings.HasPrefix(normalized, prefix) && strings.HasSuffix(normalized, suffix) &&
			len(normalized) >= len(prefix)+len(suffix) {
			if len(prefix) > longestPrefixLen ||
				(len(prefix) == longestPrefixLen && len(suffix) > longestSuffixLen) {
				longestPrefixLen = len(prefix)
				longestSuffixLen = len(suffix)
				best = wildcardMatch{prefix: prefix, suffix: suffix, raw: m[key]}
				found = true
			}
		}
	}

	if !found {
		return "", false
	}

	matchedText := normalized[len(best.prefix) : len(normalized)-len(best.suffix)]
	target, ok := resolveEntry(best.raw, conditions)
	if !ok {
		return "", false
	}
	return strings.Replace(target, "*", matchedText, 1), true
}

func resolveEntry(raw json.RawMessage, conditions []string) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, true
	}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return "", false
	}
	return resolveConditionMap(asMap, conditions)
}

func resolveConditionMap(m map[string]json.RawMessage, conditions []string) (string, bool) {
	order := append(append([]string{}, conditions...), "types", "import", "node", "default")
	for _, cond := range order {
		if raw, ok := m[cond]; ok {
			if s, ok := resolveEntry(raw, conditions); ok {
				return s, true
			}
		}
	}
	return "", false
}

// JoinPackageRelative joins a package directory with a resolved relative
// target, cleaning the result (the target may be "./dist/entities.d.ts").
func JoinPackageRelative(packageDir, target string) string {
	target = strings.TrimPrefix(target, "./")
	return filepath.Join(packageDir, target)
}
