// Package sourceset expands the configured source glob into the
// deterministic, lexicographically sorted list of files bagsakan scans for
// validator declarations. Matching is done with the same globbing
// library the rest of this codebase's family uses for pattern work,
// github.com/gobwas/glob.
package sourceset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// File is one member of the source set: its absolute path and its
// already-read, UTF-8-validated content.
type File struct {
	Path    string // absolute path
	Content []byte
}

// ReadError reports a source file that could not be read or was not valid
// UTF-8.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Build expands pattern (relative to root) into the sorted list of
// matching files, reading each one's contents. node_modules directories
// are never descended into, matching Node.js resolution conventions for
// a project's own source tree.
func Build(root, pattern string) ([]File, error) {
	root = filepath.Clean(root)
	g, err := glob.Compile(filepath.ToSlash(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid sourceFiles pattern %q: %w", pattern, err)
	}
	// "**/" also stands for no directory at all, so "src/**/*.ts" matches
	// "src/a.ts" as well as "src/nested/c.ts".
	var flat glob.Glob
	if slashed := filepath.ToSlash(pattern); strings.Contains(slashed, "**/") {
		flat, err = glob.Compile(strings.ReplaceAll(slashed, "**/", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid sourceFiles pattern %q: %w", pattern, err)
		}
	}

	var matches []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if g.Match(rel) || (flat != nil && flat.Match(rel)) {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %q: %w", root, walkErr)
	}

	sort.Strings(matches)

	files := make([]File, 0, len(matches))
	for _, path := range matches {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, &ReadError{Path: abs, Err: err}
		}
		if !utf8.Valid(data) {
			return nil, &ReadError{Path: abs, Err: fmt.Errorf("not valid UTF-8")}
		}
		files = append(files, File{Path: abs, Content: data})
	}
	return files, nil
}
