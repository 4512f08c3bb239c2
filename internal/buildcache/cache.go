// Package buildcache lets bagsakan skip a full parse-resolve-synthesize run
// when nothing relevant has changed since the last run.
//
// A run can be skipped only if the config file AND the combined hash of every
// source file bagsakan would read are byte-identical to the last successful
// run, AND the validator file still exists on disk (nothing else may have
// deleted or hand-edited it away).
//
// The cache is intentionally conservative: if ANY check fails, the full
// pipeline runs from scratch.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SchemaVersion is bumped when the cache format changes. A mismatch forces a
// full rebuild, so a binary upgrade never trusts a cache file written by an
// older version's (possibly differently-shaped) output.
const SchemaVersion = 1

// Cache records what was true the last time bagsakan ran to completion.
type Cache struct {
	V int `json:"v"`

	// ConfigHash is the SHA-256 hex digest of bagsakan.toml's content.
	// Empty means no config file was used (pure defaults).
	ConfigHash string `json:"configHash"`

	// SourcesHash is HashAll of every scanned source file's HashFile digest,
	// in sorted-path order, summarizing the whole source set in one value.
	SourcesHash string `json:"sourcesHash"`

	// Outputs holds the absolute paths that must still exist on disk for the
	// cache to be trusted — for bagsakan, always the single validator file.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file path alongside the validator file: for
// "src/validators.ts" that's "src/validators.bagsakan-cache", so deleting the
// validator file also orphans (and thus implicitly invalidates) the cache.
func CachePath(validatorFile string) string {
	dir := filepath.Dir(validatorFile)
	base := filepath.Base(validatorFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, name+".bagsakan-cache")
}

// Evaluate loads the cache at path and checks it against the current config
// and source hashes. On a hit it returns the loaded Cache and an empty stale
// reason. On a miss it returns a nil Cache and a short human-readable reason
// suitable for a progress message, so the CLI can say why it's rebuilding
// rather than just that it is.
func Evaluate(path, configHash, sourcesHash string) (cache *Cache, staleReason string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "no cache file found"
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, "cache file is not valid JSON"
	}

	switch {
	case c.V != SchemaVersion:
		return nil, "cache schema version changed"
	case c.ConfigHash != configHash:
		return nil, "config changed since the last run"
	case c.SourcesHash != sourcesHash:
		return nil, "source files changed since the last run"
	}

	for _, out := range c.Outputs {
		if _, err := os.Stat(out); err != nil {
			return nil, fmt.Sprintf("output %s is missing", out)
		}
	}

	return &c, ""
}

// Save writes the cache to disk atomically: it creates a temp file in the
// same directory as path (so the rename below is guaranteed to be on one
// filesystem) and renames it into place once the write succeeds. Callers may
// treat a Save failure as non-fatal — it only costs the next run the
// opportunity to skip work, it can't corrupt an existing cache file.
func Save(path string, cache *Cache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if writeErr != nil {
			return fmt.Errorf("writing cache temp file: %w", writeErr)
		}
		return fmt.Errorf("closing cache temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the cache file from disk. A missing file is not an error.
func Delete(path string) {
	os.Remove(path)
}

// HashAll combines several content hashes into one digest, used to collapse
// an entire source set's per-file hashes into a single comparable value.
func HashAll(hashes []string) string {
	h := sha256.New()
	for _, hh := range hashes {
		h.Write([]byte(hh))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashFile returns the SHA-256 hex digest of a file's contents, or "" if it
// can't be read — an unreadable file can never match a cached hash, so the
// caller's comparison naturally falls through to "changed".
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// New builds a Cache recording a successful run, ready to Save.
func New(configHash, sourcesHash string, outputs []string) *Cache {
	return &Cache{V: SchemaVersion, ConfigHash: configHash, SourcesHash: sourcesHash, Outputs: outputs}
}
