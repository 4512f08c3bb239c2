package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics by the kind of failure they report, one
// per pipeline stage that can fail independently of the others.
type Category string

const (
	CategoryConfigError     Category = "config-error"
	CategoryReadError       Category = "read-error"
	CategoryParseError      Category = "parse-error"
	CategoryUnresolved      Category = "unresolved"
	CategoryConflict        Category = "conflict"
	CategoryUnsupportedType Category = "unsupported-type"
	CategoryWriteError      Category = "write-error"
	CategoryCircularImport  Category = "circular-import"
)

// fatal reports whether a diagnostic in this category aborts the whole run
// regardless of severity, rather than just causing the one validator or
// file it names to be skipped.
func (c Category) fatal() bool {
	return c == CategoryParseError || c == CategoryConflict || c == CategoryConfigError
}

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	File     string // source file path
	Line     int    // 1-based line number (0 = unknown)
	Column   int    // 1-based column number (0 = unknown)
	Message  string
	Hint     string // optional suggestion for fixing the issue
}

// Fatal reports whether this diagnostic should abort the build rather than
// merely cause the affected validator or file to be omitted from the run.
func (d Diagnostic) Fatal() bool {
	return d.Severity == SeverityError && d.Category.fatal()
}

// String formats the diagnostic as "file:line:col - severity: [category] message".
func (d Diagnostic) String() string {
	var loc string
	if d.File != "" {
		loc = d.File
		if d.Line > 0 {
			loc += fmt.Sprintf(":%d", d.Line)
			if d.Column > 0 {
				loc += fmt.Sprintf(":%d", d.Column)
			}
		}
		loc += " - "
	}

	var cat string
	if d.Category != "" {
		cat = fmt.Sprintf("[%s] ", d.Category)
	}

	msg := fmt.Sprintf("%s%s: %s%s", loc, d.Severity, cat, d.Message)
	if d.Hint != "" {
		msg += "\n  hint: " + d.Hint
	}
	return msg
}

// Collector accumulates diagnostics produced while scanning, parsing,
// resolving, and emitting, applying strict/quiet policy uniformly to every
// entry point that adds one.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // if true, warnings escalate to errors
	quiet       bool // if true, warnings and info are dropped
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{strict: strict, quiet: quiet}
}

// record appends a diagnostic, escalating warnings to errors under strict
// mode and dropping non-error diagnostics under quiet mode. Every public
// adder (Warn, WarnWithHint, Error, Info) funnels through this one place so
// that policy can't drift between them.
func (c *Collector) record(sev Severity, category Category, file string, line int, message, hint string) {
	if c == nil {
		return
	}
	if sev != SeverityError {
		if c.quiet {
			return
		}
		if sev == SeverityWarning && c.strict {
			sev = SeverityError
		}
	}
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: sev,
		Category: category,
		File:     file,
		Line:     line,
		Message:  message,
		Hint:     hint,
	})
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, file string, line int, message string) {
	c.record(SeverityWarning, category, file, line, message, "")
}

// WarnWithHint adds a warning with a suggested fix.
func (c *Collector) WarnWithHint(category Category, file string, line int, message, hint string) {
	c.record(SeverityWarning, category, file, line, message, hint)
}

// Error adds an error diagnostic. Errors are never dropped, even in quiet mode.
func (c *Collector) Error(category Category, file string, line int, message string) {
	c.record(SeverityError, category, file, line, message, "")
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, file string, line int, message string) {
	c.record(SeverityInfo, category, file, line, message, "")
}

// Diagnostics returns all collected diagnostics, in the order they were added.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.countSeverity(SeverityError) > 0
}

// HasFatal returns true if any diagnostic requires aborting the build.
func (c *Collector) HasFatal() bool {
	if c == nil {
		return false
	}
	for _, d := range c.diagnostics {
		if d.Fatal() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int { return c.countSeverity(SeverityError) }

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int { return c.countSeverity(SeverityWarning) }

func (c *Collector) countSeverity(sev Severity) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// FormatAll formats all diagnostics as a multi-line string, one per line.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	lines := make([]string, len(c.diagnostics))
	for i, d := range c.diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n") + "\n"
}

// Summary returns a one-line count like "1 error(s), 2 warning(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	errors, warnings := c.ErrorCount(), c.WarningCount()
	var parts []string
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
