// Package discovery finds validator call-sites: bare-identifier calls in
// user source files whose callee name matches the configured
// validatorPattern, each naming the type it validates.
package discovery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insidewhy/bagsakan/internal/tsast"
)

// Request is one discovered call naming the type it wants a validator for.
type Request struct {
	TypeName      string
	ValidatorName string
	File          string
	Pos           tsast.Position
}

// Matcher recognizes validator call names built from the configured
// validatorPattern, e.g. "validate%(type)" matching "validateUser" and
// capturing "User".
type Matcher struct {
	re     *regexp.Regexp
	prefix string
	suffix string
}

// Compile turns a validatorPattern like "validate%(type)" into a Matcher.
// The pattern must contain exactly one "%(type)" placeholder; everything
// else is matched literally. The captured type name must start with an
// uppercase letter, matching exported TypeScript type identifiers.
func Compile(pattern string) (*Matcher, error) {
	const placeholder = "%(type)"
	idx := strings.Index(pattern, placeholder)
	if idx < 0 {
		return nil, fmt.Errorf("validatorPattern %q does not contain %q", pattern, placeholder)
	}
	prefixLiteral := pattern[:idx]
	suffixLiteral := pattern[idx+len(placeholder):]
	re, err := regexp.Compile("^" + regexp.QuoteMeta(prefixLiteral) + `([A-Z][A-Za-z0-9_]*)` + regexp.QuoteMeta(suffixLiteral) + "$")
	if err != nil {
		return nil, fmt.Errorf("compiling validatorPattern %q: %w", pattern, err)
	}
	return &Matcher{re: re, prefix: prefixLiteral, suffix: suffixLiteral}, nil
}

// ValidatorName renders the call name bagsakan would emit for typeName.
func (m *Matcher) ValidatorName(typeName string) string {
	return m.prefix + typeName + m.suffix
}

// Discover scans every call expression in f and returns the requests
// whose callee matches the matcher, deduplicated by validator name within
// this file (repeated calls to the same validator don't produce repeat
// requests).
func (m *Matcher) Discover(f *tsast.File) []Request {
	seen := map[string]bool{}
	var out []Request
	for _, call := range f.Calls {
		groups := m.re.FindStringSubmatch(call.Callee)
		if groups == nil {
			continue
		}
		typeName := groups[1]
		if seen[call.Callee] {
			continue
		}
		seen[call.Callee] = true
		out = append(out, Request{
			TypeName:      typeName,
			ValidatorName: call.Callee,
			File:          f.Path,
			Pos:           call.Pos,
		})
	}
	return out
}
