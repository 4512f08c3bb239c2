package symtab

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/insidewhy/bagsakan/internal/tsast"
)

// loadAndParse reads and parses a file reached through an import or
// re-export, outside the enumerated source set. Followed imports are
// parsed only far enough to resolve names, never re-emitted.
func loadAndParse(absPath string) (*tsast.File, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", absPath, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%q is not valid UTF-8", absPath)
	}
	return tsast.Parse(absPath, data)
}
