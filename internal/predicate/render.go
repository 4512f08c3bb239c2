package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Render turns a PredicateTree into a single TypeScript boolean expression
// evaluated against path, a TypeScript expression string for the bound
// input value (e.g. "data", or a generated item variable inside a
// .every() callback).
func Render(t *Tree, path string) string {
	switch t.Kind {
	case KindConstTrue:
		return "true"
	case KindConstFalse:
		return "false"
	case KindTypeofIs:
		return fmt.Sprintf("typeof %s === %q", path, t.TypeofTag)
	case KindEqualsLiteral:
		return fmt.Sprintf("%s === %s", path, t.Literal)
	case KindIsUndefined:
		return fmt.Sprintf("%s === undefined", path)
	case KindIsArray:
		return fmt.Sprintf("Array.isArray(%s)", path)
	case KindIsObject:
		return fmt.Sprintf("typeof %s === 'object'", path)
	case KindNotNull:
		return fmt.Sprintf("%s !== null", path)
	case KindNotArray:
		return fmt.Sprintf("!Array.isArray(%s)", path)
	case KindHasKey:
		return fmt.Sprintf("Object.prototype.hasOwnProperty.call(%s, %s)", path, strconv.Quote(t.Key))
	case KindFieldAbsentOrUndefined:
		return fmt.Sprintf("%s === undefined", fieldAccess(path, t.Key))
	case KindFieldMatches:
		return Render(t.Inner, fieldAccess(path, t.Key))
	case KindLengthEquals:
		return fmt.Sprintf("(%s as unknown[]).length === %d", path, t.Length)
	case KindLengthAtLeast:
		return fmt.Sprintf("(%s as unknown[]).length >= %d", path, t.Length)
	case KindPositional:
		return Render(t.Inner, fmt.Sprintf("(%s as unknown[])[%d]", path, t.Index))
	case KindElementsMatch:
		source := elementsSourceExpr(t, path)
		return fmt.Sprintf("%s.every((__item) => %s)", source, Render(t.Inner, "__item"))
	case KindAny:
		return joinOperands(t.Operands, path, " || ")
	case KindAll:
		return joinOperands(t.Operands, path, " && ")
	case KindInSet:
		return fmt.Sprintf("([%s] as unknown[]).includes(%s)", strings.Join(t.SetValues, ", "), path)
	case KindCall:
		return fmt.Sprintf("%s(%s)", t.FnName, path)
	default:
		return "false"
	}
}

func elementsSourceExpr(t *Tree, path string) string {
	switch t.Source {
	case sourceSlice:
		return fmt.Sprintf("(%s as unknown[]).slice(%d)", path, t.Index)
	case sourceValues:
		return fmt.Sprintf("Object.values(%s as Record<string, unknown>)", path)
	case sourceKeys:
		return fmt.Sprintf("Object.keys(%s as Record<string, unknown>)", path)
	default:
		return fmt.Sprintf("(%s as unknown[])", path)
	}
}

func fieldAccess(path, key string) string {
	return fmt.Sprintf("(%s as Record<string, unknown>)[%s]", path, strconv.Quote(key))
}

func joinOperands(operands []*Tree, path, sep string) string {
	if len(operands) == 0 {
		if sep == " && " {
			return "true"
		}
		return "false"
	}
	parts := make([]string, 0, len(operands))
	for _, op := range operands {
		parts = append(parts, "("+Render(op, path)+")")
	}
	return strings.Join(parts, sep)
}
