package discovery

import (
	"testing"

	"github.com/insidewhy/bagsakan/internal/tsast"
)

func TestCompileRejectsPatternWithoutPlaceholder(t *testing.T) {
	if _, err := Compile("validate"); err == nil {
		t.Fatal("expected an error for a pattern missing %(type)")
	}
}

func TestValidatorName(t *testing.T) {
	m, err := Compile("validate%(type)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := m.ValidatorName("User"); got != "validateUser" {
		t.Errorf("ValidatorName(User) = %q, want validateUser", got)
	}
}

func TestValidatorNameWithSuffix(t *testing.T) {
	m, err := Compile("is%(type)Valid")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := m.ValidatorName("Order"); got != "isOrderValid" {
		t.Errorf("ValidatorName(Order) = %q, want isOrderValid", got)
	}
}

func TestDiscoverFindsMatchingCalls(t *testing.T) {
	m, err := Compile("validate%(type)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	f, err := tsast.Parse("handler.ts", []byte(`
function handler() {
	validateUser(a);
	validateOrder(b);
	helperFunction(c);
}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	reqs := m.Discover(f)
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2: %+v", len(reqs), reqs)
	}
	names := map[string]bool{}
	for _, r := range reqs {
		names[r.TypeName] = true
	}
	if !names["User"] || !names["Order"] {
		t.Errorf("expected User and Order, got %+v", reqs)
	}
}

func TestDiscoverDedupesRepeatedCalls(t *testing.T) {
	m, err := Compile("validate%(type)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	f, err := tsast.Parse("handler.ts", []byte(`
validateUser(a);
validateUser(b);
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	reqs := m.Discover(f)
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1 (deduped): %+v", len(reqs), reqs)
	}
}
