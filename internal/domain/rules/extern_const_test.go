package rules

import (
	"strings"
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func TestCheckExternConst(t *testing.T) {
	root, content, source := parseFixture(t, "externconst")

	diagnostics := runRule(CheckExternConst, root, content, source)

	// kMaxRetries (declaration), kMaxBackoffMs (definition) and the
	// namespaced kWindowSize. The inline constexpr constant passes.
	if len(diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diagnostics))
	}

	withFix := 0

	for _, d := range diagnostics {
		if d.Rule != m.RuleExternConst {
			t.Errorf("expected rule %s, got %s", m.RuleExternConst, d.Rule)
		}

		if strings.Contains(d.Message, "kDefaultPort") {
			t.Errorf("inline constexpr constant flagged: %q", d.Message)
		}

		if d.Fix != nil {
			withFix++

			if d.Fix.Before != "extern const" || d.Fix.After != "inline constexpr" {
				t.Errorf("unexpected fix %q -> %q", d.Fix.Before, d.Fix.After)
			}
		}
	}

	// Only the two definitions can be rewritten; the bare declaration has no
	// initializer to keep.
	if withFix != 2 {
		t.Errorf("expected 2 fixes, got %d", withFix)
	}
}
