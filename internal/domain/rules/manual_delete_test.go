package rules

import (
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func TestCheckManualDelete(t *testing.T) {
	root, content, source := parseFixture(t, "deletes")

	diagnostics := runRule(CheckManualDelete, root, content, source)

	// Both `delete w` and `delete[] xs`.
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diagnostics))
	}

	for _, d := range diagnostics {
		if d.Rule != m.RuleManualDelete {
			t.Errorf("expected rule %s, got %s", m.RuleManualDelete, d.Rule)
		}

		if d.Fix != nil {
			t.Errorf("manual delete has no mechanical fix")
		}
	}
}
