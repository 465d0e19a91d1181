package rules

import (
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func TestCheckConstCast(t *testing.T) {
	root, content, source := parseFixture(t, "constcast")

	diagnostics := runRule(CheckConstCast, root, content, source)

	if len(diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diagnostics))
	}

	d := diagnostics[0]
	if d.Rule != m.RuleConstCast {
		t.Errorf("expected rule %s, got %s", m.RuleConstCast, d.Rule)
	}

	// Error is only reachable through a rules.severity override.
	if d.Severity != m.SeverityWarning {
		t.Errorf("const_cast should default to a warning, got %s", d.Severity)
	}
}

func TestCheckConstCastIgnoresOtherCasts(t *testing.T) {
	root, content, source := parseFixture(t, "valuecopy")

	// valuecopy uses static_cast; none of its calls may match.
	if diagnostics := runRule(CheckConstCast, root, content, source); len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diagnostics))
	}
}
