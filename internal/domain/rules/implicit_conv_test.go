package rules

import (
	"strings"
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func TestCheckImplicitConv(t *testing.T) {
	t.Run("flags converting constructor without explicit", func(t *testing.T) {
		root, content, source := parseFixture(t, "explicitctor")

		diagnostics := runRule(CheckImplicitConv, root, content, source)

		if len(diagnostics) != 1 {
			t.Fatalf("expected 1 diagnostic, got %d", len(diagnostics))
		}

		d := diagnostics[0]
		if d.Rule != m.RuleImplicitConv {
			t.Errorf("expected rule %s, got %s", m.RuleImplicitConv, d.Rule)
		}

		if !strings.Contains(d.Message, "Buffer") {
			t.Errorf("expected message to name the class, got %q", d.Message)
		}

		if d.Fix == nil || d.Fix.After != "explicit " {
			t.Fatalf("expected an insertion fix, got %+v", d.Fix)
		}

		// The insertion is zero-width at the constructor start.
		if d.Fix.Span.StartByte != d.Fix.Span.EndByte {
			t.Errorf("expected zero-width span, got [%d,%d)", d.Fix.Span.StartByte, d.Fix.Span.EndByte)
		}
	})

	t.Run("explicit and copy constructors pass", func(t *testing.T) {
		root, content, source := parseFixture(t, "explicitctor")

		for _, d := range runRule(CheckImplicitConv, root, content, source) {
			if strings.Contains(d.Message, "Token") {
				t.Errorf("unexpected finding: %q", d.Message)
			}
		}
	})
}
