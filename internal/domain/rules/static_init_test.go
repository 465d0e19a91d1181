package rules

import (
	"strings"
	"testing"

	m "sniff.dev/pkg/sniff/internal/model"
)

func TestCheckStaticInit(t *testing.T) {
	t.Run("flags dynamic initializer", func(t *testing.T) {
		root, content, source := parseFixture(t, "staticinit")

		diagnostics := runRule(CheckStaticInit, root, content, source)

		if len(diagnostics) != 1 {
			t.Fatalf("expected 1 diagnostic, got %d", len(diagnostics))
		}

		d := diagnostics[0]
		if d.Rule != m.RuleStaticInit {
			t.Errorf("expected rule %s, got %s", m.RuleStaticInit, d.Rule)
		}

		if !strings.Contains(d.Message, "cache") {
			t.Errorf("expected message to name the variable, got %q", d.Message)
		}
	})

	t.Run("constant initializers pass", func(t *testing.T) {
		root, content, source := parseFixture(t, "staticinit")

		for _, d := range runRule(CheckStaticInit, root, content, source) {
			if strings.Contains(d.Message, "counter") {
				t.Errorf("constant-initialized static flagged: %q", d.Message)
			}
		}
	})
}
