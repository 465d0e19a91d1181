package rules

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckRawLoop flags classic index and iterator for-loops that a range-for
// or a std::ranges algorithm expresses directly:
//
//	for (size_t i = 0; i < v.size(); ++i) { use(v[i]); }
//	for (auto it = v.begin(); it != v.end(); ++it) { use(*it); }
//
// The rewrite changes the loop body, so no mechanical fix is offered.
func CheckRawLoop(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "for_statement" {
		return nil
	}

	condition := n.ChildByFieldName("condition")
	initializer := n.ChildByFieldName("initializer")

	conditionText := text(condition, content)
	initializerText := text(initializer, content)

	switch {
	case strings.Contains(conditionText, ".size()") || strings.Contains(conditionText, "->size()"):
		return []m.Diagnostic{diagnostic(m.RuleRawLoop, m.SeverityWarning, n, content, source, id,
			"index loop over a container; prefer range-for or a std::ranges algorithm")}

	case strings.Contains(initializerText, ".begin()") || strings.Contains(initializerText, "->begin()") ||
		strings.Contains(initializerText, "std::begin("):
		return []m.Diagnostic{diagnostic(m.RuleRawLoop, m.SeverityWarning, n, content, source, id,
			"iterator loop; prefer range-for or a std::ranges algorithm")}
	}

	return nil
}
