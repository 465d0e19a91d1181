package rules

import (
	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckManualDelete flags delete expressions. Ownership expressed through
// paired new/delete belongs in a smart pointer; there is no mechanical fix
// because the owning declaration lives elsewhere.
func CheckManualDelete(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "delete_expression" {
		return nil
	}

	return []m.Diagnostic{diagnostic(m.RuleManualDelete, m.SeverityWarning, n, content, source, id,
		"explicit delete; let a smart pointer own this object")}
}
