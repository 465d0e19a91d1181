package rules

import (
	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckConstCast flags const_cast expressions. Stripping constness invites
// undefined behavior when the underlying object really is const; the const
// should be fixed at the declaration instead.
func CheckConstCast(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "call_expression" {
		return nil
	}

	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}

	// const_cast<T>(e) parses as a call whose function is the template
	// application const_cast<T>.
	var nameNode *sitter.Node

	switch fn.Type() {
	case "template_function":
		nameNode = fn.ChildByFieldName("name")
	case "identifier":
		nameNode = fn
	default:
		return nil
	}

	if nameNode == nil || nameNode.Content(content) != "const_cast" {
		return nil
	}

	return []m.Diagnostic{diagnostic(m.RuleConstCast, m.SeverityWarning, n, content, source, id,
		"const_cast strips constness; fix the declaration instead of the call site")}
}
