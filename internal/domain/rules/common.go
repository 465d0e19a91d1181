// Package rules implements the registry of C++ smell matchers. Each matcher
// inspects one syntax node at a time and emits diagnostics, mirroring how
// the analyzer walks every node of a translation unit exactly once.
package rules

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckFunc is the shape of every rule matcher. The id counter is shared
// across rules so diagnostics get stable per-file ordinals.
type CheckFunc func(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic

// text returns the source text of n.
func text(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}

	return n.Content(content)
}

// line returns the 1-based line of n.
func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// column returns the 1-based column of n.
func column(n *sitter.Node) int {
	return int(n.StartPoint().Column) + 1
}

// spanOf returns the byte span covered by n.
func spanOf(n *sitter.Node) m.Span {
	return m.Span{StartByte: n.StartByte(), EndByte: n.EndByte()}
}

// excerpt returns the trimmed source line containing n.
func excerpt(n *sitter.Node, content []byte) string {
	row := int(n.StartPoint().Row)

	lines := strings.Split(string(content), "\n")
	if row >= len(lines) {
		return ""
	}

	return strings.TrimSpace(lines[row])
}

// diagnostic assembles a Diagnostic for n and bumps the shared counter.
// Scope attribution happens in the analyzer, which owns the parsed scopes.
func diagnostic(rule m.RuleID, severity m.Severity, n *sitter.Node, content []byte, source m.Source, id *uint, message string) m.Diagnostic {
	*id++

	return m.Diagnostic{
		ID:       *id - 1,
		Rule:     rule,
		Severity: severity,
		Source:   source,
		Line:     line(n),
		Column:   column(n),
		Message:  message,
		Excerpt:  excerpt(n, content),
	}
}

// findChildOfType returns the first named child of n with the given type.
func findChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == nodeType {
			return child
		}
	}

	return nil
}

// hasSpecifier reports whether any direct child of n (named or anonymous)
// carries the given source text, e.g. "static", "const" or "constexpr".
func hasSpecifier(n *sitter.Node, content []byte, spec string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Content(content) == spec {
			return true
		}
	}

	return false
}

// enclosingFunction walks up from n to the nearest function definition, or
// nil when n sits outside any function body.
func enclosingFunction(n *sitter.Node) *sitter.Node {
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Type() == "function_definition" {
			return parent
		}
	}

	return nil
}

// insideClassBody reports whether n is directly inside a class or struct
// member list.
func insideClassBody(n *sitter.Node) bool {
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case "field_declaration_list":
			return true
		case "function_definition", "compound_statement":
			return false
		}
	}

	return false
}

// unwrapDeclarator strips pointer/reference/parenthesized wrappers and
// returns the innermost declarator node.
func unwrapDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator", "init_declarator", "function_declarator":
			inner := n.ChildByFieldName("declarator")
			if inner == nil && n.NamedChildCount() > 0 {
				inner = n.NamedChild(0)
			}

			if inner == nil {
				return n
			}

			n = inner
		default:
			return n
		}
	}

	return nil
}
