package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckConstructAssign flags a default-constructed local immediately
// assigned on the next statement, e.g.
//
//	std::string s;
//	s = make_name();
//
// and offers direct initialization as a fix.
func CheckConstructAssign(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "compound_statement" {
		return nil
	}

	var diagnostics []m.Diagnostic

	count := int(n.NamedChildCount())

	for i := 0; i+1 < count; i++ {
		decl := n.NamedChild(i)
		next := n.NamedChild(i + 1)

		name, ok := defaultConstructedName(decl, content)
		if !ok {
			continue
		}

		rhs, ok := assignmentTo(next, name, content)
		if !ok {
			continue
		}

		d := diagnostic(m.RuleConstructAssign, m.SeverityWarning, decl, content, source, id,
			fmt.Sprintf("%q is default-constructed and immediately assigned; initialize it directly", name))

		typeText := text(decl.ChildByFieldName("type"), content)
		d.Fix = &m.FixIt{
			Span:   m.Span{StartByte: decl.StartByte(), EndByte: next.EndByte()},
			Before: string(content[decl.StartByte():next.EndByte()]),
			After:  fmt.Sprintf("%s %s = %s;", typeText, name, rhs),
		}

		diagnostics = append(diagnostics, d)
	}

	return diagnostics
}

// defaultConstructedName matches `T x;` declarations: a declaration whose
// declarator is a bare identifier with no initializer.
func defaultConstructedName(n *sitter.Node, content []byte) (string, bool) {
	if n.Type() != "declaration" {
		return "", false
	}

	declarator := n.ChildByFieldName("declarator")
	if declarator == nil || declarator.Type() != "identifier" {
		return "", false
	}

	// Primitive locals left uninitialized are a different smell; the
	// construct/assign pair only costs anything for class types.
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil || typeNode.Type() == "primitive_type" {
		return "", false
	}

	return declarator.Content(content), true
}

// assignmentTo matches `name = <expr>;` and returns the right-hand text.
func assignmentTo(n *sitter.Node, name string, content []byte) (string, bool) {
	if n.Type() != "expression_statement" || n.NamedChildCount() == 0 {
		return "", false
	}

	expr := n.NamedChild(0)
	if expr.Type() != "assignment_expression" {
		return "", false
	}

	left := expr.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" || left.Content(content) != name {
		return "", false
	}

	if op := expr.ChildByFieldName("operator"); op != nil && op.Content(content) != "=" {
		return "", false
	}

	right := expr.ChildByFieldName("right")
	if right == nil {
		return "", false
	}

	// The variable feeding its own initializer cannot be folded away.
	if referencesIdentifier(right, content, name) {
		return "", false
	}

	return right.Content(content), true
}

// referencesIdentifier reports whether expr mentions name as a whole
// identifier. Matching node-by-node keeps `make_name()` from shadowing a
// variable called `name`.
func referencesIdentifier(expr *sitter.Node, content []byte, name string) bool {
	if expr.Type() == "identifier" && expr.Content(content) == name {
		return true
	}

	for i := 0; i < int(expr.NamedChildCount()); i++ {
		if referencesIdentifier(expr.NamedChild(i), content, name) {
			return true
		}
	}

	return false
}
