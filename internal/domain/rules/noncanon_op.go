package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckNonCanonOp flags operator overloads with non-canonical signatures:
// member operator==/operator!= (asymmetric conversions; prefer a hidden
// friend or = default) and operator= not returning a reference to the class.
func CheckNonCanonOp(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "function_definition" {
		return nil
	}

	declarator := functionDeclarator(n)
	if declarator == nil {
		return nil
	}

	nameNode := declarator.ChildByFieldName("declarator")
	if nameNode == nil || nameNode.Type() != "operator_name" {
		return nil
	}

	name := nameNode.Content(content)

	switch name {
	case "operator==", "operator!=":
		if insideClassBody(n) && !isFriend(n, content) {
			return []m.Diagnostic{diagnostic(m.RuleNonCanonOp, m.SeverityWarning, n, content, source, id,
				fmt.Sprintf("member %s compares asymmetrically; use a hidden friend or = default", name))}
		}

	case "operator=":
		if !returnsReference(n) {
			return []m.Diagnostic{diagnostic(m.RuleNonCanonOp, m.SeverityWarning, n, content, source, id,
				"operator= should return a reference to *this")}
		}
	}

	return nil
}

// isFriend reports whether fn is a friend function. An inline hidden friend
// parses as a function definition nested under a friend_declaration, so the
// specifier is not a direct child.
func isFriend(fn *sitter.Node, content []byte) bool {
	if hasSpecifier(fn, content, "friend") {
		return true
	}

	parent := fn.Parent()

	return parent != nil && parent.Type() == "friend_declaration"
}

// returnsReference reports whether the definition's declarator chain carries
// a reference, i.e. the function returns T& rather than T or void.
func returnsReference(fn *sitter.Node) bool {
	declarator := fn.ChildByFieldName("declarator")

	for declarator != nil && declarator.Type() != "function_declarator" {
		if declarator.Type() == "reference_declarator" {
			return true
		}

		inner := declarator.ChildByFieldName("declarator")
		if inner == nil && declarator.NamedChildCount() > 0 {
			inner = declarator.NamedChild(0)
		}

		declarator = inner
	}

	return false
}
