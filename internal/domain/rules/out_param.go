package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckOutParam flags non-const reference parameters on functions returning
// void. Such out-parameters hide the data flow; returning a value (or a
// struct of values) says what the function produces.
func CheckOutParam(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "function_definition" {
		return nil
	}

	returnType := n.ChildByFieldName("type")
	if returnType == nil || returnType.Content(content) != "void" {
		return nil
	}

	declarator := functionDeclarator(n)
	if declarator == nil {
		return nil
	}

	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}

	var diagnostics []m.Diagnostic

	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		if param.Type() != "parameter_declaration" {
			continue
		}

		ref := findChildOfType(param, "reference_declarator")
		if ref == nil || hasSpecifier(param, content, "const") {
			continue
		}

		name := unwrapDeclarator(ref)

		diagnostics = append(diagnostics, diagnostic(m.RuleOutParam, m.SeverityWarning, param, content, source, id,
			fmt.Sprintf("out-parameter %q on a void function; return the value instead", text(name, content))))
	}

	return diagnostics
}

// functionDeclarator digs through pointer/reference wrappers to the
// function_declarator carrying the parameter list.
func functionDeclarator(fn *sitter.Node) *sitter.Node {
	declarator := fn.ChildByFieldName("declarator")

	for declarator != nil {
		if declarator.Type() == "function_declarator" {
			return declarator
		}

		inner := declarator.ChildByFieldName("declarator")
		if inner == nil && declarator.NamedChildCount() > 0 {
			inner = declarator.NamedChild(0)
		}

		if inner == declarator {
			return nil
		}

		declarator = inner
	}

	return nil
}
