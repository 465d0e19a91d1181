package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckImplicitConv flags single-argument constructors that are not marked
// explicit. Such constructors let the compiler convert silently; the fix
// inserts the explicit specifier.
func CheckImplicitConv(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "class_specifier" && n.Type() != "struct_specifier" {
		return nil
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	className := nameNode.Content(content)

	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var diagnostics []m.Diagnostic

	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)

		if member.Type() != "function_definition" && member.Type() != "declaration" && member.Type() != "field_declaration" {
			continue
		}

		params, ok := convertingConstructor(member, className, content)
		if !ok {
			continue
		}

		// A single parameter of the class's own type is the copy/move
		// constructor, not a conversion.
		paramText := text(params.NamedChild(0), content)
		if strings.Contains(paramText, className) {
			continue
		}

		d := diagnostic(m.RuleImplicitConv, m.SeverityWarning, member, content, source, id,
			fmt.Sprintf("single-argument constructor of %q allows implicit conversion; mark it explicit", className))

		d.Fix = &m.FixIt{
			Span:   m.Span{StartByte: member.StartByte(), EndByte: member.StartByte()},
			Before: "",
			After:  "explicit ",
		}

		diagnostics = append(diagnostics, d)
	}

	return diagnostics
}

// convertingConstructor matches a constructor of className with exactly one
// parameter and no explicit specifier, returning its parameter list.
func convertingConstructor(member *sitter.Node, className string, content []byte) (*sitter.Node, bool) {
	if findChildOfType(member, "explicit_function_specifier") != nil {
		return nil, false
	}

	declarator := member.ChildByFieldName("declarator")
	if declarator == nil || declarator.Type() != "function_declarator" {
		return nil, false
	}

	ctorName := declarator.ChildByFieldName("declarator")
	if ctorName == nil || ctorName.Content(content) != className {
		return nil, false
	}

	// Constructors have no return type node.
	if member.ChildByFieldName("type") != nil {
		return nil, false
	}

	params := declarator.ChildByFieldName("parameters")
	if params == nil || params.NamedChildCount() != 1 {
		return nil, false
	}

	if params.NamedChild(0).Type() != "parameter_declaration" {
		return nil, false
	}

	return params, true
}
