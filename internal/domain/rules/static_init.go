package rules

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckStaticInit flags function-local statics with dynamic initializers.
// The first call through runs the initializer; concurrent first calls
// serialize on the guard variable, and older toolchains raced outright.
func CheckStaticInit(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "declaration" {
		return nil
	}

	if !hasSpecifier(n, content, "static") || hasSpecifier(n, content, "constexpr") {
		return nil
	}

	if enclosingFunction(n) == nil {
		return nil
	}

	initDecl := findChildOfType(n, "init_declarator")
	if initDecl == nil || !dynamicInitializer(initDecl) {
		return nil
	}

	name := unwrapDeclarator(initDecl)

	return []m.Diagnostic{diagnostic(m.RuleStaticInit, m.SeverityWarning, n, content, source, id,
		fmt.Sprintf("function-local static %q has a dynamic initializer; hoist it or use constinit", text(name, content)))}
}

// dynamicInitializer reports whether the init_declarator's value requires a
// runtime call rather than a constant expression.
func dynamicInitializer(initDecl *sitter.Node) bool {
	value := initDecl.ChildByFieldName("value")
	if value == nil {
		// Brace/paren construction without an assignment form still runs a
		// constructor at first call.
		return findChildOfType(initDecl, "argument_list") != nil ||
			findChildOfType(initDecl, "initializer_list") != nil
	}

	switch value.Type() {
	case "number_literal", "string_literal", "char_literal", "true", "false", "null", "nullptr":
		return false
	}

	return true
}
