package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckRawNew flags new expressions whose result lands in a raw pointer,
// e.g. `Widget* w = new Widget(1);`, and offers std::make_unique.
func CheckRawNew(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "new_expression" {
		return nil
	}

	if ownedBySmartPointer(n, content) {
		return nil
	}

	d := diagnostic(m.RuleRawNew, m.SeverityWarning, n, content, source, id,
		"raw new creates an unmanaged owner; prefer std::make_unique")

	if fix, ok := makeUniqueFix(n, content); ok {
		d.Fix = fix
	}

	return []m.Diagnostic{d}
}

// ownedBySmartPointer reports whether the new expression is already an
// argument to a smart pointer constructor or reset call.
func ownedBySmartPointer(n *sitter.Node, content []byte) bool {
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case "declaration", "expression_statement", "compound_statement":
			return false
		case "argument_list":
			owner := parent.Parent()
			if owner == nil {
				return false
			}

			ownerText := text(owner, content)

			return strings.Contains(ownerText, "unique_ptr") ||
				strings.Contains(ownerText, "shared_ptr") ||
				strings.Contains(ownerText, ".reset(") ||
				strings.Contains(ownerText, "->reset(")
		}
	}

	return false
}

// makeUniqueFix rewrites `T* p = new T(args);` into
// `auto p = std::make_unique<T>(args);`. Only the full declaration form is
// rewritten; assignments and array news keep a diagnostic without a fix.
func makeUniqueFix(n *sitter.Node, content []byte) (*m.FixIt, bool) {
	initDecl := n.Parent()
	if initDecl == nil || initDecl.Type() != "init_declarator" {
		return nil, false
	}

	decl := initDecl.Parent()
	if decl == nil || decl.Type() != "declaration" {
		return nil, false
	}

	pointer := initDecl.ChildByFieldName("declarator")
	if pointer == nil || pointer.Type() != "pointer_declarator" {
		return nil, false
	}

	name := unwrapDeclarator(pointer)
	if name == nil || name.Type() != "identifier" {
		return nil, false
	}

	newType := n.ChildByFieldName("type")
	if newType == nil {
		return nil, false
	}

	// `new T[n]` has no make_unique<T>(...) equivalent with these arguments.
	if findChildOfType(n, "new_declarator") != nil {
		return nil, false
	}

	args := ""
	if argsNode := n.ChildByFieldName("arguments"); argsNode != nil {
		args = strings.TrimSuffix(strings.TrimPrefix(text(argsNode, content), "("), ")")
	}

	after := fmt.Sprintf("auto %s = std::make_unique<%s>(%s);",
		name.Content(content), newType.Content(content), args)

	return &m.FixIt{
		Span:   spanOf(decl),
		Before: text(decl, content),
		After:  after,
	}, true
}
