// Package adapter contains infrastructure adapters for the sniff CLI.
package adapter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CppFileAdapter encapsulates C++ parsing and scope detection so the domain
// layer can focus on rule matching while delegating grammar details to an
// infrastructure component.
type CppFileAdapter interface {
	// Parse builds a syntax tree for the provided source bytes. The caller
	// owns the returned tree and must Close it.
	Parse(ctx context.Context, content []byte) (*sitter.Tree, error)

	// ExtractScopes inspects a parsed tree and returns the line ranges of
	// namespace-level declarations, class bodies and function bodies.
	ExtractScopes(root *sitter.Node, content []byte) []m.CodeScope

	// ScopeForLine returns the scope type covering a given line number.
	ScopeForLine(scopes []m.CodeScope, line int) m.ScopeType
}

// LocalCppFileAdapter provides a concrete CppFileAdapter backed by the
// tree-sitter C++ grammar.
type LocalCppFileAdapter struct{}

// NewLocalCppFileAdapter constructs a LocalCppFileAdapter.
func NewLocalCppFileAdapter() *LocalCppFileAdapter {
	return &LocalCppFileAdapter{}
}

// Parse builds a syntax tree for the provided source bytes.
//
// A sitter.Parser is not safe for concurrent use, so a fresh one is created
// per call; the worker pool above parses many files at once.
func (a *LocalCppFileAdapter) Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse C++ source: %w", err)
	}

	return tree, nil
}

// ExtractScopes walks the top of the tree and records scope line ranges.
func (a *LocalCppFileAdapter) ExtractScopes(root *sitter.Node, content []byte) []m.CodeScope {
	var scopes []m.CodeScope

	var walk func(n *sitter.Node, inClass bool)
	walk = func(n *sitter.Node, inClass bool) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)

			switch child.Type() {
			case "function_definition":
				scopes = append(scopes, m.CodeScope{
					Type:      m.ScopeFunction,
					StartLine: int(child.StartPoint().Row) + 1,
					EndLine:   int(child.EndPoint().Row) + 1,
					Name:      functionName(child, content),
				})

			case "class_specifier", "struct_specifier":
				name := ""
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					name = nameNode.Content(content)
				}

				scopes = append(scopes, m.CodeScope{
					Type:      m.ScopeClass,
					StartLine: int(child.StartPoint().Row) + 1,
					EndLine:   int(child.EndPoint().Row) + 1,
					Name:      name,
				})

				walk(child, true)

			case "namespace_definition", "linkage_specification", "declaration_list", "field_declaration_list":
				walk(child, inClass)

			case "declaration":
				if n.Type() == "translation_unit" || n.Type() == "namespace_definition" || n.Type() == "declaration_list" {
					scopes = append(scopes, m.CodeScope{
						Type:      m.ScopeGlobal,
						StartLine: int(child.StartPoint().Row) + 1,
						EndLine:   int(child.EndPoint().Row) + 1,
					})
				}
			}
		}
	}

	if root != nil {
		walk(root, false)
	}

	return scopes
}

// ScopeForLine determines which scope type covers the requested line.
// Function bodies win over the class that encloses them.
func (a *LocalCppFileAdapter) ScopeForLine(scopes []m.CodeScope, line int) m.ScopeType {
	result := m.ScopeGlobal

	for _, scope := range scopes {
		if line < scope.StartLine || line > scope.EndLine {
			continue
		}

		switch scope.Type {
		case m.ScopeFunction:
			return m.ScopeFunction
		case m.ScopeClass:
			result = m.ScopeClass
		case m.ScopeGlobal:
			if result == m.ScopeGlobal {
				result = scope.Type
			}
		}
	}

	return result
}

func functionName(fn *sitter.Node, content []byte) string {
	declarator := fn.ChildByFieldName("declarator")

	for declarator != nil {
		switch declarator.Type() {
		case "function_declarator":
			declarator = declarator.ChildByFieldName("declarator")
		case "pointer_declarator", "reference_declarator":
			inner := declarator.ChildByFieldName("declarator")
			if inner == nil && declarator.NamedChildCount() > 0 {
				inner = declarator.NamedChild(int(declarator.NamedChildCount()) - 1)
			}

			declarator = inner
		case "identifier", "field_identifier", "qualified_identifier", "operator_name", "destructor_name":
			return declarator.Content(content)
		default:
			return ""
		}
	}

	return ""
}
