package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// CheckExternConst flags `extern const` globals. Since C++17 an
// `inline constexpr` definition in a header gives every translation unit
// the value at compile time, with no initialization-order hazards.
func CheckExternConst(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "declaration" {
		return nil
	}

	parent := n.Parent()
	if parent == nil || (parent.Type() != "translation_unit" && parent.Type() != "declaration_list" && parent.Type() != "namespace_definition") {
		return nil
	}

	if !hasSpecifier(n, content, "extern") || !hasSpecifier(n, content, "const") || hasSpecifier(n, content, "constexpr") {
		return nil
	}

	name := unwrapDeclarator(n.ChildByFieldName("declarator"))

	d := diagnostic(m.RuleExternConst, m.SeverityWarning, n, content, source, id,
		fmt.Sprintf("extern const %q; prefer an inline constexpr definition", text(name, content)))

	// Only a definition can become inline constexpr; a bare declaration has
	// no initializer to keep.
	declText := text(n, content)
	if strings.HasPrefix(declText, "extern const ") && findChildOfType(n, "init_declarator") != nil {
		prefixLen := uint32(len("extern const"))
		d.Fix = &m.FixIt{
			Span:   m.Span{StartByte: n.StartByte(), EndByte: n.StartByte() + prefixLen},
			Before: "extern const",
			After:  "inline constexpr",
		}
	}

	return []m.Diagnostic{d}
}
