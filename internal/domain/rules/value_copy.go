package rules

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// Heavy standard types whose pass-by-value copies allocate.
var heavyTypes = []string{
	"std::string",
	"std::wstring",
	"std::vector",
	"std::deque",
	"std::list",
	"std::map",
	"std::unordered_map",
	"std::set",
	"std::unordered_set",
	"std::function",
}

// CheckValueCopy flags parameters of heavy standard types taken by value
// and offers a const reference as a fix. A parameter already behind a
// pointer or reference declarator is left alone.
func CheckValueCopy(n *sitter.Node, content []byte, source m.Source, id *uint) []m.Diagnostic {
	if n.Type() != "parameter_declaration" {
		return nil
	}

	declarator := n.ChildByFieldName("declarator")
	if declarator == nil || declarator.Type() != "identifier" {
		return nil
	}

	typeNode := n.ChildByFieldName("type")
	if typeNode == nil || !isHeavyType(text(typeNode, content)) {
		return nil
	}

	typeText := text(typeNode, content)
	name := declarator.Content(content)

	d := diagnostic(m.RuleValueCopy, m.SeverityWarning, n, content, source, id,
		fmt.Sprintf("parameter %q copies a %s; take it by const reference", name, typeText))

	d.Fix = &m.FixIt{
		Span:   spanOf(n),
		Before: text(n, content),
		After:  fmt.Sprintf("const %s& %s", typeText, name),
	}

	return []m.Diagnostic{d}
}

func isHeavyType(typeText string) bool {
	for _, heavy := range heavyTypes {
		if typeText == heavy || strings.HasPrefix(typeText, heavy+"<") {
			return true
		}
	}

	return false
}
