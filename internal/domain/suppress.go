// Package domain contains the core analysis workflow and rule dispatch.
package domain

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// suppressMarker is the annotation users write in C++ comments to silence
// findings: `// sniff:ignore` for everything, `// sniff:ignore=raw-new,
// const-cast` for specific rules.
const suppressMarker = "sniff:ignore"

// suppressRule records which rules one annotation silences.
type suppressRule struct {
	all   bool
	rules map[m.RuleID]struct{}
}

func (r suppressRule) ignores(rule m.RuleID) bool {
	if r.all {
		return true
	}

	_, ok := r.rules[rule]

	return ok
}

func (r suppressRule) active() bool {
	return r.all || len(r.rules) > 0
}

// suppressIndex resolves, per line, whether a rule is silenced. File-level
// annotations sit above the first declaration; an annotation directly above
// a function definition silences the whole function; a trailing annotation
// applies to its own line, a leading one to the line below.
type suppressIndex struct {
	file suppressRule
	line map[int]suppressRule
}

func (idx suppressIndex) ignores(rule m.RuleID, line int) bool {
	if idx.file.ignores(rule) {
		return true
	}

	return idx.line[line].ignores(rule)
}

// buildSuppressIndex scans comment nodes for suppression annotations.
func buildSuppressIndex(root *sitter.Node, content []byte) suppressIndex {
	idx := suppressIndex{line: map[int]suppressRule{}}

	if root == nil {
		return idx
	}

	firstDeclLine := firstDeclarationLine(root)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)

			if child.Type() != "comment" {
				walk(child)
				continue
			}

			rule, ok := parseSuppressComment(child.Content(content))
			if !ok {
				continue
			}

			commentLine := int(child.StartPoint().Row) + 1

			if commentLine < firstDeclLine {
				idx.file = mergeSuppress(idx.file, rule)
				continue
			}

			// An annotation directly above a function definition covers
			// every line of that function.
			if next := child.NextNamedSibling(); next != nil &&
				next.Type() == "function_definition" &&
				int(next.StartPoint().Row)+1 == commentLine+1 {
				for l := int(next.StartPoint().Row) + 1; l <= int(next.EndPoint().Row)+1; l++ {
					idx.line[l] = mergeSuppress(idx.line[l], rule)
				}

				continue
			}

			if trailsCode(content, child) {
				idx.line[commentLine] = mergeSuppress(idx.line[commentLine], rule)
			} else {
				idx.line[commentLine+1] = mergeSuppress(idx.line[commentLine+1], rule)
			}
		}
	}

	walk(root)

	return idx
}

// trailsCode reports whether the comment sits after code on its line, as
// opposed to standing alone.
func trailsCode(content []byte, comment *sitter.Node) bool {
	lineStart := int(comment.StartByte())

	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}

	prefix := string(content[lineStart:comment.StartByte()])

	return strings.TrimSpace(prefix) != ""
}

// firstDeclarationLine returns the 1-based line of the first non-comment
// construct, or a line past EOF for comment-only files.
func firstDeclarationLine(root *sitter.Node) int {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "comment" {
			return int(child.StartPoint().Row) + 1
		}
	}

	return int(root.EndPoint().Row) + 2
}

// parseSuppressComment extracts the suppression rule from one comment.
func parseSuppressComment(comment string) (suppressRule, bool) {
	pos := strings.Index(comment, suppressMarker)
	if pos < 0 {
		return suppressRule{}, false
	}

	rest := comment[pos+len(suppressMarker):]

	if !strings.HasPrefix(rest, "=") {
		return suppressRule{all: true}, true
	}

	rest = strings.TrimPrefix(rest, "=")
	if end := strings.IndexAny(rest, " \t*/"); end >= 0 {
		rest = rest[:end]
	}

	rule := suppressRule{rules: map[m.RuleID]struct{}{}}

	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			rule.rules[m.RuleID(part)] = struct{}{}
		}
	}

	return rule, rule.active()
}

func mergeSuppress(into, from suppressRule) suppressRule {
	if into.all || from.all {
		return suppressRule{all: true}
	}

	if into.rules == nil {
		into.rules = map[m.RuleID]struct{}{}
	}

	for rule := range from.rules {
		into.rules[rule] = struct{}{}
	}

	return into
}
