package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	m "sniff.dev/pkg/sniff/internal/model"
)

// parseFixture parses one file from examples/ and returns its root node,
// content and a minimal source identity for diagnostics.
func parseFixture(t *testing.T, fixture string) (*sitter.Node, []byte, m.Source) {
	t.Helper()

	path := filepath.Join("..", "..", "..", "examples", fixture, "main.cc")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}

	parser := sitter.NewParser()
	t.Cleanup(parser.Close)

	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", path, err)
	}

	t.Cleanup(tree.Close)

	source := m.Source{
		Origin: &m.File{
			FullPath:  m.Path(path),
			ShortPath: m.Path(path),
			Hash:      "fixture",
		},
	}

	return tree.RootNode(), content, source
}

// runRule applies one matcher to every named node of the tree, the way the
// analyzer dispatches rules.
func runRule(check CheckFunc, root *sitter.Node, content []byte, source m.Source) []m.Diagnostic {
	var diagnostics []m.Diagnostic

	var id uint

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		diagnostics = append(diagnostics, check(n, content, source, &id)...)

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(root)

	return diagnostics
}

