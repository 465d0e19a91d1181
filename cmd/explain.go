package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"sniff.dev/pkg/sniff/internal/controller"
	"sniff.dev/pkg/sniff/internal/domain/rules"
	m "sniff.dev/pkg/sniff/internal/model"
)

// explainCmd represents the explain command.
var explainCmd = newExplainCmd()

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [rule]",
		Short: "Explain a rule with a before/after example",
		Long: `Show the rationale behind a rule and a minimal before/after snippet pair.
Without an argument the full catalog is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := explainMarkdown(args)
			if err != nil {
				return err
			}

			return renderMarkdown(cmd, markdown)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func explainMarkdown(args []string) (string, error) {
	if len(args) == 0 {
		var b strings.Builder

		b.WriteString("# Rule catalog\n\n")

		for _, doc := range rules.Docs() {
			b.WriteString(doc.Markdown())
			b.WriteString("\n")
		}

		return b.String(), nil
	}

	doc, ok := rules.DocFor(m.RuleID(args[0]))
	if !ok {
		return "", fmt.Errorf("unknown rule %q", args[0])
	}

	return doc.Markdown(), nil
}

// renderMarkdown pretty-prints on terminals and falls back to raw markdown
// when the output is piped.
func renderMarkdown(cmd *cobra.Command, markdown string) error {
	if !controller.IsTTY(os.Stdout) {
		cmd.Print(markdown)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		cmd.Print(markdown)
		return nil
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		cmd.Print(markdown)
		return nil
	}

	cmd.Print(rendered)

	return nil
}
