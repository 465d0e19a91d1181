package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	m "sniff.dev/pkg/sniff/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	severityStyle = map[m.Severity]lipgloss.Style{
		m.SeverityNote:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		m.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		m.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	scoreStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TUI implements UI with an interactive Bubble Tea browser.
type TUI struct {
	cmd *cobra.Command

	mode     StartMode
	rows     []findingRow
	score    float64
	hasScore bool
	static   string
}

// NewTUI creates a new TUI writing to the command's output.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd}
}

// findingRow is one selectable line in the findings browser.
type findingRow struct {
	path     string
	finding  m.Finding
}

// Start resets accumulated state for a new run.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	t.mode = config.mode
	t.rows = nil
	t.static = ""
	t.hasScore = false

	return nil
}

// Close finalizes the UI.
func (t *TUI) Close(_ context.Context) {}

// Wait runs the interactive browser until the user quits.
func (t *TUI) Wait(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if len(t.rows) == 0 && t.static == "" {
		return
	}

	model := newBrowserModel(t.browserTitle(), t.rows, t.static, t.score, t.hasScore)

	program := tea.NewProgram(model, tea.WithOutput(t.cmd.OutOrStdout()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		slog.Warn("interactive view failed", "error", err)
	}
}

func (t *TUI) browserTitle() string {
	switch t.mode {
	case ModeEstimate:
		return "sniff — candidate findings"
	case ModeView:
		return "sniff — saved reports"
	default:
		return "sniff — findings"
	}
}

// DisplayEstimation stores the estimation table for the browser.
func (t *TUI) DisplayEstimation(ctx context.Context, diagnostics []m.Diagnostic, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		t.cmd.Printf("estimation error: %v\n", err)
		return nil
	}

	t.static = renderEstimationTable(buildFileStats(diagnostics), len(diagnostics))

	return nil
}

// DisplayConcurrencyInfo is deferred to the browser header in TUI mode.
func (t *TUI) DisplayConcurrencyInfo(_ context.Context, _, _, _ int) {}

// DisplayFindings stores the findings for the browser.
func (t *TUI) DisplayFindings(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, report := range reports {
		for _, finding := range report.Findings {
			t.rows = append(t.rows, findingRow{
				path:    string(report.Path),
				finding: finding,
			})
		}
	}

	return nil
}

// DisplayHygieneScore stores the score for the browser footer.
func (t *TUI) DisplayHygieneScore(ctx context.Context, score float64) {
	if ctx.Err() != nil {
		return
	}

	t.score = score
	t.hasScore = true
}

// DisplayPatch prints a colorized unified diff. Fix previews are
// non-interactive even on a terminal so they can be piped.
func (t *TUI) DisplayPatch(ctx context.Context, patch m.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(patch.Before)),
		B:        difflib.SplitLines(string(patch.After)),
		FromFile: string(patch.Path),
		ToFile:   string(patch.Path) + " (fixed)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("render diff for %s: %w", patch.Path, err)
	}

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			t.cmd.Print(addedStyle.Render(strings.TrimSuffix(line, "\n")) + "\n")
		case strings.HasPrefix(line, "-"):
			t.cmd.Print(removedStyle.Render(strings.TrimSuffix(line, "\n")) + "\n")
		default:
			t.cmd.Print(line)
		}
	}

	return nil
}

// DisplayFixSummary prints how many files and fixes were touched.
func (t *TUI) DisplayFixSummary(ctx context.Context, changed, applied int, dryRun bool) {
	if ctx.Err() != nil {
		return
	}

	verb := "applied"
	if dryRun {
		verb = "would apply"
	}

	t.cmd.Printf("%s %d fix(es) across %d file(s)\n", verb, applied, changed)
}

// browserModel is the Bubble Tea model behind the findings browser: a
// selectable list on top, a detail viewport below.
type browserModel struct {
	title    string
	rows     []findingRow
	static   string
	score    float64
	hasScore bool

	cursor   int
	offset   int
	width    int
	height   int
	detail   viewport.Model
	quitting bool
}

func newBrowserModel(title string, rows []findingRow, static string, score float64, hasScore bool) browserModel {
	return browserModel{
		title:    title,
		rows:     rows,
		static:   static,
		score:    score,
		hasScore: hasScore,
		detail:   viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (b browserModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.detail.Width = msg.Width
		b.detail.Height = b.detailHeight()
		b.syncDetail()

		return b, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			b.quitting = true
			return b, tea.Quit

		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}

			b.clampOffset()
			b.syncDetail()

		case "down", "j":
			if b.cursor < len(b.rows)-1 {
				b.cursor++
			}

			b.clampOffset()
			b.syncDetail()

		case "pgup":
			b.detail.HalfViewUp()

		case "pgdown":
			b.detail.HalfViewDown()
		}
	}

	return b, nil
}

// View implements tea.Model.
func (b browserModel) View() string {
	if b.quitting {
		return ""
	}

	var view strings.Builder

	view.WriteString(titleStyle.Render(b.title) + "\n\n")

	if b.static != "" {
		view.WriteString(b.static)
		view.WriteString("\n" + helpStyle.Render("q quit") + "\n")

		return view.String()
	}

	listHeight := b.listHeight()

	for i := b.offset; i < len(b.rows) && i < b.offset+listHeight; i++ {
		row := b.rows[i]
		line := fmt.Sprintf("%s:%d:%d  %s  %s",
			row.path, row.finding.Line, row.finding.Column,
			severityStyle[row.finding.Severity].Render(string(row.finding.Severity)),
			row.finding.Rule)

		if i == b.cursor {
			line = selectedStyle.Render(line)
		}

		view.WriteString(line + "\n")
	}

	view.WriteString("\n" + b.detail.View() + "\n")

	if b.hasScore {
		view.WriteString(scoreStyle.Render(fmt.Sprintf("Hygiene score: %.1f%%", b.score*100)) + "\n")
	}

	view.WriteString(helpStyle.Render("↑/↓ select · pgup/pgdn scroll detail · q quit") + "\n")

	return view.String()
}

func (b *browserModel) listHeight() int {
	if b.height == 0 {
		return len(b.rows)
	}

	// Title, spacing, detail pane, score and help lines share the screen.
	height := b.height - b.detailHeight() - 6
	if height < 3 {
		height = 3
	}

	return height
}

func (b *browserModel) detailHeight() int {
	if b.height == 0 {
		return 8
	}

	height := b.height / 3
	if height < 4 {
		height = 4
	}

	return height
}

func (b *browserModel) clampOffset() {
	listHeight := b.listHeight()

	if b.cursor < b.offset {
		b.offset = b.cursor
	}

	if b.cursor >= b.offset+listHeight {
		b.offset = b.cursor - listHeight + 1
	}
}

// syncDetail renders the selected finding into the detail viewport.
func (b *browserModel) syncDetail() {
	if b.cursor >= len(b.rows) {
		return
	}

	row := b.rows[b.cursor]

	var detail strings.Builder

	fmt.Fprintf(&detail, "%s\n\n", row.finding.Message)

	if row.finding.Excerpt != "" {
		fmt.Fprintf(&detail, "  %s\n\n", row.finding.Excerpt)
	}

	if fix := row.finding.Fix; fix != nil {
		detail.WriteString(removedStyle.Render("- "+strings.ReplaceAll(fix.Before, "\n", "\n- ")) + "\n")
		detail.WriteString(addedStyle.Render("+ "+strings.ReplaceAll(fix.After, "\n", "\n+ ")) + "\n")
	}

	b.detail.SetContent(detail.String())
	b.detail.GotoTop()
}
