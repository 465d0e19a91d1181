package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	m "sniff.dev/pkg/sniff/internal/model"
)

// SimpleUI implements UI using the cobra command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayEstimation prints the per-file candidate counts or the error.
func (s *SimpleUI) DisplayEstimation(ctx context.Context, diagnostics []m.Diagnostic, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if err != nil {
		s.printf("estimation error: %v\n", err)
		return nil
	}

	statsList := buildFileStats(diagnostics)
	s.printf("\n%s", renderEstimationTable(statsList, len(diagnostics)))

	return nil
}

// DisplayConcurrencyInfo shows worker and shard settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, threads, shardIndex, shardCount int) {
	if ctx.Err() != nil {
		return
	}

	if shardCount > 1 {
		s.printf("Analyzing with %d worker(s), shard %d/%d\n", threads, shardIndex, shardCount)
		return
	}

	s.printf("Analyzing with %d worker(s)\n", threads)
}

// DisplayFindings prints each finding clang-style followed by a per-file
// summary table.
func (s *SimpleUI) DisplayFindings(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ordered := make([]m.Report, len(reports))
	copy(ordered, reports)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Path < ordered[j].Path
	})

	total := 0

	for _, report := range ordered {
		for _, finding := range report.Findings {
			total++
			s.printf("%s:%d:%d: %s: %s [%s]\n",
				report.Path, finding.Line, finding.Column, finding.Severity, finding.Message, finding.Rule)
		}
	}

	s.printf("\n%s", renderFindingsTable(ordered, total))

	return nil
}

// DisplayHygieneScore prints the share of clean files.
func (s *SimpleUI) DisplayHygieneScore(ctx context.Context, score float64) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Hygiene score: %.1f%%\n", score*100)
}

// DisplayPatch prints a unified diff of the pending rewrite.
func (s *SimpleUI) DisplayPatch(ctx context.Context, patch m.Patch) error {
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

	s.printf("%s\n", diff)

	return nil
}

// DisplayFixSummary prints how many files and fixes were touched.
func (s *SimpleUI) DisplayFixSummary(ctx context.Context, changed, applied int, dryRun bool) {
	if ctx.Err() != nil {
		return
	}

	verb := "applied"
	if dryRun {
		verb = "would apply"
	}

	s.printf("%s %d fix(es) across %d file(s)\n", verb, applied, changed)
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.cmd.Printf(format, args...)
}

// fileStat is a per-file aggregate used by the summary tables.
type fileStat struct {
	path  string
	count int
}

func buildFileStats(diagnostics []m.Diagnostic) []fileStat {
	info := map[string]fileStat{}

	for _, d := range diagnostics {
		if d.Source.Origin == nil {
			continue
		}

		key := d.Source.Origin.Hash
		if key == "" {
			key = string(d.Source.Origin.ShortPath)
		}

		stat := info[key]
		stat.path = string(d.Source.Origin.ShortPath)
		stat.count++
		info[key] = stat
	}

	statsList := make([]fileStat, 0, len(info))
	for _, stat := range info {
		statsList = append(statsList, stat)
	}

	sort.Slice(statsList, func(i, j int) bool {
		return statsList[i].path < statsList[j].path
	})

	return statsList
}

func renderEstimationTable(statsList []fileStat, total int) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Candidates"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, stat := range statsList {
		table.Append([]string{stat.path, fmt.Sprintf("%d", stat.count)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(statsList)),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return buf.String()
}

func renderFindingsTable(reports []m.Report, total int) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Findings"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, report := range reports {
		table.Append([]string{string(report.Path), fmt.Sprintf("%d", len(report.Findings))})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(reports)),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return buf.String()
}
