package domain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"sniff.dev/pkg/sniff/internal/adapter"
	"sniff.dev/pkg/sniff/internal/controller"
	m "sniff.dev/pkg/sniff/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const dirtySource = `void churn() {
    int* p = new int(1);
    delete p;
}
`

const cleanSource = `int answer() {
    return 42;
}
`

func newTestWorkflow(t *testing.T) (Workflow, *bytes.Buffer) {
	t.Helper()

	cmd := &cobra.Command{}

	var buf bytes.Buffer

	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	analyzer := NewAnalyzer(adapter.NewLocalCppFileAdapter(), fsAdapter)

	workflow := NewWorkflow(
		fsAdapter,
		adapter.NewReportStore(),
		controller.NewSimpleUI(cmd),
		NewSourceStreamer(fsAdapter),
		analyzer,
		NewFixer(fsAdapter, adapter.NewSpanRewriter()),
		adapter.NewFsnotifyWatcher(),
	)

	return workflow, &buf
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}

	return path
}

func TestWorkflowCheck(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "dirty.cc", dirtySource)
	writeSource(t, root, "clean.cc", cleanSource)

	reportsDir := filepath.Join(t.TempDir(), "reports")

	workflow, buf := newTestWorkflow(t)

	args := CheckArgs{
		EstimateArgs: EstimateArgs{
			Paths:    []m.Path{m.Path(root + "/...")},
			UseCache: true,
			Reports:  m.Path(reportsDir),
		},
		Threads:         2,
		TotalShardCount: 1,
		Severity:        map[m.RuleID]m.Severity{m.RuleRawNew: m.SeverityError},
	}

	if err := workflow.Check(context.Background(), args); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		t.Fatalf("read reports dir: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 persisted reports, got %d", len(entries))
	}

	output := buf.String()

	if !strings.Contains(output, "Hygiene score: 50.0%") {
		t.Errorf("expected hygiene score in output:\n%s", output)
	}

	if !strings.Contains(output, "raw-new") || !strings.Contains(output, "manual-delete") {
		t.Errorf("expected findings in output:\n%s", output)
	}

	// The severity override lands in the persisted report.
	reports, err := adapter.NewReportStore().LoadReports(m.Path(reportsDir))
	if err != nil {
		t.Fatalf("load reports: %v", err)
	}

	overridden := false

	for _, report := range reports {
		for _, finding := range report.Findings {
			if finding.Rule == m.RuleRawNew && finding.Severity == m.SeverityError {
				overridden = true
			}
		}
	}

	if !overridden {
		t.Errorf("expected raw-new severity override in persisted reports")
	}

	// Second run serves everything from cache without error.
	buf.Reset()

	if err := workflow.Check(context.Background(), args); err != nil {
		t.Fatalf("cached Check() error = %v", err)
	}

	if !strings.Contains(buf.String(), "Hygiene score: 50.0%") {
		t.Errorf("expected cached run to reproduce the score:\n%s", buf.String())
	}
}

func TestWorkflowEstimate(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "dirty.cc", dirtySource)

	workflow, buf := newTestWorkflow(t)

	err := workflow.Estimate(context.Background(), EstimateArgs{
		Paths: []m.Path{m.Path(root + "/...")},
	})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	if !strings.Contains(buf.String(), "dirty.cc") {
		t.Errorf("expected per-file candidates in output:\n%s", buf.String())
	}
}

func TestWorkflowView(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "dirty.cc", dirtySource)

	reportsDir := filepath.Join(t.TempDir(), "reports")

	workflow, buf := newTestWorkflow(t)

	err := workflow.Check(context.Background(), CheckArgs{
		EstimateArgs: EstimateArgs{
			Paths:   []m.Path{m.Path(root + "/...")},
			Reports: m.Path(reportsDir),
		},
		Threads: 1,
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	buf.Reset()

	if err := workflow.View(context.Background(), ViewArgs{Reports: m.Path(reportsDir)}); err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if !strings.Contains(buf.String(), "manual-delete") {
		t.Errorf("expected persisted findings in view output:\n%s", buf.String())
	}
}

func TestWorkflowFix(t *testing.T) {
	const copySource = `#include <string>

int measure(std::string text) {
    return 0;
}
`

	t.Run("dry run leaves the file untouched", func(t *testing.T) {
		root := t.TempDir()
		path := writeSource(t, root, "copy.cc", copySource)

		workflow, buf := newTestWorkflow(t)

		err := workflow.Fix(context.Background(), FixArgs{
			Paths:  []m.Path{m.Path(root + "/...")},
			DryRun: true,
		})
		if err != nil {
			t.Fatalf("Fix() error = %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}

		if string(content) != copySource {
			t.Errorf("dry run modified the file")
		}

		if !strings.Contains(buf.String(), "would apply 1 fix(es)") {
			t.Errorf("expected dry-run summary:\n%s", buf.String())
		}

		if !strings.Contains(buf.String(), "-int measure(std::string text)") {
			t.Errorf("expected a diff preview:\n%s", buf.String())
		}
	})

	t.Run("applies the fix in place", func(t *testing.T) {
		root := t.TempDir()
		path := writeSource(t, root, "copy.cc", copySource)

		workflow, buf := newTestWorkflow(t)

		err := workflow.Fix(context.Background(), FixArgs{
			Paths: []m.Path{m.Path(root + "/...")},
		})
		if err != nil {
			t.Fatalf("Fix() error = %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}

		if !strings.Contains(string(content), "const std::string& text") {
			t.Errorf("expected rewritten parameter, got:\n%s", content)
		}

		if !strings.Contains(buf.String(), "applied 1 fix(es) across 1 file(s)") {
			t.Errorf("expected fix summary:\n%s", buf.String())
		}
	})
}

func TestWorkflowMerge(t *testing.T) {
	reportsDir := t.TempDir()

	store := adapter.NewReportStore()

	shardReports := []m.Report{
		{Path: "a.cc", Hash: "hash-a", Findings: []m.Finding{{Rule: m.RuleRawNew}}},
	}

	shardDir := m.Path(filepath.Join(reportsDir, adapter.ShardDirPrefix+"0"))
	if err := store.SaveReports(shardDir, shardReports); err != nil {
		t.Fatalf("seed shard reports: %v", err)
	}

	workflow, _ := newTestWorkflow(t)

	if err := workflow.Merge(context.Background(), MergeArgs{Reports: m.Path(reportsDir)}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if _, err := os.Stat(string(shardDir)); !os.IsNotExist(err) {
		t.Errorf("expected shard directory to be removed")
	}

	merged, err := store.LoadReports(m.Path(reportsDir))
	if err != nil {
		t.Fatalf("load merged reports: %v", err)
	}

	if len(merged) != 1 || merged[0].Hash != "hash-a" {
		t.Fatalf("expected merged report, got %+v", merged)
	}
}

func TestWorkflowShardedCheckThenMerge(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "dirty.cc", dirtySource)
	writeSource(t, root, "clean.cc", cleanSource)

	reportsDir := filepath.Join(t.TempDir(), "reports")

	// Every shard analyzes the same tree; each persists only the files it
	// owns.
	for shard := 0; shard < 2; shard++ {
		workflow, _ := newTestWorkflow(t)

		err := workflow.Check(context.Background(), CheckArgs{
			EstimateArgs: EstimateArgs{
				Paths:   []m.Path{m.Path(root + "/...")},
				Reports: m.Path(reportsDir),
			},
			Threads:         1,
			ShardIndex:      shard,
			TotalShardCount: 2,
		})
		if err != nil {
			t.Fatalf("Check() shard %d error = %v", shard, err)
		}
	}

	workflow, _ := newTestWorkflow(t)

	if err := workflow.Merge(context.Background(), MergeArgs{Reports: m.Path(reportsDir)}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	merged, err := adapter.NewReportStore().LoadReports(m.Path(reportsDir))
	if err != nil {
		t.Fatalf("load merged reports: %v", err)
	}

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged reports, got %d", len(merged))
	}

	seen := map[m.RuleID]bool{}

	for _, report := range merged {
		for _, finding := range report.Findings {
			seen[finding.Rule] = true
		}
	}

	if !seen[m.RuleRawNew] || !seen[m.RuleManualDelete] {
		t.Errorf("merged reports lost findings, saw %v", seen)
	}
}
