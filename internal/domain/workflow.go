package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"sniff.dev/pkg/sniff/internal/adapter"
	"sniff.dev/pkg/sniff/internal/controller"
	m "sniff.dev/pkg/sniff/internal/model"
	"sniff.dev/pkg/sniff/pkg"
)

// watchDebounce is how long the watcher waits after the last change before
// re-running the analysis.
const watchDebounce = 500 * time.Millisecond

// EstimateArgs configures source discovery shared by check and list.
type EstimateArgs struct {
	Paths    []m.Path
	Exclude  []string
	Rules    []m.RuleID
	UseCache bool
	Reports  m.Path
}

// CheckArgs configures a full analysis run.
type CheckArgs struct {
	EstimateArgs
	Threads         int
	ShardIndex      int
	TotalShardCount int
	Watch           bool
	Severity        map[m.RuleID]m.Severity
}

// ViewArgs configures report viewing.
type ViewArgs struct {
	Reports m.Path
}

// FixArgs configures fix application.
type FixArgs struct {
	Paths   []m.Path
	Exclude []string
	Rules   []m.RuleID
	DryRun  bool
}

// MergeArgs configures shard merging.
type MergeArgs struct {
	Reports m.Path
}

// Workflow is the use-case layer behind every CLI command.
type Workflow interface {
	Check(ctx context.Context, args CheckArgs) error
	Estimate(ctx context.Context, args EstimateArgs) error
	View(ctx context.Context, args ViewArgs) error
	Fix(ctx context.Context, args FixArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.ReportStore
	controller.UI
	SourceStreamer
	Analyzer
	Fixer

	fsAdapter adapter.SourceFSAdapter
	watcher   adapter.Watcher
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	streamer SourceStreamer,
	analyzer Analyzer,
	fixer Fixer,
	watcher adapter.Watcher,
) Workflow {
	return &workflow{
		ReportStore:    reportStore,
		UI:             ui,
		SourceStreamer: streamer,
		Analyzer:       analyzer,
		Fixer:          fixer,
		fsAdapter:      fsAdapter,
		watcher:        watcher,
	}
}

// Check runs the analysis, persists reports and shows the findings. With
// Watch it keeps re-running after each burst of source changes.
func (w *workflow) Check(ctx context.Context, args CheckArgs) error {
	if err := w.checkOnce(ctx, args); err != nil {
		return err
	}

	if !args.Watch {
		return nil
	}

	ticks, err := w.watcher.Watch(ctx, args.Paths, watchDebounce)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for range ticks {
		slog.Info("sources changed, re-running analysis")

		if err := w.checkOnce(ctx, args); err != nil {
			return err
		}
	}

	return ctx.Err()
}

func (w *workflow) checkOnce(ctx context.Context, args CheckArgs) error {
	if err := w.Start(ctx, controller.WithCheckMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	w.DisplayConcurrencyInfo(ctx, args.Threads, args.ShardIndex, args.TotalShardCount)

	sources, err := w.fsAdapter.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("discover sources: %w", err)
	}

	reportsDir := shardReportsDir(args.Reports, args.ShardIndex, args.TotalShardCount)

	toAnalyze, cached, err := w.splitCached(args.EstimateArgs, reportsDir, sources)
	if err != nil {
		return err
	}

	toAnalyze = shardSources(toAnalyze, args.ShardIndex, args.TotalShardCount)

	reports, err := w.analyzeToReports(ctx, toAnalyze, args)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if args.Reports != "" {
		if err := w.SaveReports(reportsDir, reports); err != nil {
			return fmt.Errorf("save reports: %w", err)
		}

		if err := w.CleanReports(reportsDir, sources); err != nil {
			return fmt.Errorf("clean stale reports: %w", err)
		}
	}

	all := append(cached, reports...)

	if err := w.DisplayFindings(ctx, all); err != nil {
		return err
	}

	score, err := scoreReports(all)
	if err != nil {
		return err
	}

	w.DisplayHygieneScore(ctx, score)
	w.Wait(ctx)

	return nil
}

// splitCached separates sources with a current persisted report from those
// needing re-analysis.
func (w *workflow) splitCached(args EstimateArgs, reportsDir m.Path, sources []m.Source) ([]m.Source, []m.Report, error) {
	if !args.UseCache || args.Reports == "" {
		return sources, nil, nil
	}

	changed, cached, err := w.CheckUpdates(reportsDir, sources)
	if err != nil {
		return nil, nil, fmt.Errorf("check cached reports: %w", err)
	}

	slog.Debug("cache split", "changed", len(changed), "cached", len(cached))

	return changed, cached, nil
}

// analyzeToReports drives the streaming pipeline: sources feed a bounded
// worker pool, diagnostics are shard-filtered and spilled to disk, then
// folded into one report per source.
func (w *workflow) analyzeToReports(ctx context.Context, sources []m.Source, args CheckArgs) ([]m.Report, error) {
	spill, err := pkg.NewSpill[m.Diagnostic]()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = spill.Close()
		_ = spill.Remove()
	}()

	group, groupCtx := errgroup.WithContext(ctx)

	sourceCh := sliceToChannel(groupCtx, sources, args.Threads)
	diagnosticCh, errCh := w.Stream(groupCtx, sourceCh, args.Threads, args.Rules...)
	shardedCh := w.ShardDiagnostics(groupCtx, diagnosticCh, args.Threads, args.ShardIndex, args.TotalShardCount)

	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case d, ok := <-shardedCh:
				if !ok {
					return nil
				}

				if err := spill.Append(d); err != nil {
					return err
				}
			}
		}
	})

	group.Go(func() error {
		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		case err, ok := <-errCh:
			if !ok {
				return nil
			}

			return err
		}
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return foldReports(spill, sources, args.Severity)
}

// foldReports groups spilled diagnostics by source hash and emits one
// report per analyzed source, clean files included.
func foldReports(spill pkg.Spill[m.Diagnostic], sources []m.Source, overrides map[m.RuleID]m.Severity) ([]m.Report, error) {
	byHash := map[string][]m.Diagnostic{}

	err := spill.Range(func(_ uint64, d m.Diagnostic) error {
		if d.Source.Origin == nil {
			return nil
		}

		if severity, ok := overrides[d.Rule]; ok {
			d.Severity = severity
		}

		byHash[d.Source.Origin.Hash] = append(byHash[d.Source.Origin.Hash], d)

		return nil
	})
	if err != nil {
		return nil, err
	}

	reports := make([]m.Report, 0, len(sources))

	for _, source := range sources {
		if source.Origin == nil {
			continue
		}

		reports = append(reports, m.NewReport(source, byHash[source.Origin.Hash]))
	}

	return reports, nil
}

// Estimate lists per-file candidate diagnostic counts without persisting.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if err := w.Start(ctx, controller.WithEstimateMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	diagnostics, err := w.collectDiagnostics(ctx, args)

	if displayErr := w.DisplayEstimation(ctx, diagnostics, err); displayErr != nil {
		return displayErr
	}

	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) collectDiagnostics(ctx context.Context, args EstimateArgs) ([]m.Diagnostic, error) {
	group, groupCtx := errgroup.WithContext(ctx)

	sourceCh := w.Sources(groupCtx, args.Paths, args.Exclude, 1)
	diagnosticCh, errCh := w.Stream(groupCtx, sourceCh, 1, args.Rules...)

	var diagnostics []m.Diagnostic

	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case d, ok := <-diagnosticCh:
				if !ok {
					return nil
				}

				diagnostics = append(diagnostics, d)
			}
		}
	})

	group.Go(func() error {
		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		case err, ok := <-errCh:
			if !ok || err == nil {
				return nil
			}

			return err
		}
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return diagnostics, nil
}

// View loads persisted reports and shows them.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}
	defer w.Close(ctx)

	reports, err := w.LoadReports(args.Reports)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}

	if err := w.DisplayFindings(ctx, reports); err != nil {
		return err
	}

	score, err := scoreReports(reports)
	if err != nil {
		return err
	}

	w.DisplayHygieneScore(ctx, score)
	w.Wait(ctx)

	return nil
}

// Fix analyzes the given paths and applies (or previews) fix-its.
func (w *workflow) Fix(ctx context.Context, args FixArgs) error {
	sources, err := w.fsAdapter.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return fmt.Errorf("discover sources: %w", err)
	}

	changed := 0
	applied := 0

	for _, source := range sources {
		diagnostics, err := w.Analyze(ctx, source, args.Rules...)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", source.Origin.ShortPath, err)
		}

		patch, err := w.FixSource(ctx, source, diagnostics, args.DryRun)
		if err != nil {
			return err
		}

		if !patch.Changed() {
			continue
		}

		changed++
		applied += patch.Applied

		if args.DryRun {
			if err := w.DisplayPatch(ctx, patch); err != nil {
				return err
			}
		}
	}

	w.DisplayFixSummary(ctx, changed, applied, args.DryRun)

	return nil
}

// Merge folds shard_* report directories into the main reports directory.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.MergeShards(args.Reports); err != nil {
		return fmt.Errorf("merge shards: %w", err)
	}

	slog.Info("merged shard reports", "dir", args.Reports)

	return nil
}

// scoreReports runs the hygiene score over a disk-spilled copy of the
// reports so scoring shares one code path with arbitrarily large scans.
func scoreReports(reports []m.Report) (float64, error) {
	spill, err := pkg.NewSpill[m.Report]()
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = spill.Close()
		_ = spill.Remove()
	}()

	if err := spill.AppendBatch(reports); err != nil {
		return 0, err
	}

	return hygieneScoreFromReports(spill)
}

func shardReportsDir(reports m.Path, shardIndex, totalShardCount int) m.Path {
	if reports == "" || totalShardCount <= 1 {
		return reports
	}

	return m.Path(filepath.Join(string(reports), fmt.Sprintf("%s%d", adapter.ShardDirPrefix, shardIndex)))
}

// sliceToChannel feeds sources into a channel, closing it when done or when
// ctx is cancelled.
func sliceToChannel(ctx context.Context, sources []m.Source, threads int) <-chan m.Source {
	ch := make(chan m.Source, bufferSize(threads))

	go func() {
		defer close(ch)

		for _, source := range sources {
			select {
			case <-ctx.Done():
				return
			case ch <- source:
			}
		}
	}()

	return ch
}
