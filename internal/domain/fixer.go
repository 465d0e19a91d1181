package domain

import (
	"context"
	"fmt"
	"log/slog"

	"sniff.dev/pkg/sniff/internal/adapter"
	m "sniff.dev/pkg/sniff/internal/model"
)

// Fixer coordinates turning a file's fix-it diagnostics into a patch and,
// outside dry runs, writing it back to disk.
type Fixer interface {
	FixSource(ctx context.Context, source m.Source, diagnostics []m.Diagnostic, dryRun bool) (m.Patch, error)
}

type fixer struct {
	fsAdapter adapter.SourceFSAdapter
	rewriter  adapter.Rewriter
}

// NewFixer constructs a Fixer backed by the provided filesystem adapter and
// rewriter.
func NewFixer(fsAdapter adapter.SourceFSAdapter, rewriter adapter.Rewriter) Fixer {
	return &fixer{
		fsAdapter: fsAdapter,
		rewriter:  rewriter,
	}
}

// FixSource applies every fix-it among diagnostics to source. Diagnostics
// without a fix are skipped. With dryRun the patch is returned unwritten.
func (f *fixer) FixSource(ctx context.Context, source m.Source, diagnostics []m.Diagnostic, dryRun bool) (m.Patch, error) {
	if err := validateSource(source); err != nil {
		return m.Patch{}, err
	}

	content, err := f.fsAdapter.ReadFile(ctx, source.Origin.FullPath)
	if err != nil {
		return m.Patch{}, fmt.Errorf("read %s: %w", source.Origin.FullPath, err)
	}

	var fixes []m.FixIt

	for _, d := range diagnostics {
		if d.Fix != nil {
			fixes = append(fixes, *d.Fix)
		}
	}

	patch := m.Patch{
		Path:    source.Origin.ShortPath,
		Before:  content,
		After:   content,
		Applied: 0,
	}

	if len(fixes) == 0 {
		return patch, nil
	}

	patched, err := f.rewriter.Apply(content, fixes)
	if err != nil {
		return m.Patch{}, fmt.Errorf("apply fixes to %s: %w", source.Origin.ShortPath, err)
	}

	patch.After = patched
	patch.Applied = len(fixes)

	if dryRun || !patch.Changed() {
		return patch, nil
	}

	info, err := f.fsAdapter.FileInfo(source.Origin.FullPath)
	if err != nil {
		return m.Patch{}, err
	}

	if err := f.fsAdapter.WriteFile(source.Origin.FullPath, patched, info.Mode()); err != nil {
		return m.Patch{}, fmt.Errorf("write %s: %w", source.Origin.FullPath, err)
	}

	slog.Info("applied fixes", "path", source.Origin.ShortPath, "count", patch.Applied)

	return patch, nil
}
