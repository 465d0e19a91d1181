// Package controller provides output adapters for displaying analysis
// results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "sniff.dev/pkg/sniff/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeEstimate StartMode = iota
	ModeCheck
	ModeView
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithEstimateMode sets the UI to estimation mode.
func WithEstimateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeEstimate
	}
}

// WithCheckMode sets the UI to analysis mode.
func WithCheckMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCheck
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// UI is the interface the workflow talks to for all user-facing output.
// Implementations can use different output methods (plain text, TUI).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayEstimation(ctx context.Context, diagnostics []m.Diagnostic, err error) error
	DisplayConcurrencyInfo(ctx context.Context, threads, shardIndex, shardCount int)
	DisplayFindings(ctx context.Context, reports []m.Report) error
	DisplayHygieneScore(ctx context.Context, score float64)
	DisplayPatch(ctx context.Context, patch m.Patch) error
	DisplayFixSummary(ctx context.Context, changed, applied int, dryRun bool)
}

// NewUI picks the interactive TUI on terminals and the plain writer
// everywhere else.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
