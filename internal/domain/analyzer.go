package domain

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
	"sniff.dev/pkg/sniff/internal/adapter"
	"sniff.dev/pkg/sniff/internal/domain/rules"
	m "sniff.dev/pkg/sniff/internal/model"
)

// Analyzer generates diagnostics for C++ sources.
type Analyzer interface {
	Analyze(ctx context.Context, source m.Source, ruleIDs ...m.RuleID) ([]m.Diagnostic, error)
	Stream(ctx context.Context, sources <-chan m.Source, threads int, ruleIDs ...m.RuleID) (<-chan m.Diagnostic, <-chan error)
}

// ruleCheckers is the registry dispatching every rule to its matcher.
var ruleCheckers = map[m.RuleID]rules.CheckFunc{
	m.RuleConstructAssign: rules.CheckConstructAssign,
	m.RuleOutParam:        rules.CheckOutParam,
	m.RuleRawLoop:         rules.CheckRawLoop,
	m.RuleRawNew:          rules.CheckRawNew,
	m.RuleManualDelete:    rules.CheckManualDelete,
	m.RuleNonCanonOp:      rules.CheckNonCanonOp,
	m.RuleValueCopy:       rules.CheckValueCopy,
	m.RuleImplicitConv:    rules.CheckImplicitConv,
	m.RuleConstCast:       rules.CheckConstCast,
	m.RuleStaticInit:      rules.CheckStaticInit,
	m.RuleExternConst:     rules.CheckExternConst,
}

// analyzer handles pure diagnostic generation.
type analyzer struct {
	adapter.CppFileAdapter
	adapter.SourceFSAdapter
}

// NewAnalyzer creates an Analyzer backed by the provided adapters.
func NewAnalyzer(cppAdapter adapter.CppFileAdapter, fsAdapter adapter.SourceFSAdapter) Analyzer {
	return &analyzer{
		CppFileAdapter:  cppAdapter,
		SourceFSAdapter: fsAdapter,
	}
}

// Analyze parses one source and runs the selected rules over every node.
func (a *analyzer) Analyze(ctx context.Context, source m.Source, ruleIDs ...m.RuleID) ([]m.Diagnostic, error) {
	if err := validateSource(source); err != nil {
		return nil, err
	}

	resolved, err := resolveRules(ruleIDs)
	if err != nil {
		return nil, err
	}

	content, err := a.ReadFile(ctx, source.Origin.FullPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source.Origin.FullPath, err)
	}

	tree, err := a.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source.Origin.FullPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	source.Scopes = a.ExtractScopes(root, content)
	suppress := buildSuppressIndex(root, content)

	var (
		diagnostics []m.Diagnostic
		id          uint
	)

	walkTree(root, func(n *sitter.Node) bool {
		line := int(n.StartPoint().Row) + 1

		for _, rule := range resolved {
			if suppress.ignores(rule, line) {
				continue
			}

			diagnostics = append(diagnostics, ruleCheckers[rule](n, content, source, &id)...)
		}

		return true
	})

	for i := range diagnostics {
		diagnostics[i].Scope = a.ScopeForLine(source.Scopes, diagnostics[i].Line)
	}

	return diagnostics, nil
}

// Stream analyzes sources from a channel with a bounded worker pool. Both
// returned channels close when all work is done or the context is
// cancelled.
func (a *analyzer) Stream(ctx context.Context, sources <-chan m.Source, threads int, ruleIDs ...m.RuleID) (<-chan m.Diagnostic, <-chan error) {
	if threads <= 0 {
		threads = 1
	}

	diagnosticCh := make(chan m.Diagnostic, threads)
	errCh := make(chan error, 1)

	go func() {
		defer close(diagnosticCh)
		defer close(errCh)

		var group errgroup.Group
		group.SetLimit(threads)

		for source := range sources {
			if ctx.Err() != nil {
				break
			}

			currentSource := source

			group.Go(func() error {
				diagnostics, err := a.Analyze(ctx, currentSource, ruleIDs...)
				if err != nil {
					return err
				}

				for _, d := range diagnostics {
					select {
					case <-ctx.Done():
						return ctx.Err()
					case diagnosticCh <- d:
					}
				}

				return nil
			})
		}

		if err := group.Wait(); err != nil {
			errCh <- err
		}
	}()

	return diagnosticCh, errCh
}

func validateSource(source m.Source) error {
	if source.Origin == nil || source.Origin.FullPath == "" {
		return fmt.Errorf("missing source origin")
	}

	return nil
}

// resolveRules defaults to the full registry and rejects unknown IDs.
func resolveRules(ruleIDs []m.RuleID) ([]m.RuleID, error) {
	if len(ruleIDs) == 0 {
		return m.AllRules(), nil
	}

	for _, rule := range ruleIDs {
		if _, ok := ruleCheckers[rule]; !ok {
			return nil, fmt.Errorf("unknown rule: %s", rule)
		}
	}

	return ruleIDs, nil
}

// walkTree visits every named node depth-first. Returning false from fn
// skips the node's subtree.
func walkTree(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkTree(n.NamedChild(i), fn)
	}
}
