// Package cmd provides the root command and CLI setup for sniff.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"sniff.dev/pkg/sniff/internal/adapter"
	"sniff.dev/pkg/sniff/internal/controller"
	"sniff.dev/pkg/sniff/internal/domain"
	m "sniff.dev/pkg/sniff/internal/model"
)

var cppFileAdapter adapter.CppFileAdapter
var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var rewriter adapter.Rewriter
var watcher adapter.Watcher
var streamer domain.SourceStreamer
var analyzer domain.Analyzer
var fixer domain.Fixer
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// ruleFilter restricts applicable commands to a subset of the registry.
var ruleFilter []string

// logFileFlag overrides the log file location.
var logFileFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	cppFileAdapter = adapter.NewLocalCppFileAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	rewriter = adapter.NewSpanRewriter()
	watcher = adapter.NewFsnotifyWatcher()
	streamer = domain.NewSourceStreamer(fsAdapter)
	analyzer = domain.NewAnalyzer(cppFileAdapter, fsAdapter)
	fixer = domain.NewFixer(fsAdapter, rewriter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ui,
		streamer,
		analyzer,
		fixer,
		watcher,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./src/...      recursively scan src directory
  - ./src ./lib    scan multiple directories`

const rootLongDescription = `Sniff is a C++ hygiene checker that scans translation units for common
anti-patterns (raw owning pointers, out-parameters, raw loops, missing
explicit, const_cast and friends) and suggests mechanical fixes.

` + pathPatternsHelp

const checkLongDescription = `Analyze the given paths and report idiom violations (default: current
directory).

` + pathPatternsHelp

const listLongDescription = `List source files and the number of candidate findings per file.

` + pathPatternsHelp

const fixLongDescription = `Apply the mechanical fix-its for the given paths in place. Use --dry-run
to preview the rewrites as unified diffs without touching any file.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sniff",
		Short: "C++ anti-pattern checker",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for analysis reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable cached incremental runs (re-analyze everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringSliceVarP(&ruleFilter, rulesFlagName, "r", viper.GetStringSlice(rulesConfigKey), "restrict analysis to the given rule IDs (default: all)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(rulesFlagName), rulesConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", viper.GetString(logFilenameKey), "log file location")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// parseRules validates the rule filter against the registry. An empty filter
// means the full registry.
func parseRules(names []string) ([]m.RuleID, error) {
	if len(names) == 0 {
		return nil, nil
	}

	known := map[m.RuleID]bool{}
	for _, rule := range m.AllRules() {
		known[rule] = true
	}

	rules := make([]m.RuleID, 0, len(names))

	for _, name := range names {
		rule := m.RuleID(name)
		if !known[rule] {
			return nil, fmt.Errorf("unknown rule %q", name)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// parseSeverityOverrides reads the rules.severity config map. Unknown rules
// or severities are rejected so typos do not silently disable an override.
func parseSeverityOverrides() (map[m.RuleID]m.Severity, error) {
	raw := viper.GetStringMapString(severityConfigKey)
	if len(raw) == 0 {
		return nil, nil
	}

	known := map[m.RuleID]bool{}
	for _, rule := range m.AllRules() {
		known[rule] = true
	}

	overrides := make(map[m.RuleID]m.Severity, len(raw))

	for name, value := range raw {
		rule := m.RuleID(name)
		if !known[rule] {
			return nil, fmt.Errorf("severity override for unknown rule %q", name)
		}

		switch severity := m.Severity(value); severity {
		case m.SeverityNote, m.SeverityWarning, m.SeverityError:
			overrides[rule] = severity
		default:
			return nil, fmt.Errorf("invalid severity %q for rule %q", value, name)
		}
	}

	return overrides, nil
}
