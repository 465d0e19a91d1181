package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sniff.dev/pkg/sniff/internal/domain"
)

var fixDryRunFlag bool

// fixCmd represents the fix command.
var fixCmd = newFixCmd()

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Apply mechanical fix-its to C++ sources",
		Long:  fixLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			paths := parsePaths(args)

			rules, err := parseRules(viper.GetStringSlice(rulesConfigKey))
			if err != nil {
				return err
			}

			return workflow.Fix(context.Background(), domain.FixArgs{
				Paths:   paths,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Rules:   rules,
				DryRun:  fixDryRunFlag,
			})
		},
	}

	cmd.Flags().BoolVarP(&fixDryRunFlag, "dry-run", "n", false, "preview rewrites as diffs without modifying files")

	return cmd
}

func init() {
	rootCmd.AddCommand(fixCmd)
}
