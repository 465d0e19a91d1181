package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sniff.dev/pkg/sniff/internal/domain"
	m "sniff.dev/pkg/sniff/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files and candidate finding counts",
		Long:  listLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			paths := parsePaths(args)
			useCache := !viper.GetBool(noCacheFlagName)
			reportsPath := m.Path(viper.GetString(outputFlagName))

			rules, err := parseRules(viper.GetStringSlice(rulesConfigKey))
			if err != nil {
				return err
			}

			return workflow.Estimate(context.Background(), domain.EstimateArgs{
				Paths:    paths,
				Exclude:  viper.GetStringSlice(excludeConfigKey),
				Rules:    rules,
				UseCache: useCache,
				Reports:  reportsPath,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
