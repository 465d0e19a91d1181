package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sniff.dev/pkg/sniff/internal/domain"
	m "sniff.dev/pkg/sniff/internal/model"
)

var checkParallelFlag int
var checkShardFlag string
var checkWatchFlag bool

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Analyze C++ sources for anti-patterns",
		Long:  checkLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			shardIndex, totalShards := parseShardFlag(checkShardFlag)
			paths := parsePaths(args)
			useCache := !viper.GetBool(noCacheFlagName)
			reportsPath := m.Path(viper.GetString(outputFlagName))
			threads := viper.GetInt(checkParallelConfigKey)

			rules, err := parseRules(viper.GetStringSlice(rulesConfigKey))
			if err != nil {
				return err
			}

			severity, err := parseSeverityOverrides()
			if err != nil {
				return err
			}

			return workflow.Check(cmd.Context(), domain.CheckArgs{
				EstimateArgs: domain.EstimateArgs{
					Paths:    paths,
					Exclude:  viper.GetStringSlice(excludeConfigKey),
					Rules:    rules,
					UseCache: useCache,
					Reports:  reportsPath,
				},
				Threads:         threads,
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				Watch:           checkWatchFlag,
				Severity:        severity,
			})
		},
	}

	configureCheckFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func configureCheckFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&checkParallelFlag, checkParallelFlagName, "p", viper.GetInt(checkParallelConfigKey), "number of parallel analysis workers")
	bindFlagToConfig(cmd.Flags().Lookup(checkParallelFlagName), checkParallelConfigKey)
	cmd.Flags().StringVarP(&checkShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
	cmd.Flags().BoolVarP(&checkWatchFlag, "watch", "w", false, "re-run the analysis whenever a watched source changes")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
