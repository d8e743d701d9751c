package cli

import (
	"github.com/ppiankov/foodlabel/internal/pipeline"
	"github.com/spf13/cobra"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [labels.json]",
	Short: "Print the label distribution of a label file",
	Long: `Summary counts how many foods carry each label, most common first.
Empty labels are reported as (unlabeled).

Example:
  foodlabel summary
  foodlabel summary classes.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		path := cfg.Output.Path
		if len(args) == 1 {
			path = args[0]
		}

		labels, err := pipeline.ReadLabels(path)
		if err != nil {
			return err
		}

		pipeline.RenderSummary(cmd.OutOrStdout(), path, labels)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
