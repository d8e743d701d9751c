package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/foodlabel/internal/model"
	"github.com/ppiankov/foodlabel/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	labelsPath  string
	applyOut    string
	labelColumn string
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Add the food labels to the logs as a new CSV column",
	Long: `Apply loads the food logs, looks up every row's food in a label file and
writes one combined CSV: all log columns, the subject column and the label
column (default "class"). Rows without a label get an empty cell.

Example:
  foodlabel apply
  foodlabel apply --labels food_classes.json --out labeled.csv`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "directory holding one food log CSV per subject")
	applyCmd.Flags().StringVar(&column, "column", "logged_food", "food description column")
	applyCmd.Flags().StringVar(&labelsPath, "labels", "food_classes.json", "label file written by 'foodlabel label'")
	applyCmd.Flags().StringVar(&applyOut, "out", "labeled.csv", "output CSV path")
	applyCmd.Flags().StringVar(&labelColumn, "label-column", "class", "name of the added label column")
}

// applyApplyFlags copies explicitly set apply flags over cfg
func applyApplyFlags(cmd *cobra.Command, cfg *model.Config) {
	fs := cmd.Flags()
	if fs.Changed("labels") {
		cfg.Output.Path = labelsPath
	}
	if fs.Changed("label-column") {
		cfg.Output.LabelColumn = labelColumn
	}
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, applyInputFlags, applyApplyFlags)
	if err != nil {
		return err
	}

	labels, err := pipeline.ReadLabels(cfg.Output.Path)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg, nil, pipeline.WithLogger(cmdLogger()))
	table, err := p.LoadTable(context.Background())
	if err != nil {
		return err
	}

	stats, err := pipeline.NewApplier(cfg.Input.Column, cfg.Output.LabelColumn).Apply(table, labels, applyOut)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Read %d labels from %s\n", labels.Len(), cfg.Output.Path)
	fmt.Fprintf(os.Stderr, "✓ Labeled %d of %d rows (%d without label)\n", stats.Labeled, stats.Rows, stats.Unlabeled)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", applyOut)

	return nil
}
