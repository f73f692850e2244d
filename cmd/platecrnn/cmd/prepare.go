package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/platecrnn/internal/prepare"
)

// prepareCmd represents the prepare command.
var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Format raw annotations into dataset splits and an alphabet",
	Long: `Read a raw annotation CSV (image_path,lp columns), format the plate
strings into delimited unit labels, shuffle the samples into train, test and
validation splits and generate the alphabet lookup covering them.

Examples:
  platecrnn prepare --raw-csv trainVal.csv --output-dir generated
  platecrnn prepare --raw-csv trainVal.csv --output-dir generated --seed 7`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		rawCSV, _ := cmd.Flags().GetString("raw-csv")
		if rawCSV == "" {
			return fmt.Errorf("--raw-csv is required")
		}

		outputDir := cfg.OutputDir
		if cmd.Flags().Changed("output-dir") {
			outputDir, _ = cmd.Flags().GetString("output-dir")
		}
		seed, _ := cmd.Flags().GetInt64("seed")

		res, err := prepare.Dataset(rawCSV, outputDir, prepare.Options{
			Seed:           seed,
			CSVDelimiter:   cfg.Params.CSVDelimiter,
			SplitDelimiter: cfg.Params.SplitDelimiter,
		})
		if err != nil {
			return fmt.Errorf("prepare dataset: %w", err)
		}

		slog.Info("Dataset prepared",
			"total", res.Total,
			"train", res.TrainCount,
			"test", res.TestCount,
			"val", res.ValCount,
			"alphabet", res.AlphabetPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	prepareCmd.Flags().String("raw-csv", "", "raw annotation CSV with image_path and lp columns")
	prepareCmd.Flags().Int64("seed", 42, "shuffle seed for reproducible splits")
}
