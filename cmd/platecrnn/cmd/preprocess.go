package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
	"github.com/MeKo-Tech/platecrnn/internal/preprocess"
)

// preprocessCmd represents the preprocess command.
var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Filter and encode dataset CSVs for training",
	Long: `Encode the formatted train and eval CSVs into their numeric form:
labels become padded code sequences and samples that cannot be represented
within the model geometry are removed.

Examples:
  platecrnn preprocess --train-csv generated/train.csv --eval-csv generated/val.csv
  platecrnn preprocess --train-csv train.csv --eval-csv val.csv --workers 8`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()

		trainCSV := cfg.Data.TrainCSV
		if cmd.Flags().Changed("train-csv") {
			trainCSV, _ = cmd.Flags().GetString("train-csv")
		}
		evalCSV := cfg.Data.EvalCSV
		if cmd.Flags().Changed("eval-csv") {
			evalCSV, _ = cmd.Flags().GetString("eval-csv")
		}
		if trainCSV == "" || evalCSV == "" {
			return fmt.Errorf("--train-csv and --eval-csv are required")
		}

		workers := cfg.Preprocess.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}

		a, err := alphabet.Load(cfg.AlphabetPath)
		if err != nil {
			return fmt.Errorf("load alphabet: %w", err)
		}
		params := cfg.Params
		params.Alphabet = a
		if err := params.Validate(); err != nil {
			return fmt.Errorf("invalid params: %w", err)
		}

		trainOut, evalOut, err := preprocess.Dataset(
			cmd.Context(), trainCSV, evalCSV, cfg.OutputDir, &params,
			preprocess.Options{Workers: workers},
		)
		if err != nil {
			return fmt.Errorf("preprocess dataset: %w", err)
		}

		slog.Info("Preprocessing finished", "train", trainOut, "eval", evalOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	preprocessCmd.Flags().String("train-csv", "", "formatted training CSV")
	preprocessCmd.Flags().String("eval-csv", "", "formatted evaluation CSV")
	preprocessCmd.Flags().Int("workers", 0, "number of concurrent workers (0 uses config)")
}
