package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/platecrnn/internal/recognizer"
)

// recognizeCmd represents the recognize command.
var recognizeCmd = &cobra.Command{
	Use:   "recognize [flags] IMAGE...",
	Short: "Recognize license plates in image files",
	Long: `Run plate recognition on one or more images using an exported ONNX
model and the alphabet it was trained with.

Examples:
  platecrnn recognize plate.jpg --model model.onnx
  platecrnn recognize *.png --model model.onnx --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		modelPath := cfg.Recognizer.ModelPath
		if cmd.Flags().Changed("model") {
			modelPath, _ = cmd.Flags().GetString("model")
		}
		threads := cfg.Recognizer.NumThreads
		if cmd.Flags().Changed("threads") {
			threads, _ = cmd.Flags().GetInt("threads")
		}
		format, _ := cmd.Flags().GetString("format")

		rec, err := recognizer.New(recognizer.Config{
			ModelPath:    modelPath,
			AlphabetPath: cfg.AlphabetPath,
			Params:       cfg.Params,
			NumThreads:   threads,
		})
		if err != nil {
			return fmt.Errorf("initialize recognizer: %w", err)
		}
		defer func() { _ = rec.Close() }()

		type fileResult struct {
			File       string  `json:"file"`
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		}

		results := make([]fileResult, 0, len(args))
		for _, path := range args {
			res, err := rec.RecognizeFile(path)
			if err != nil {
				return fmt.Errorf("recognize %s: %w", path, err)
			}
			results = append(results, fileResult{
				File:       path,
				Text:       res.Text,
				Confidence: res.Confidence,
			})
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.3f\n", r.File, r.Text, r.Confidence)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().String("model", "", "path of the exported ONNX model")
	recognizeCmd.Flags().Int("threads", 0, "inference threads (0 lets the runtime decide)")
	recognizeCmd.Flags().String("format", "text", "output format (text, json)")
}
