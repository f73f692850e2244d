package preprocess

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
	"github.com/MeKo-Tech/platecrnn/internal/config"
)

// Options controls how a preprocessing run executes.
type Options struct {
	Workers int // 0 = runtime.NumCPU()
}

// outcome is the per-sample result of filtering and encoding.
type outcome struct {
	encoded EncodedSample
	kept    bool
	err     error
}

// Preprocess filters and encodes samples according to params. Samples whose
// labels cannot fit the fixed-width target, or whose estimated input length
// is not strictly greater than the label length, are silently removed and
// counted in Stats. An unencodable character or an unreadable image aborts
// the whole run; a truncated dataset must never be produced silently.
//
// Sample order is preserved in the output, though callers must not rely on
// it: rows are independent and each retained row's (path, codes, length)
// tuple is internally consistent regardless of scheduling.
func Preprocess(ctx context.Context, samples []Sample, params *config.Params, opts Options) ([]EncodedSample, Stats, error) {
	if params == nil {
		return nil, Stats{}, fmt.Errorf("params is nil")
	}
	if params.Alphabet == nil {
		return nil, Stats{}, fmt.Errorf("params has no alphabet attached")
	}
	stats := Stats{Total: len(samples)}
	if len(samples) == 0 {
		return nil, stats, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(samples) {
		workers = len(samples)
	}

	outcomes := make([]outcome, len(samples))
	if workers == 1 {
		for i := range samples {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
			outcomes[i] = encodeOne(samples[i], params)
		}
	} else {
		if err := runWorkers(ctx, samples, params, workers, outcomes); err != nil {
			return nil, stats, err
		}
	}

	encoded := make([]EncodedSample, 0, len(samples))
	for i := range outcomes {
		if outcomes[i].err != nil {
			return nil, stats, outcomes[i].err
		}
		if outcomes[i].kept {
			encoded = append(encoded, outcomes[i].encoded)
		}
	}
	stats.Kept = len(encoded)
	stats.Removed = stats.Total - stats.Kept
	return encoded, stats, nil
}

// runWorkers shards sample encoding across a worker pool. Each index is
// written by exactly one worker, so outcomes needs no locking.
func runWorkers(parent context.Context, samples []Sample, params *config.Params, workers int, outcomes []outcome) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	jobs := make(chan int, len(samples))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = encodeOne(samples[i], params)
				if outcomes[i].err != nil {
					cancel() // stop submitting once a hard error is found
					return
				}
			}
		}()
	}

submit:
	for i := range samples {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break submit
		}
	}
	close(jobs)
	wg.Wait()
	// Only external cancellation matters here; the internal cancel on a
	// hard error is surfaced through the outcome itself.
	return parent.Err()
}

// encodeOne applies the filtering and encoding steps to a single sample.
func encodeOne(s Sample, params *config.Params) outcome {
	units := Units(s.Label, params.SplitDelimiter)
	labelLen := len(units)

	// Too long for the fixed-width target.
	if labelLen > params.MaxCharsPerString {
		return outcome{}
	}

	w, h, err := ImageSize(s.Path)
	if err != nil {
		return outcome{err: fmt.Errorf("sample %s: %w", s.Path, err)}
	}

	// CTC needs the input sequence strictly longer than the target.
	inputLen := params.InputLength(w, h)
	if labelLen >= inputLen {
		return outcome{}
	}

	codes := make([]int, params.MaxCharsPerString)
	for i, u := range units {
		code, err := params.Alphabet.Encode(norm.NFC.String(u))
		if err != nil {
			return outcome{err: fmt.Errorf("sample %s: encode label: %w", s.Path, err)}
		}
		codes[i] = code
	}
	for i := labelLen; i < len(codes); i++ {
		codes[i] = alphabet.BlankCode
	}

	return outcome{
		encoded: EncodedSample{Path: s.Path, Codes: codes, Length: labelLen},
		kept:    true,
	}
}

// PreprocessCSV reads a raw dataset CSV, preprocesses it and writes the
// encoded rows. Returns the number of retained samples.
func PreprocessCSV(ctx context.Context, inPath, outPath string, params *config.Params, opts Options) (int, Stats, error) {
	samples, err := ReadSamples(inPath, params.CSVDelimiter)
	if err != nil {
		return 0, Stats{}, err
	}
	encoded, stats, err := Preprocess(ctx, samples, params, opts)
	if err != nil {
		return 0, stats, err
	}
	if stats.Removed > 0 {
		slog.Info("removed samples",
			"csv", inPath,
			"removed", stats.Removed,
			"percent", fmt.Sprintf("%.2f", stats.RemovedPercent()))
	}
	if err := WriteEncoded(outPath, params.CSVDelimiter, encoded); err != nil {
		return 0, stats, err
	}
	return len(encoded), stats, nil
}

// Dataset preprocesses the train and eval CSVs into
// <outputDir>/preprocessed/updated_{train,eval}.csv and returns both paths.
func Dataset(ctx context.Context, trainCSV, evalCSV, outputDir string, params *config.Params, opts Options) (trainOut, evalOut string, err error) {
	dir := filepath.Join(outputDir, "preprocessed")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", "", fmt.Errorf("create preprocessed dir: %w", err)
	}
	trainOut = filepath.Join(dir, "updated_train.csv")
	evalOut = filepath.Join(dir, "updated_eval.csv")

	nTrain, _, err := PreprocessCSV(ctx, trainCSV, trainOut, params, opts)
	if err != nil {
		return "", "", fmt.Errorf("preprocess train csv: %w", err)
	}
	nEval, _, err := PreprocessCSV(ctx, evalCSV, evalOut, params, opts)
	if err != nil {
		return "", "", fmt.Errorf("preprocess eval csv: %w", err)
	}
	slog.Info("preprocessing complete", "train_samples", nTrain, "eval_samples", nEval)
	return trainOut, evalOut, nil
}
