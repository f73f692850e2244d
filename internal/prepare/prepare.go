// Package prepare turns a raw annotation CSV into the formatted train, test
// and validation splits plus the alphabet lookup the rest of the pipeline
// consumes.
package prepare

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/platecrnn/internal/alphabet"
)

// RawRecord is one row of the raw annotation CSV.
type RawRecord struct {
	ImagePath string
	Plate     string
}

// Options controls dataset preparation.
type Options struct {
	// Seed fixes the shuffle so splits are reproducible.
	Seed int64
	// CSVDelimiter separates path and label in the written CSVs.
	CSVDelimiter string
	// SplitDelimiter wraps and separates the character units of a label.
	SplitDelimiter string
}

// Result reports what a preparation run produced.
type Result struct {
	TrainCSV     string
	TestCSV      string
	ValCSV       string
	AlphabetPath string
	Total        int
	TrainCount   int
	TestCount    int
	ValCount     int
}

// ReadRawCSV reads a comma-separated annotation file with a header line
// containing image_path and lp columns.
func ReadRawCSV(path string) ([]RawRecord, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-provided dataset path is expected
	if err != nil {
		return nil, fmt.Errorf("open raw csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read raw csv header: %w", err)
	}
	pathCol, plateCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "image_path":
			pathCol = i
		case "lp":
			plateCol = i
		}
	}
	if pathCol < 0 || plateCol < 0 {
		return nil, fmt.Errorf("raw csv must have image_path and lp columns, got %v", header)
	}

	var records []RawRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read raw csv line %d: %w", line, err)
		}
		if pathCol >= len(row) || plateCol >= len(row) {
			return nil, fmt.Errorf("raw csv line %d: missing columns", line)
		}
		plate := strings.TrimSpace(row[plateCol])
		if plate == "" {
			continue
		}
		records = append(records, RawRecord{
			ImagePath: strings.ReplaceAll(row[pathCol], `\`, "/"),
			Plate:     plate,
		})
	}
	return records, nil
}

// FormatLabel turns a plate string into its delimited unit form, one unit
// per character: "AB1" becomes "|A|B|1|".
func FormatLabel(plate, splitDelim string) string {
	var sb strings.Builder
	sb.WriteString(splitDelim)
	for _, r := range norm.NFC.String(plate) {
		sb.WriteRune(r)
		sb.WriteString(splitDelim)
	}
	return sb.String()
}

// Split shuffles records with the given seed and divides them 80/10/10 into
// train, test and validation sets.
func Split(records []RawRecord, seed int64) (train, test, val []RawRecord) {
	shuffled := make([]RawRecord, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible shuffle, not crypto
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	holdout := len(shuffled) / 5
	trainEnd := len(shuffled) - holdout
	testEnd := trainEnd + holdout/2
	return shuffled[:trainEnd], shuffled[trainEnd:testEnd], shuffled[testEnd:]
}

// writeLabelCSV writes path;|A|B|1| lines.
func writeLabelCSV(path string, records []RawRecord, opts Options) error {
	f, err := os.Create(path) //nolint:gosec // G304: writing to user-chosen output path
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, rec := range records {
		label := FormatLabel(rec.Plate, opts.SplitDelimiter)
		if _, err := fmt.Fprintf(w, "%s%s%s\n", rec.ImagePath, opts.CSVDelimiter, label); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// Dataset reads the raw annotation CSV, writes shuffled train/test/val
// splits in formatted form and generates the alphabet lookup covering all
// three files.
func Dataset(rawCSV, outputDir string, opts Options) (*Result, error) {
	if opts.CSVDelimiter == "" || opts.SplitDelimiter == "" {
		return nil, errors.New("csv and split delimiters must be set")
	}

	records, err := ReadRawCSV(rawCSV)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no usable records in %s", rawCSV)
	}
	slog.Info("Read raw annotations", "path", rawCSV, "records", len(records))

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	train, test, val := Split(records, opts.Seed)

	res := &Result{
		TrainCSV:     filepath.Join(outputDir, "train.csv"),
		TestCSV:      filepath.Join(outputDir, "test.csv"),
		ValCSV:       filepath.Join(outputDir, "val.csv"),
		AlphabetPath: filepath.Join(outputDir, "alphabet_lookup.json"),
		Total:        len(records),
		TrainCount:   len(train),
		TestCount:    len(test),
		ValCount:     len(val),
	}

	for _, part := range []struct {
		path    string
		records []RawRecord
	}{
		{res.TrainCSV, train},
		{res.TestCSV, test},
		{res.ValCSV, val},
	} {
		if err := writeLabelCSV(part.path, part.records, opts); err != nil {
			return nil, err
		}
	}
	slog.Info("Wrote dataset splits",
		"train", res.TrainCount, "test", res.TestCount, "val", res.ValCount)

	a, err := alphabet.BuildFromLabelFiles(
		[]string{res.TrainCSV, res.TestCSV, res.ValCSV},
		opts.CSVDelimiter, opts.SplitDelimiter,
	)
	if err != nil {
		return nil, fmt.Errorf("build alphabet: %w", err)
	}
	if err := a.Save(res.AlphabetPath); err != nil {
		return nil, fmt.Errorf("save alphabet: %w", err)
	}
	slog.Info("Generated alphabet", "path", res.AlphabetPath, "classes", a.Size())

	return res, nil
}
