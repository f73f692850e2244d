package preprocess

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadSamples reads raw "path<delim>label" rows. Blank lines are skipped;
// a row without the delimiter is a hard error.
func ReadSamples(path, delimiter string) ([]Sample, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided CSV path is expected
	if err != nil {
		return nil, fmt.Errorf("open samples csv: %w", err)
	}
	defer closeQuiet(f)

	var samples []Sample
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		imgPath, label, ok := strings.Cut(line, delimiter)
		if !ok {
			return nil, fmt.Errorf("%s:%d: missing %q delimiter", path, lineNum, delimiter)
		}
		samples = append(samples, Sample{Path: imgPath, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read samples csv %s: %w", path, err)
	}
	return samples, nil
}

// WriteEncoded persists encoded samples as
// "path<delim>space-joined-codes<delim>true-length" rows.
func WriteEncoded(path, delimiter string, samples []EncodedSample) error {
	f, err := os.Create(path) //nolint:gosec // G304: writing user-provided output path is expected
	if err != nil {
		return fmt.Errorf("create output csv: %w", err)
	}
	defer closeQuiet(f)

	w := bufio.NewWriter(f)
	for _, s := range samples {
		codes := make([]string, len(s.Codes))
		for i, c := range s.Codes {
			codes[i] = strconv.Itoa(c)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s%s%d\n",
			s.Path, delimiter, strings.Join(codes, " "), delimiter, s.Length); err != nil {
			return fmt.Errorf("write output csv: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output csv: %w", err)
	}
	return nil
}

// ReadEncoded parses rows written by WriteEncoded.
func ReadEncoded(path, delimiter string) ([]EncodedSample, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided CSV path is expected
	if err != nil {
		return nil, fmt.Errorf("open encoded csv: %w", err)
	}
	defer closeQuiet(f)

	var samples []EncodedSample
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%s:%d: expected 3 fields, got %d", path, lineNum, len(fields))
		}
		codeFields := strings.Fields(fields[1])
		codes := make([]int, len(codeFields))
		for i, cf := range codeFields {
			c, err := strconv.Atoi(cf)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad code %q: %w", path, lineNum, cf, err)
			}
			codes[i] = c
		}
		length, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad length %q: %w", path, lineNum, fields[2], err)
		}
		samples = append(samples, EncodedSample{Path: fields[0], Codes: codes, Length: length})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read encoded csv %s: %w", path, err)
	}
	return samples, nil
}

func closeQuiet(f *os.File) {
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
	}
}
