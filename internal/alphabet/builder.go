package alphabet

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BuildFromLabelFiles scans label CSV files (rows of the form
// "image_path<csvDelim>|A|B|1|") and builds an alphabet from the distinct
// character units observed. Units are NFC-normalized and sorted so that the
// same corpus always yields the same code assignment.
func BuildFromLabelFiles(paths []string, csvDelimiter, splitDelimiter string) (*Alphabet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no label files provided")
	}
	seen := make(map[string]struct{}, 64)
	for _, p := range paths {
		if err := scanLabelFile(p, csvDelimiter, splitDelimiter, seen); err != nil {
			return nil, err
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no character units found in label files")
	}
	units := make([]string, 0, len(seen))
	for u := range seen {
		units = append(units, u)
	}
	sortUnits(units)
	return New(units)
}

func scanLabelFile(path, csvDelimiter, splitDelimiter string, seen map[string]struct{}) error {
	f, err := os.Open(path) //nolint:gosec // G304: user-provided label file path is expected
	if err != nil {
		return fmt.Errorf("open label file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing label file: %v\n", cerr)
		}
	}()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		_, label, ok := strings.Cut(line, csvDelimiter)
		if !ok {
			return fmt.Errorf("%s:%d: missing %q delimiter", path, lineNum, csvDelimiter)
		}
		for u := range strings.SplitSeq(label, splitDelimiter) {
			if u == "" {
				continue
			}
			seen[norm.NFC.String(u)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read label file %s: %w", path, err)
	}
	return nil
}
