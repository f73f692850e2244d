// Package preprocess turns raw (image path, delimited label) pairs into
// fixed-width integer code sequences that satisfy the CTC alignment
// contract: every retained sample has a label strictly shorter than the
// number of timesteps the feature extractor will emit for its image.
package preprocess

import "strings"

// Sample is a raw dataset row: an image path and a delimiter-bracketed
// label such as "|A|B|1|".
type Sample struct {
	Path  string
	Label string
}

// EncodedSample is a retained, encoded row. Codes always has exactly
// MaxCharsPerString entries, right-padded with the blank code; Length is the
// true (unpadded) number of character units.
type EncodedSample struct {
	Path   string
	Codes  []int
	Length int
}

// Units splits a delimited label into its character units, dropping empty
// segments produced by the bracketing delimiters.
func Units(label, splitDelimiter string) []string {
	parts := strings.Split(label, splitDelimiter)
	units := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			units = append(units, p)
		}
	}
	return units
}

// Stats summarizes a preprocessing run. Removal is advisory only and never a
// failure signal.
type Stats struct {
	Total   int
	Kept    int
	Removed int
}

// RemovedPercent returns the share of removed samples in percent, or 0 for
// an empty input.
func (s Stats) RemovedPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Removed) / float64(s.Total)
}
