// Package alphabet maps label character units to dense integer codes for
// CTC training and decoding. Code 0 is reserved for the blank/padding
// symbol and never maps to a real unit.
package alphabet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// BlankCode is the reserved code for the CTC blank / padding symbol.
const BlankCode = 0

// UnknownCharacterError reports a label unit that is not part of the alphabet.
type UnknownCharacterError struct {
	Unit string
}

func (e *UnknownCharacterError) Error() string {
	return fmt.Sprintf("unknown character unit: %q", e.Unit)
}

// Alphabet is an immutable, ordered bijection between character units and
// codes 1..N-1. The same instance must be shared by preprocessing, training
// and inference for codes to stay meaningful.
type Alphabet struct {
	units []string       // index == code; units[0] is the blank slot
	codes map[string]int // unit -> code
}

// New builds an alphabet from the given units. Units must be non-empty and
// unique; they are assigned codes 1..len(units) in the given order.
func New(units []string) (*Alphabet, error) {
	if len(units) == 0 {
		return nil, errors.New("alphabet requires at least one unit")
	}
	a := &Alphabet{
		units: make([]string, 1, len(units)+1),
		codes: make(map[string]int, len(units)),
	}
	a.units[0] = "" // blank
	for _, u := range units {
		if u == "" {
			return nil, errors.New("alphabet unit cannot be empty")
		}
		if _, ok := a.codes[u]; ok {
			return nil, fmt.Errorf("duplicate alphabet unit: %q", u)
		}
		a.codes[u] = len(a.units)
		a.units = append(a.units, u)
	}
	return a, nil
}

// Encode returns the code for a unit, or an UnknownCharacterError.
func (a *Alphabet) Encode(unit string) (int, error) {
	code, ok := a.codes[unit]
	if !ok {
		return 0, &UnknownCharacterError{Unit: unit}
	}
	return code, nil
}

// Decode returns the unit for a code. The blank code decodes to the empty
// string; codes outside [0, Size) are an error.
func (a *Alphabet) Decode(code int) (string, error) {
	if code < 0 || code >= len(a.units) {
		return "", fmt.Errorf("code %d out of range [0, %d)", code, len(a.units))
	}
	return a.units[code], nil
}

// Size returns the number of classes including the blank.
func (a *Alphabet) Size() int { return len(a.units) }

// Units returns the real character units in code order (blank excluded).
func (a *Alphabet) Units() []string {
	out := make([]string, len(a.units)-1)
	copy(out, a.units[1:])
	return out
}

// lookupFile is the persisted unit -> code mapping.
type lookupFile struct {
	Units map[string]int `json:"alphabet"`
}

// Save writes the unit -> code lookup as JSON.
func (a *Alphabet) Save(path string) error {
	lf := lookupFile{Units: make(map[string]int, len(a.codes))}
	for u, c := range a.codes {
		lf.Units[u] = c
	}
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alphabet: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // lookup artifact is not sensitive
		return fmt.Errorf("write alphabet lookup: %w", err)
	}
	return nil
}

// Load reads a lookup file written by Save. Codes must be dense 1..N with
// code 0 left for the blank.
func Load(path string) (*Alphabet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided lookup path is expected
	if err != nil {
		return nil, fmt.Errorf("read alphabet lookup: %w", err)
	}
	var lf lookupFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse alphabet lookup: %w", err)
	}
	if len(lf.Units) == 0 {
		return nil, fmt.Errorf("alphabet lookup is empty: %s", path)
	}
	units := make([]string, len(lf.Units))
	for u, c := range lf.Units {
		if c < 1 || c > len(units) {
			return nil, fmt.Errorf("alphabet code %d for %q outside dense range 1..%d", c, u, len(units))
		}
		if units[c-1] != "" {
			return nil, fmt.Errorf("alphabet codes %d assigned twice", c)
		}
		units[c-1] = u
	}
	return New(units)
}

// sortUnits orders units deterministically for reproducible code assignment.
func sortUnits(units []string) {
	sort.Strings(units)
}
