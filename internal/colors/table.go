package colors

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEmptyColorTable is returned when a table is built from zero entries.
	ErrEmptyColorTable = errors.New("color table has no entries")

	// ErrDuplicateThreshold is returned when two entries share a threshold.
	ErrDuplicateThreshold = errors.New("duplicate color threshold")

	// ErrInvalidThreshold is returned when a configured threshold is not a number.
	ErrInvalidThreshold = errors.New("invalid color threshold")

	// ErrNotFound is returned when a measurement is above every threshold.
	ErrNotFound = errors.New("no color for measurement")
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// Off is the color of an unlit LED.
var Off = RGB{}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Entry maps the dbz range ending at Threshold (inclusive) to a color.
type Entry struct {
	Threshold float64
	RGB       RGB
	Name      string
}

// Table is an immutable, ascending list of entries.
type Table struct {
	entries []Entry
}

// NewTable sorts entries by threshold and validates them.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyColorTable
	}
	for _, e := range entries {
		if math.IsNaN(e.Threshold) {
			return nil, fmt.Errorf("%w: NaN", ErrInvalidThreshold)
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Threshold == sorted[i-1].Threshold {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateThreshold, sorted[i].Threshold)
		}
	}

	return &Table{entries: sorted}, nil
}

// Spec is the configured form of an entry, keyed by its threshold string.
type Spec struct {
	RGB  [3]uint8
	Name string
}

// FromSpecs builds a table from threshold strings such as "20" or "40.5".
func FromSpecs(specs map[string]Spec) (*Table, error) {
	entries := make([]Entry, 0, len(specs))
	for key, spec := range specs {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidThreshold, key)
		}
		entries = append(entries, Entry{
			Threshold: threshold,
			RGB:       RGB{R: spec.RGB[0], G: spec.RGB[1], B: spec.RGB[2]},
			Name:      spec.Name,
		})
	}
	return NewTable(entries)
}

// Lookup returns the entry with the smallest threshold at or above dbz.
func (t *Table) Lookup(dbz float64) (Entry, error) {
	i := sort.Search(len(t.entries), func(i int) bool { return dbz <= t.entries[i].Threshold })
	if i == len(t.entries) {
		return Entry{}, fmt.Errorf("%w: %v dbz", ErrNotFound, dbz)
	}
	return t.entries[i], nil
}

// ColorFor returns the color of the bucket dbz falls into. Values above the highest
// threshold are not clamped: they return ErrNotFound.
func (t *Table) ColorFor(dbz float64) (RGB, error) {
	e, err := t.Lookup(dbz)
	if err != nil {
		return RGB{}, err
	}
	return e.RGB, nil
}

// Entries returns a copy of the entries in ascending threshold order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
