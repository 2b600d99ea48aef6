package colors

import (
	"errors"
	"math"
	"testing"
)

var (
	green  = RGB{0, 255, 0}
	yellow = RGB{255, 255, 0}
	red    = RGB{255, 0, 0}
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Entry{
		{Threshold: 60, RGB: red, Name: "heavy"},
		{Threshold: 20, RGB: green, Name: "light"},
		{Threshold: 40, RGB: yellow, Name: "moderate"},
	})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func TestTable_ColorFor(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name    string
		dbz     float64
		want    RGB
		wantErr error
	}{
		{name: "below lowest", dbz: -10, want: green},
		{name: "zero", dbz: 0, want: green},
		{name: "inside first bucket", dbz: 10, want: green},
		{name: "exactly first threshold", dbz: 20, want: green},
		{name: "just above first threshold", dbz: 20.0001, want: yellow},
		{name: "exactly middle threshold", dbz: 40, want: yellow},
		{name: "inside last bucket", dbz: 50, want: red},
		{name: "exactly top threshold", dbz: 60, want: red},
		{name: "above every threshold", dbz: 70, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.ColorFor(tt.dbz)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v (color %v)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColorFor(%v) error = %v", tt.dbz, err)
			}
			if got != tt.want {
				t.Errorf("ColorFor(%v) = %v, want %v", tt.dbz, got, tt.want)
			}
		})
	}
}

func TestTable_Monotonic(t *testing.T) {
	table := testTable(t)

	prev := -1.0
	for dbz := -20.0; dbz <= 60.0; dbz += 0.5 {
		e, err := table.Lookup(dbz)
		if err != nil {
			t.Fatalf("Lookup(%v) error = %v", dbz, err)
		}
		if e.Threshold < prev {
			t.Fatalf("threshold decreased at %v dbz: %v < %v", dbz, e.Threshold, prev)
		}
		prev = e.Threshold
	}
}

func TestNewTable_Empty(t *testing.T) {
	if _, err := NewTable(nil); !errors.Is(err, ErrEmptyColorTable) {
		t.Fatalf("expected ErrEmptyColorTable, got %v", err)
	}
	if _, err := FromSpecs(map[string]Spec{}); !errors.Is(err, ErrEmptyColorTable) {
		t.Fatalf("expected ErrEmptyColorTable from FromSpecs, got %v", err)
	}
}

func TestNewTable_DuplicateThreshold(t *testing.T) {
	_, err := FromSpecs(map[string]Spec{
		"20":   {RGB: [3]uint8{0, 255, 0}},
		"20.0": {RGB: [3]uint8{255, 0, 0}},
	})
	if !errors.Is(err, ErrDuplicateThreshold) {
		t.Fatalf("expected ErrDuplicateThreshold, got %v", err)
	}
}

func TestFromSpecs(t *testing.T) {
	table, err := FromSpecs(map[string]Spec{
		"60":  {RGB: [3]uint8{255, 0, 0}, Name: "heavy rain"},
		"20":  {RGB: [3]uint8{0, 255, 0}, Name: "light rain"},
		"7.5": {RGB: [3]uint8{0, 0, 255}, Name: "drizzle"},
	})
	if err != nil {
		t.Fatalf("FromSpecs() error = %v", err)
	}

	entries := table.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Threshold != 7.5 || entries[0].Name != "drizzle" {
		t.Errorf("expected drizzle first, got %+v", entries[0])
	}
	if entries[2].RGB != red {
		t.Errorf("expected red last, got %v", entries[2].RGB)
	}
}

func TestFromSpecs_InvalidThreshold(t *testing.T) {
	_, err := FromSpecs(map[string]Spec{"heavy": {RGB: [3]uint8{1, 2, 3}}})
	if !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}
}

func TestNewTable_NaNThreshold(t *testing.T) {
	_, err := NewTable([]Entry{
		{Threshold: 60, RGB: red},
		{Threshold: math.NaN(), RGB: yellow},
		{Threshold: 20, RGB: green},
	})
	if !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("expected ErrInvalidThreshold, got %v", err)
	}

	for _, key := range []string{"NaN", "nan", "-NaN"} {
		if _, err := FromSpecs(map[string]Spec{key: {}, "20": {}}); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("FromSpecs(%q) expected ErrInvalidThreshold, got %v", key, err)
		}
	}
}

func TestRGB_String(t *testing.T) {
	if got := (RGB{255, 128, 0}).String(); got != "#ff8000" {
		t.Fatalf("String() = %q, want #ff8000", got)
	}
}
