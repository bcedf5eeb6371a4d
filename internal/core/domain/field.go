package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NumericField identifies a plottable numeric column.
type NumericField int

const (
	FieldDanceability NumericField = iota + 1
	FieldEnergy
	FieldValence
	FieldTempo
	FieldDurationMs
	FieldPopularity
	FieldLoudness
)

// DefaultX and DefaultY are the initial plot axes.
const (
	DefaultX = FieldDanceability
	DefaultY = FieldEnergy
)

var fieldNames = map[NumericField]string{
	FieldDanceability: "danceability",
	FieldEnergy:       "energy",
	FieldValence:      "valence",
	FieldTempo:        "tempo",
	FieldDurationMs:   "duration_ms",
	FieldPopularity:   "track_popularity",
	FieldLoudness:     "loudness",
}

// NumericFields returns the permissible plot axes in display order.
func NumericFields() []NumericField {
	return []NumericField{
		FieldDanceability,
		FieldEnergy,
		FieldValence,
		FieldTempo,
		FieldDurationMs,
		FieldPopularity,
		FieldLoudness,
	}
}

// ParseNumericField maps a column name to its field.
func ParseNumericField(name string) (NumericField, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidField, name)
}

// Valid reports whether f is one of the enumerated fields.
func (f NumericField) Valid() bool {
	_, ok := fieldNames[f]
	return ok
}

func (f NumericField) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("NumericField(%d)", int(f))
}

// Title is the axis label: the column name with its first letter upper-cased.
func (f NumericField) Title() string {
	name := f.String()
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// MarshalText encodes the field as its column name.
func (f NumericField) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidField, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a column name.
func (f *NumericField) UnmarshalText(text []byte) error {
	parsed, err := ParseNumericField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Value extracts the field from s.
func (f NumericField) Value(s Song) float64 {
	switch f {
	case FieldDanceability:
		return s.Danceability
	case FieldEnergy:
		return s.Energy
	case FieldValence:
		return s.Valence
	case FieldTempo:
		return s.Tempo
	case FieldDurationMs:
		return s.DurationMs
	case FieldPopularity:
		return float64(s.Popularity)
	case FieldLoudness:
		return s.Loudness
	}
	panic(fmt.Sprintf("domain: value of invalid field %d", int(f)))
}
