package domain

import "slices"

// Dataset is the loaded, read-only collection of songs. It is safe for
// concurrent readers.
type Dataset struct {
	source string
	songs  []Song
}

// View is an ordered subset of a dataset. A view never shares its backing
// array with the dataset it came from.
type View []Song

// NewDataset takes a private copy of songs.
func NewDataset(source string, songs []Song) *Dataset {
	return &Dataset{
		source: source,
		songs:  slices.Clone(songs),
	}
}

// Source is the path or DSN the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

func (d *Dataset) Len() int {
	return len(d.songs)
}

// At returns a copy of row i.
func (d *Dataset) At(i int) Song {
	return d.songs[i]
}

// Songs returns every row as a view.
func (d *Dataset) Songs() View {
	return slices.Clone(View(d.songs))
}

// Filter applies c to the full dataset.
func (d *Dataset) Filter(c Criteria) View {
	return Filter(View(d.songs), c)
}

// YearBounds returns the smallest and largest known release year. ok is
// false when no row has a year.
func (d *Dataset) YearBounds() (bounds IntRange, ok bool) {
	for _, s := range d.songs {
		if s.Year == nil {
			continue
		}
		y := *s.Year
		if !ok {
			bounds = IntRange{Min: y, Max: y}
			ok = true
			continue
		}
		bounds.Min = min(bounds.Min, y)
		bounds.Max = max(bounds.Max, y)
	}
	return bounds, ok
}

// MissingYears counts rows whose release date did not parse.
func (d *Dataset) MissingYears() int {
	n := 0
	for _, s := range d.songs {
		if s.Year == nil {
			n++
		}
	}
	return n
}
