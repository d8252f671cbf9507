package features

import "math"

// Feature names in schema order. Attribution indices are positions in this
// list, fixed at training time and reused verbatim at inference.
const (
	Age                 = "age"
	EducationYears      = "education_years"
	Religiousness       = "religiousness"
	Occupation          = "occupation"
	HonestyHumility     = "honesty_humility"
	Emotionality        = "emotionality"
	Extraversion        = "extraversion"
	Agreeableness       = "agreeableness"
	Conscientiousness   = "conscientiousness"
	Openness            = "openness"
	YearsInRelationship = "years_in_relationship"
	HasChildren         = "has_children"
	SatisfactionRating  = "satisfaction_rating"
	LoveRating          = "love_rating"
	DesireRating        = "desire_rating"
)

// Target is the label column name in source datasets.
const Target = "had_affair"

var columns = []string{
	Age,
	EducationYears,
	Religiousness,
	Occupation,
	HonestyHumility,
	Emotionality,
	Extraversion,
	Agreeableness,
	Conscientiousness,
	Openness,
	YearsInRelationship,
	HasChildren,
	SatisfactionRating,
	LoveRating,
	DesireRating,
}

var colIndex = func() map[string]int {
	m := make(map[string]int, len(columns))
	for i, c := range columns {
		m[c] = i
	}
	return m
}()

// Columns returns a copy of the schema in order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Count is the schema width.
func Count() int { return len(columns) }

// Index returns the schema position of name, or -1 if unknown.
func Index(name string) int {
	if i, ok := colIndex[name]; ok {
		return i
	}
	return -1
}

// Vector holds one value per schema column. NaN marks a missing entry.
type Vector []float64

// NewVector returns an all-missing vector.
func NewVector() Vector {
	v := make(Vector, len(columns))
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// FromMap builds a vector from named values. Unknown keys are ignored and
// absent schema keys stay missing.
func FromMap(in map[string]float64) Vector {
	v := NewVector()
	for name, val := range in {
		if i, ok := colIndex[name]; ok {
			v[i] = val
		}
	}
	return v
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Missing reports whether the entry at schema index i is missing.
func (v Vector) Missing(i int) bool { return math.IsNaN(v[i]) }

// MissingNames lists the schema names of missing entries.
func (v Vector) MissingNames() []string {
	var out []string
	for i, x := range v {
		if math.IsNaN(x) {
			out = append(out, columns[i])
		}
	}
	return out
}

// Complete reports whether no entry is missing.
func (v Vector) Complete() bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return false
		}
	}
	return true
}
