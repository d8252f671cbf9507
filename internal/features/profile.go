package features

import "fmt"

// Bound is the expected value range for a feature. Inputs outside the range
// are rejected by the serving layer before scoring.
type Bound struct {
	Min float64
	Max float64
}

var bounds = map[string]Bound{
	Age:                 {18, 80},
	EducationYears:      {0, 30},
	Religiousness:       {1, 5},
	Occupation:          {1, 7},
	HonestyHumility:     {1, 5},
	Emotionality:        {1, 5},
	Extraversion:        {1, 5},
	Agreeableness:       {1, 5},
	Conscientiousness:   {1, 5},
	Openness:            {1, 5},
	YearsInRelationship: {0, 40},
	HasChildren:         {0, 1},
	SatisfactionRating:  {1, 5},
	LoveRating:          {1, 7},
	DesireRating:        {1, 7},
}

// Bounds returns the expected range for a schema feature.
func Bounds(name string) (Bound, bool) {
	b, ok := bounds[name]
	return b, ok
}

// CheckRange validates the known entries of a vector against the schema
// bounds and returns the first violation found, scanning in schema order.
func CheckRange(v Vector) error {
	for i, name := range columns {
		if v.Missing(i) {
			continue
		}
		b := bounds[name]
		if v[i] < b.Min || v[i] > b.Max {
			return fmt.Errorf("feature %s=%g outside expected range [%g, %g]", name, v[i], b.Min, b.Max)
		}
	}
	return nil
}

var displayNames = map[string]string{
	Age:                 "Age",
	EducationYears:      "Education (years)",
	Religiousness:       "Religiousness",
	Occupation:          "Occupation level",
	HonestyHumility:     "Honesty-humility",
	Emotionality:        "Emotionality",
	Extraversion:        "Extraversion",
	Agreeableness:       "Agreeableness",
	Conscientiousness:   "Conscientiousness",
	Openness:            "Openness to experience",
	YearsInRelationship: "Years in relationship",
	HasChildren:         "Has children",
	SatisfactionRating:  "Relationship satisfaction",
	LoveRating:          "Love",
	DesireRating:        "Sexual desire",
}

// DisplayName returns the human-readable label for a schema feature,
// falling back to the raw name.
func DisplayName(name string) string {
	if label, ok := displayNames[name]; ok {
		return label
	}
	return name
}

// PopulationAverage holds the population mean for the six personality
// traits, used by the serving layer for the comparison radar.
var PopulationAverage = map[string]float64{
	HonestyHumility:   3.4,
	Emotionality:      3.2,
	Extraversion:      3.5,
	Agreeableness:     3.1,
	Conscientiousness: 3.6,
	Openness:          3.4,
}

// EducationLevelYears maps attained education level to schooling years.
var EducationLevelYears = map[string]float64{
	"high_school": 12,
	"university":  16,
	"graduate":    18,
}
