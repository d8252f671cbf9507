package dataset

import (
	"affair-radar/internal/common"
	"affair-radar/internal/features"
)

// Harmonizers map one raw record from a source onto the shared schema.
// The input map holds only measured values; absent keys stay absent in
// the output, so later imputation can tell "not measured" from zero.

// HarmonizeFair maps Fair (1978): rate_marriage is already the 1-5
// satisfaction scale, children is a count, and any nonzero affairs value
// means the outcome occurred.
func HarmonizeFair(raw map[string]float64) Row {
	row := Row{Source: common.SourceFair, Features: make(map[string]float64)}

	copyIf(row.Features, features.SatisfactionRating, raw, "rate_marriage")
	copyIf(row.Features, features.Age, raw, "age")
	copyIf(row.Features, features.YearsInRelationship, raw, "yrs_married")
	copyIf(row.Features, features.Religiousness, raw, "religious")
	copyIf(row.Features, features.EducationYears, raw, "educ")
	copyIf(row.Features, features.Occupation, raw, "occupation")

	if children, ok := raw["children"]; ok {
		if children > 0 {
			row.Features[features.HasChildren] = 1
		} else {
			row.Features[features.HasChildren] = 0
		}
	}
	if affairs, ok := raw["affairs"]; ok {
		if affairs > 0 {
			row.Label = label(1)
		} else {
			row.Label = label(0)
		}
	}
	return row
}

// HarmonizeGSS maps the General Social Survey extract. Attendance
// frequency (0-8) becomes the 1-5 religiousness scale, marital happiness
// becomes a satisfaction rating, and evstray uses GSS coding where 1 is
// yes and 2 is no. Respondents never asked the question carry no label.
func HarmonizeGSS(raw map[string]float64) Row {
	row := Row{Source: common.SourceGSS, Features: make(map[string]float64)}

	copyIf(row.Features, features.Age, raw, "age")
	copyIf(row.Features, features.EducationYears, raw, "educ")

	if attend, ok := raw["attend"]; ok {
		row.Features[features.Religiousness] = clip(1+attend*0.5, 1, 5)
	}
	if hapmar, ok := raw["hapmar"]; ok {
		switch hapmar {
		case 1:
			row.Features[features.SatisfactionRating] = 4.5
		case 2:
			row.Features[features.SatisfactionRating] = 3.0
		case 3:
			row.Features[features.SatisfactionRating] = 1.5
		}
	}
	if evstray, ok := raw["evstray"]; ok {
		switch evstray {
		case 1:
			row.Label = label(1)
		case 2:
			row.Label = label(0)
		}
	}
	return row
}

// HarmonizeSelterman maps Vowels, Vowels & Mark (2022). Satisfaction
// arrives on a 1-7 scale and is rescaled to the shared 1-5 scale;
// relationship length arrives in months.
func HarmonizeSelterman(raw map[string]float64) Row {
	row := Row{Source: common.SourceSelterman, Features: make(map[string]float64)}

	copyIf(row.Features, features.Age, raw, "age")
	copyIf(row.Features, features.LoveRating, raw, "love")
	copyIf(row.Features, features.DesireRating, raw, "desire")

	if sat, ok := raw["relationship_satisfaction"]; ok {
		row.Features[features.SatisfactionRating] = roundTo(1+(sat-1)*2.0/3.0, 1)
	}
	if months, ok := raw["relationship_length_months"]; ok {
		row.Features[features.YearsInRelationship] = roundTo(months/12, 1)
	}
	if had, ok := raw["had_infidelity"]; ok {
		row.Label = label(int(had))
	}
	return row
}

// HarmonizeReinhardt maps Reinhardt & Reinhard (2023). Trait names match
// the schema directly; relationship length is only meaningful for
// respondents currently in a relationship.
func HarmonizeReinhardt(raw map[string]float64) Row {
	row := Row{Source: common.SourceReinhardt, Features: make(map[string]float64)}

	copyIf(row.Features, features.Age, raw, "age")
	copyIf(row.Features, features.HonestyHumility, raw, "honesty_humility")
	copyIf(row.Features, features.Emotionality, raw, "emotionality")
	copyIf(row.Features, features.Extraversion, raw, "extraversion")
	copyIf(row.Features, features.Agreeableness, raw, "agreeableness")
	copyIf(row.Features, features.Conscientiousness, raw, "conscientiousness")
	copyIf(row.Features, features.Openness, raw, "openness")

	if months, ok := raw["relationship_length_months"]; ok {
		if inRel, ok := raw["in_relationship"]; !ok || inRel == 1 {
			if months > 0 {
				row.Features[features.YearsInRelationship] = roundTo(months/12, 1)
			}
		}
	}
	if had, ok := raw["had_relationship_dishonesty"]; ok {
		row.Label = label(int(had))
	}
	return row
}

func copyIf(dst map[string]float64, dstKey string, src map[string]float64, srcKey string) {
	if v, ok := src[srcKey]; ok {
		dst[dstKey] = v
	}
}
