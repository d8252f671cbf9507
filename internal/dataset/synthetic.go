package dataset

import (
	"math"
	"math/rand"
)

// Synthetic generators reproduce each study's published marginal
// distributions and effect directions, for use when the upstream download
// is unavailable. Rows come out already harmonized. The same seed always
// produces the same rows.

// SyntheticFair generates rows shaped like Fair's 1978 extramarital
// affairs survey: marriage rating and religiousness protective, years
// married a risk factor, roughly a 30% affair rate.
func SyntheticFair(n int, seed int64) []Row {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]Row, n)
	for i := range rows {
		raw := map[string]float64{
			"rate_marriage": choice(rng, []float64{1, 2, 3, 4, 5}, []float64{0.03, 0.07, 0.15, 0.35, 0.40}),
			"age":           choice(rng, []float64{17.5, 22, 27, 32, 37, 42}, []float64{0.08, 0.30, 0.26, 0.18, 0.13, 0.05}),
			"yrs_married":   clip(roundTo(rng.ExpFloat64()*9, 1), 0.5, 23),
			"religious":     choice(rng, []float64{1, 2, 3, 4}, []float64{0.12, 0.38, 0.36, 0.14}),
			"educ":          choice(rng, []float64{9, 12, 14, 16, 17, 20}, []float64{0.05, 0.30, 0.25, 0.25, 0.10, 0.05}),
			"occupation":    choice(rng, []float64{1, 2, 3, 4, 5, 6}, []float64{0.08, 0.20, 0.30, 0.25, 0.12, 0.05}),
		}
		if rng.Float64() < 0.72 {
			raw["children"] = float64(1 + rng.Intn(4))
		} else {
			raw["children"] = 0
		}

		logit := -0.7 -
			0.6*(raw["rate_marriage"]-3) -
			0.35*(raw["religious"]-2.5) +
			0.05*raw["yrs_married"] -
			0.01*(raw["age"]-30)
		p := clip(sigmoid(logit), 0.02, 0.85)
		if rng.Float64() < p {
			raw["affairs"] = roundTo(0.1+rng.ExpFloat64()*2, 1)
		} else {
			raw["affairs"] = 0
		}

		rows[i] = HarmonizeFair(raw)
	}
	return rows
}

// SyntheticGSS generates rows following published General Social Survey
// statistics for the ever-strayed question: about 16% overall, higher for
// men and for unhappy marriages, lower for frequent attenders. Respondents
// who never married carry no label.
func SyntheticGSS(n int, seed int64) []Row {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]Row, n)
	for i := range rows {
		age := gssAge(rng)
		sex := choice(rng, []float64{1, 2}, []float64{0.45, 0.55})
		educ := clip(math.Round(rng.NormFloat64()*3+13.5), 0, 20)
		attend := float64(rng.Intn(9))
		marital := choice(rng, []float64{1, 2, 3, 4, 5}, []float64{0.45, 0.03, 0.15, 0.15, 0.22})

		raw := map[string]float64{
			"age":     age,
			"sex":     sex,
			"educ":    educ,
			"attend":  attend,
			"marital": marital,
		}

		hapmarFactor := 1.0
		if marital == 1 {
			hapmar := choice(rng, []float64{1, 2, 3}, []float64{0.63, 0.30, 0.07})
			raw["hapmar"] = hapmar
			switch hapmar {
			case 3:
				hapmarFactor = 2.0
			case 2:
				hapmarFactor = 1.3
			}
		}

		if marital <= 3 { // ever married
			base := 0.13
			if sex == 1 {
				base = 0.20
			}
			ageFactor := 1.0
			switch {
			case age >= 40 && age <= 60:
				ageFactor = 1.3
			case age < 30:
				ageFactor = 0.6
			}
			eduFactor := 1.0
			if educ >= 16 {
				eduFactor = 0.9
			}
			religFactor := 1.0
			if attend >= 6 {
				religFactor = 0.7
			}

			p := clip(base*ageFactor*hapmarFactor*eduFactor*religFactor, 0, 0.95)
			if rng.Float64() < p {
				raw["evstray"] = 1
			} else {
				raw["evstray"] = 2
			}
		}

		rows[i] = HarmonizeGSS(raw)
	}
	return rows
}

// SyntheticSelterman generates rows following Vowels, Vowels & Mark
// (2022): satisfaction, love, and desire protective against infidelity,
// attachment insecurity a risk, around a 25% base rate.
func SyntheticSelterman(n int, seed int64) []Row {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]Row, n)
	for i := range rows {
		raw := map[string]float64{
			"age":                        clip(math.Round(rng.NormFloat64()*8+30), 18, 70),
			"relationship_satisfaction":  roundTo(clip(rng.NormFloat64()*1.3+5.2, 1, 7), 1),
			"love":                       roundTo(clip(rng.NormFloat64()*1.2+5.5, 1, 7), 1),
			"desire":                     roundTo(clip(rng.NormFloat64()*1.5+4.8, 1, 7), 1),
			"relationship_length_months": clip(math.Floor(rng.ExpFloat64()*48), 1, 480),
			"attachment_anxiety":         roundTo(clip(rng.NormFloat64()*1.2+3.2, 1, 7), 1),
			"attachment_avoidance":       roundTo(clip(rng.NormFloat64()*1.1+2.8, 1, 7), 1),
		}

		logit := -1.2 -
			0.4*(raw["relationship_satisfaction"]-5.2) -
			0.3*(raw["love"]-5.5) -
			0.2*(raw["desire"]-4.8) +
			0.15*(raw["attachment_avoidance"]-2.8) +
			0.10*(raw["attachment_anxiety"]-3.2) +
			0.01*(raw["relationship_length_months"]-48)/12
		p := clip(sigmoid(logit), 0.02, 0.80)
		if rng.Float64() < p {
			raw["had_infidelity"] = 1
		} else {
			raw["had_infidelity"] = 0
		}

		rows[i] = HarmonizeSelterman(raw)
	}
	return rows
}

// SyntheticReinhardt generates rows following Reinhardt & Reinhard (2023):
// HEXACO trait scores with honesty-humility strongly protective against
// relationship dishonesty.
func SyntheticReinhardt(n int, seed int64) []Row {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]Row, n)
	for i := range rows {
		raw := map[string]float64{
			"age":               clip(math.Round(rng.NormFloat64()*10+32), 18, 75),
			"honesty_humility":  roundTo(clip(rng.NormFloat64()*0.65+3.4, 1, 5), 2),
			"emotionality":      roundTo(clip(rng.NormFloat64()*0.70+3.2, 1, 5), 2),
			"extraversion":      roundTo(clip(rng.NormFloat64()*0.65+3.5, 1, 5), 2),
			"agreeableness":     roundTo(clip(rng.NormFloat64()*0.60+3.1, 1, 5), 2),
			"conscientiousness": roundTo(clip(rng.NormFloat64()*0.62+3.6, 1, 5), 2),
			"openness":          roundTo(clip(rng.NormFloat64()*0.68+3.4, 1, 5), 2),
		}

		dishonesty := clip(roundTo(4.5-0.8*raw["honesty_humility"]+rng.NormFloat64()*0.5, 2), 1, 5)
		if dishonesty >= 2.5 {
			raw["had_relationship_dishonesty"] = 1
		} else {
			raw["had_relationship_dishonesty"] = 0
		}

		if rng.Float64() < 0.85 {
			raw["in_relationship"] = 1
			raw["relationship_length_months"] = clip(math.Floor(rng.ExpFloat64()*36), 1, 360)
		} else {
			raw["in_relationship"] = 0
		}

		rows[i] = HarmonizeReinhardt(raw)
	}
	return rows
}

// gssAge draws an adult age weighted toward the 30-65 bands.
func gssAge(rng *rand.Rand) float64 {
	total := 0.0
	for a := 18; a < 90; a++ {
		total += gssAgeWeight(a)
	}
	r := rng.Float64() * total
	cum := 0.0
	for a := 18; a < 90; a++ {
		cum += gssAgeWeight(a)
		if r < cum {
			return float64(a)
		}
	}
	return 89
}

func gssAgeWeight(a int) float64 {
	switch {
	case a < 30:
		return 1.5
	case a < 45:
		return 1.8
	case a < 65:
		return 1.6
	default:
		return 0.8
	}
}

// choice draws one value with the given probabilities.
func choice(rng *rand.Rand, values, probs []float64) float64 {
	r := rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if r < cum {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func roundTo(x float64, decimals int) float64 {
	k := math.Pow(10, float64(decimals))
	return math.Round(x*k) / k
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
