// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/models"
)

// band is a lower bound and the description used at or above it.
type band struct {
	min  float64
	text string
}

// Bands are checked top down; the last band's min must be 0.
var featureBands = map[string][]band{
	features.TraitMatch: {
		{0.8, "Strong match for the required skills"},
		{0.5, "Good overlap with the required skills"},
		{0.2, "Some overlap with the required skills"},
		{0, "Different skill profile from what the job asks for"},
	},
	features.CompanyRating: {
		{0.8, "Highly rated employer"},
		{0.6, "Well rated employer"},
		{0.4, "Employer with average ratings"},
		{0, "Employer with mixed ratings"},
	},
	features.TrackRecord: {
		{0.8, "Consistently successful in past jobs"},
		{0.5, "Mostly successful in past jobs"},
		{0.2, "Mixed results in past jobs"},
		{0, "Few successful past jobs"},
	},
}

// Explain describes each feature's value and weighted contribution, largest
// contribution first. hourlyPay is the job's advertised rate, shown as is
// even when the pay feature is clamped at the ceiling.
func Explain(row features.Row, names []string, weights models.FeatureWeights, hourlyPay float64) []models.Explanation {
	out := make([]models.Explanation, 0, len(names))
	for _, name := range names {
		v := row.Get(name)
		out = append(out, models.Explanation{
			Feature:      name,
			Description:  Describe(name, v, hourlyPay),
			Value:        v,
			Contribution: weights[name] * v,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Contribution != out[j].Contribution {
			return out[i].Contribution > out[j].Contribution
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// Describe renders a normalized feature value as text. The pay band follows
// v; the amount shown is hourlyPay.
func Describe(name string, v, hourlyPay float64) string {
	switch name {
	case features.Experience:
		switch n := features.ExperienceCount(v); {
		case n == 0:
			return "No previous jobs of this type"
		case n == 1:
			return "1 previous job of this type"
		case n >= features.MaxExperience:
			return fmt.Sprintf("%d+ previous jobs of this type", features.MaxExperience)
		default:
			return fmt.Sprintf("%d previous jobs of this type", n)
		}
	case features.Pay:
		switch {
		case v >= 0.6:
			return fmt.Sprintf("Pays well at $%.2f/hour", hourlyPay)
		case v >= 0.3:
			return fmt.Sprintf("Competitive pay at $%.2f/hour", hourlyPay)
		default:
			return fmt.Sprintf("Modest pay at $%.2f/hour", hourlyPay)
		}
	}
	for _, b := range featureBands[name] {
		if v >= b.min {
			return b.text
		}
	}
	return name
}
