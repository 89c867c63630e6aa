package models

import "strings"

// Gender selects gender-segmented percentile tables and split loads.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ExperienceLevel is an athlete's self-reported training age.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceElite        ExperienceLevel = "elite"
)

// genderMap maps lowercased written forms to canonical genders. Covers the
// abbreviations and words commonly used on sign-up forms and spreadsheets.
var genderMap = map[string]Gender{
	"male":    GenderMale,
	"m":       GenderMale,
	"man":     GenderMale,
	"men":     GenderMale,
	"mens":    GenderMale,
	"men's":   GenderMale,
	"female":  GenderFemale,
	"f":       GenderFemale,
	"w":       GenderFemale,
	"woman":   GenderFemale,
	"women":   GenderFemale,
	"womens":  GenderFemale,
	"women's": GenderFemale,
}

// experienceMap maps lowercased written forms to canonical levels.
var experienceMap = map[string]ExperienceLevel{
	"beginner":     ExperienceBeginner,
	"novice":       ExperienceBeginner,
	"scaled":       ExperienceBeginner,
	"intermediate": ExperienceIntermediate,
	"rx":           ExperienceIntermediate,
	"advanced":     ExperienceAdvanced,
	"rx+":          ExperienceAdvanced,
	"competitor":   ExperienceAdvanced,
	"elite":        ExperienceElite,
	"games":        ExperienceElite,
}

// NormalizeGender maps a written gender to its canonical value. Returns the
// canonical value and true if recognized, or "" and false if unknown.
func NormalizeGender(raw string) (Gender, bool) {
	if g, ok := genderMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return g, true
	}
	return "", false
}

// NormalizeExperience maps a written experience level to its canonical
// value. Returns "" and false if unknown.
func NormalizeExperience(raw string) (ExperienceLevel, bool) {
	if e, ok := experienceMap[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return e, true
	}
	return "", false
}
