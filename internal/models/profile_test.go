package models

import "testing"

// TestNormalizeGender verifies abbreviations and plural forms collapse to
// the two canonical genders regardless of case and padding.
func TestNormalizeGender(t *testing.T) {
	cases := []struct {
		input string
		want  Gender
	}{
		{"male", GenderMale},
		{"M", GenderMale},
		{" Men's ", GenderMale},
		{"Female", GenderFemale},
		{"w", GenderFemale},
		{"WOMEN", GenderFemale},
	}
	for _, tc := range cases {
		got, known := NormalizeGender(tc.input)
		if !known {
			t.Errorf("NormalizeGender(%q): expected known=true", tc.input)
		}
		if got != tc.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

// TestNormalizeGender_Unknown verifies unrecognized values are reported as
// unknown instead of defaulting to a gender.
func TestNormalizeGender_Unknown(t *testing.T) {
	for _, input := range []string{"", "x", "other"} {
		got, known := NormalizeGender(input)
		if known || got != "" {
			t.Errorf("NormalizeGender(%q) = %q, %v; want \"\", false", input, got, known)
		}
	}
}

// TestNormalizeExperience verifies gym vernacular maps onto the four levels.
func TestNormalizeExperience(t *testing.T) {
	cases := []struct {
		input string
		want  ExperienceLevel
	}{
		{"Beginner", ExperienceBeginner},
		{"scaled", ExperienceBeginner},
		{"RX", ExperienceIntermediate},
		{"rx+", ExperienceAdvanced},
		{"Elite", ExperienceElite},
	}
	for _, tc := range cases {
		got, known := NormalizeExperience(tc.input)
		if !known || got != tc.want {
			t.Errorf("NormalizeExperience(%q) = %q, %v; want %q", tc.input, got, known, tc.want)
		}
	}
	if _, known := NormalizeExperience("pro"); known {
		t.Error("NormalizeExperience(\"pro\"): expected known=false")
	}
}
