package models

// MovementCategory groups catalog movements by modality.
type MovementCategory string

const (
	CategoryWeightlifting MovementCategory = "weightlifting"
	CategoryGymnastics    MovementCategory = "gymnastics"
	CategoryCardio        MovementCategory = "cardio"
	CategoryBodyweight    MovementCategory = "bodyweight"
)

// Valid reports whether c is a known category.
func (c MovementCategory) Valid() bool {
	switch c {
	case CategoryWeightlifting, CategoryGymnastics, CategoryCardio, CategoryBodyweight:
		return true
	}
	return false
}

// Movement is an entry of the movement catalog.
type Movement struct {
	ID            int64            `json:"id" yaml:"id"`
	CanonicalName string           `json:"canonical_name" yaml:"name"`
	Aliases       []string         `json:"aliases,omitempty" yaml:"aliases"`
	Category      MovementCategory `json:"category" yaml:"category"`
	IsWeighted    bool             `json:"is_weighted" yaml:"weighted"`
}

// WeightUnit is the unit a load was written in.
type WeightUnit string

const (
	UnitKg WeightUnit = "kg"
	UnitLb WeightUnit = "lb"
)

// KgPerLb converts pounds to kilograms.
const KgPerLb = 0.45359237

// Load is a prescribed weight. FemaleValue is set for split prescriptions
// such as "95/65 lb".
type Load struct {
	Value       float64    `json:"value"`
	FemaleValue *float64   `json:"female_value,omitempty"`
	Unit        WeightUnit `json:"unit"`
}

// For returns the load that applies to an athlete of the given gender, in
// the load's own unit.
func (l Load) For(g Gender) float64 {
	if g == GenderFemale && l.FemaleValue != nil {
		return *l.FemaleValue
	}
	return l.Value
}

// KgFor returns the applicable load in kilograms.
func (l Load) KgFor(g Gender) float64 {
	return ToKg(l.For(g), l.Unit)
}

// ToKg converts a value in unit to kilograms.
func ToKg(v float64, unit WeightUnit) float64 {
	if unit == UnitLb {
		return v * KgPerLb
	}
	return v
}

// FromKg converts kilograms to unit.
func FromKg(kg float64, unit WeightUnit) float64 {
	if unit == UnitLb {
		return kg / KgPerLb
	}
	return kg
}

// DistanceUnit is the unit a distance was written in.
type DistanceUnit string

const (
	UnitMeters     DistanceUnit = "m"
	UnitKilometers DistanceUnit = "km"
	UnitMiles      DistanceUnit = "mi"
	UnitFeet       DistanceUnit = "ft"
)

// Distance is a prescribed distance.
type Distance struct {
	Value float64      `json:"value"`
	Unit  DistanceUnit `json:"unit"`
}

// Meters returns the distance in meters.
func (d Distance) Meters() float64 {
	switch d.Unit {
	case UnitKilometers:
		return d.Value * 1000
	case UnitMiles:
		return d.Value * 1609.344
	case UnitFeet:
		return d.Value * 0.3048
	default:
		return d.Value
	}
}

// PacingLevel is how aggressively an athlete should approach a movement.
type PacingLevel string

const (
	PacingLight    PacingLevel = "light"
	PacingModerate PacingLevel = "moderate"
	PacingHeavy    PacingLevel = "heavy"
)
