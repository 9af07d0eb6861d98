package filter

import "strings"

// Unit is the physical unit attached to a numeric literal. Distance and
// speed suffixes of the same system share a unit: both are rescaled into
// meters (or meters per hour) by the same factor.
type Unit int

const (
	Kmph Unit = iota
	Mph
)

const (
	metersPerKilometer = 1000.0
	metersPerMile      = 1609.344
)

// ParseUnit maps a suffix such as "km" or "mph" to its Unit.
func ParseUnit(suffix string) (Unit, bool) {
	switch strings.ToLower(suffix) {
	case "k", "km", "kmh", "kph", "kmph":
		return Kmph, true
	case "mi", "mph":
		return Mph, true
	default:
		return Kmph, false
	}
}

// Convert rescales a raw literal into the canonical base unit.
func (u Unit) Convert(raw float64) float64 {
	switch u {
	case Mph:
		return raw * metersPerMile
	default:
		return raw * metersPerKilometer
	}
}

func (u Unit) String() string {
	switch u {
	case Mph:
		return "mph"
	default:
		return "kmph"
	}
}
