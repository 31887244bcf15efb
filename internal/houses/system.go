// Package houses computes astrological house cusps for eleven house systems
// and the inverse house position of an ecliptic point.
//
// All angles are in degrees. The engine consumes an already derived sidereal
// angle (ARMC), geographic latitude and obliquity; see package astro for
// deriving those from a date.
package houses

import (
	"fmt"
	"strings"
)

// System selects a house division method. The zero value is invalid.
type System byte

// Supported house systems, keyed by their conventional one-letter code.
const (
	Equal         System = 'E'
	Vehlow        System = 'V'
	Campanus      System = 'C'
	Horizon       System = 'H'
	Koch          System = 'K'
	Porphyry      System = 'O'
	Placidus      System = 'P'
	Regiomontanus System = 'R'
	Topocentric   System = 'T'
	Axial         System = 'X'
	Alcabitius    System = 'B'
)

// Systems lists every supported system, Placidus first.
var Systems = []System{
	Placidus, Koch, Porphyry, Regiomontanus, Campanus, Equal,
	Vehlow, Axial, Horizon, Topocentric, Alcabitius,
}

var systemNames = map[System]string{
	Equal:         "Equal",
	Vehlow:        "Vehlow equal",
	Campanus:      "Campanus",
	Horizon:       "Horizon",
	Koch:          "Koch",
	Porphyry:      "Porphyry",
	Placidus:      "Placidus",
	Regiomontanus: "Regiomontanus",
	Topocentric:   "Topocentric",
	Axial:         "Axial rotation",
	Alcabitius:    "Alcabitius",
}

// Long-form names accepted by ParseSystem.
var systemAliases = map[string]System{
	"equal":         Equal,
	"vehlow":        Vehlow,
	"campanus":      Campanus,
	"horizon":       Horizon,
	"azimuth":       Horizon,
	"koch":          Koch,
	"porphyry":      Porphyry,
	"placidus":      Placidus,
	"regiomontanus": Regiomontanus,
	"topocentric":   Topocentric,
	"axial":         Axial,
	"meridian":      Axial,
	"alcabitius":    Alcabitius,
}

// String returns the human-readable name of the system.
func (s System) String() string {
	if name, ok := systemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("System(%q)", rune(s))
}

// Code returns the one-letter code of the system.
func (s System) Code() string {
	return string(rune(s))
}

// Valid reports whether s is a supported system.
func (s System) Valid() bool {
	_, ok := systemNames[s]
	return ok
}

// canonical folds a lower-case code to upper case and maps the A alias
// to Equal.
func (s System) canonical() System {
	if s >= 'a' && s <= 'z' {
		s -= 'a' - 'A'
	}
	if s == 'A' {
		return Equal
	}
	return s
}

// MarshalText encodes the system as its one-letter code.
func (s System) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, rune(s))
	}
	return []byte(s.Code()), nil
}

// UnmarshalText decodes a code or name accepted by ParseSystem.
func (s *System) UnmarshalText(text []byte) error {
	parsed, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSystem resolves a one-letter code, case-insensitively, or a
// lower-case system name. "A" is accepted as an alias for Equal.
func ParseSystem(s string) (System, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		code := System(s[0]).canonical()
		if code.Valid() {
			return code, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownSystem, s)
	}
	if sys, ok := systemAliases[strings.ToLower(s)]; ok {
		return sys, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSystem, s)
}
