package houses

import (
	"errors"
	"fmt"
)

var (
	// ErrGeometricallyUndefined reports a system with no solution at the
	// requested latitude (Koch and Placidus inside the polar circles).
	ErrGeometricallyUndefined = errors.New("house system geometrically undefined")

	// ErrDegeneratePosition reports a best-effort house position for a
	// circumpolar point.
	ErrDegeneratePosition = errors.New("degenerate house position")

	// ErrUnknownSystem is returned by ParseSystem for unrecognized input.
	ErrUnknownSystem = errors.New("unknown house system")

	// ErrInvalidInput reports angular inputs outside their domain.
	ErrInvalidInput = errors.New("invalid angular input")
)

// UndefinedError describes a house system that cannot be constructed at a
// latitude. It unwraps to ErrGeometricallyUndefined.
type UndefinedError struct {
	System   System
	Latitude float64
	Limit    float64 // 90 - obliquity
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("%s houses undefined at latitude %.4f (|latitude| >= %.4f)",
		e.System, e.Latitude, e.Limit)
}

func (e *UndefinedError) Unwrap() error {
	return ErrGeometricallyUndefined
}
