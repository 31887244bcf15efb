package houses

import (
	"fmt"
	"strings"
)

// FallbackPolicy decides what Houses returns for a system that is
// geometrically undefined at the requested latitude.
type FallbackPolicy int

const (
	// FallbackPorphyry substitutes the Porphyry construction and still
	// returns the undefined error.
	FallbackPorphyry FallbackPolicy = iota
	// FallbackNone returns only the error.
	FallbackNone
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackPorphyry:
		return "porphyry"
	case FallbackNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseFallback parses "porphyry" or "none".
func ParseFallback(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "porphyry", "":
		return FallbackPorphyry, nil
	case "none":
		return FallbackNone, nil
	default:
		return 0, fmt.Errorf("unknown fallback policy %q", s)
	}
}
