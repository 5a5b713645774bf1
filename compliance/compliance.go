// Package compliance selects how aggressively verification rejects
// ambiguity.
package compliance

import "fmt"

// Mode controls the strictness of a verification run.
//
// Permissive reproduces the legacy service behavior: any trailing path
// segment is accepted as a locator identifier, fetched bytes are trusted as
// the reference copy, and the ledger check is informational.
//
// Strict prefers explicit failure over silent acceptance: the locator
// identifier must be a content identifier, fetched bytes must re-derive it,
// and a fingerprint match only counts as Genuine when it is anchored on the
// ledger.
type Mode int

const (
	Permissive Mode = iota
	Strict
)

func (m Mode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("compliance.Mode(%d)", int(m))
	}
}

// ParseMode maps the wire/config spelling of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("unknown compliance mode %q", s)
	}
}
