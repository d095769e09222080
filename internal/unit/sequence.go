// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package unit

// Sequence is a unit's final classification.
type Sequence uint8

const (
	Good Sequence = iota
	TempBad
	NonserialBad
	FinalBad
	NoCommission
)

func (s Sequence) String() string {
	switch s {
	case Good:
		return "good"
	case TempBad:
		return "temp-bad"
	case NonserialBad:
		return "nonserial-bad"
	case FinalBad:
		return "final-bad"
	case NoCommission:
		return "no-commission"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined sequence values.
func (s Sequence) Valid() bool {
	return s <= NoCommission
}

// Bad reports whether the unit must be treated as bad for ball-hash
// purposes: the ball's bad flag is `sequence != Good`.
func (s Sequence) Bad() bool {
	return s != Good
}
