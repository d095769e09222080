// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import "github.com/luxfi/sdag/internal/unit"

// CommissionPolicy decides, at finalization time, whether a unit's
// headers/payload commission was distributed as its
// EarnedHeadersCommissionRecipients claim. A unit that fails this check
// is sequenced NoCommission instead of Good.
type CommissionPolicy interface {
	// Check reports whether u's commission bookkeeping is acceptable
	// given its position in the stable mirror.
	Check(u *unit.Unit) error
}

// NullCommission accepts every unit's commission bookkeeping unconditionally.
// It never produces a NoCommission verdict, deferring commission economics
// to a later policy without blocking the rest of the finalization path.
type NullCommission struct{}

// Check always succeeds.
func (NullCommission) Check(*unit.Unit) error { return nil }
