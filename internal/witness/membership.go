// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	luxids "github.com/luxfi/ids"
	luxvalidators "github.com/luxfi/validators"

	"github.com/luxfi/sdag/internal/unit"
)

// Membership answers "is this address one of the active witnesses",
// backed by a github.com/luxfi/validators.Manager so witness eligibility
// rides the same validator-set bookkeeping the rest of the ecosystem
// uses rather than a bespoke map. subnetID namespaces the witness set
// the way a validators.Manager namespaces stakers.
type Membership struct {
	manager  luxvalidators.Manager
	subnetID luxids.ID
}

// NewMembership wraps an already-populated validators.Manager.
func NewMembership(manager luxvalidators.Manager, subnetID luxids.ID) *Membership {
	return &Membership{manager: manager, subnetID: subnetID}
}

// Addresses returns the witness addresses currently registered as
// validators under subnetID, derived from their node IDs.
func (m *Membership) Addresses() []unit.Address {
	if m.manager == nil {
		return nil
	}
	ids := m.manager.GetValidatorIDs(m.subnetID)
	addrs := make([]unit.Address, 0, len(ids))
	for _, id := range ids {
		var a unit.Address
		copy(a[:], id[:])
		addrs = append(addrs, a)
	}
	return addrs
}

// Contains reports whether addr currently holds witness status.
func (m *Membership) Contains(addr unit.Address) bool {
	for _, a := range m.Addresses() {
		if a == addr {
			return true
		}
	}
	return false
}
