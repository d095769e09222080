// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"

	"github.com/luxfi/sdag/internal/unit"
)

// Rebuild reconstructs both business mirrors from durable storage after
// a restart, replaying every stored unit strictly in mci order starting
// from mci 1 (mci 0 is genesis, already seeded by SeedGenesis). Both the
// tentative and stable mirrors end up identical, since every stored unit
// is by definition already final.
func (n *Node) Rebuild() error {
	lastMci, err := n.store.LastStableMci()
	if err != nil {
		return err
	}
	for mci := int64(1); mci <= lastMci; mci++ {
		hashes, err := n.store.UnitsByMci(mci)
		if err != nil {
			return err
		}
		for _, h := range hashes {
			if err := n.replayUnit(h); err != nil {
				return fmt.Errorf("rebuild: replay unit %s at mci %d: %w", h, mci, err)
			}
		}
	}
	return nil
}

func (n *Node) replayUnit(h unit.Hash) error {
	j, found, err := n.store.GetJoint(h)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("unit %s listed in mci index but missing from store", h)
	}
	if err := n.Business.Tentative.ApplyUnit(j.Unit); err != nil {
		return err
	}
	if err := n.Business.Stable.ApplyUnit(j.Unit); err != nil {
		return err
	}
	return nil
}
