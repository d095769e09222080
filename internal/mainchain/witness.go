// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mainchain

import "github.com/luxfi/sdag/internal/unit"

// witnessedLevel walks up best-parents starting at start, accumulating
// distinct witness addresses seen among each unit's authors, until
// majority of them have been seen. The relative-stable ancestor found
// this way contributes its own level as wl and its own witnessed_level
// as min_wl. Returns ok=false if the walk runs off the known graph
// (near genesis, before a majority can ever be reached) or hits a unit
// whose best_parent isn't resolved yet.
func witnessedLevel(g Graph, witnesses map[unit.Address]struct{}, majority int, start unit.Hash) (wl, minWL uint64, ok bool, err error) {
	seen := make(map[unit.Address]struct{}, majority)
	cur := start
	for {
		j, jerr := g.GetJoint(cur)
		if jerr != nil {
			return 0, 0, false, jerr
		}
		if j == nil {
			return 0, 0, false, nil
		}
		for _, a := range j.Unit.Authors {
			if _, isWitness := witnesses[a.Address]; isWitness {
				seen[a.Address] = struct{}{}
			}
		}
		snap, have := g.Snapshot(cur)
		if !have {
			return 0, 0, false, nil
		}
		if len(seen) >= majority {
			return snap.Level, snap.WitnessedLevel, true, nil
		}
		if !snap.HasBestParent {
			return 0, 0, false, nil
		}
		cur = snap.BestParent
	}
}
