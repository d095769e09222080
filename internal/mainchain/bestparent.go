// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mainchain

import "github.com/luxfi/sdag/internal/unit"

// pickBestParent selects the unique hash minimizing (-wl, level, hash)
// lexicographically: highest witnessed_level, then lowest level, then
// smallest hash breaks ties. Used both to assign a unit's own
// best_parent among its parents and to pick the current main-chain tip
// among free joints.
func pickBestParent(g Graph, candidates []unit.Hash) (unit.Hash, bool) {
	var best unit.Hash
	var bestWL, bestLevel uint64
	have := false
	for _, h := range candidates {
		snap, ok := g.Snapshot(h)
		if !ok {
			continue
		}
		if !have || better(snap.WitnessedLevel, snap.Level, h, bestWL, bestLevel, best) {
			best, bestWL, bestLevel, have = h, snap.WitnessedLevel, snap.Level, true
		}
	}
	return best, have
}

func better(wl, level uint64, h unit.Hash, bestWL, bestLevel uint64, best unit.Hash) bool {
	if wl != bestWL {
		return wl > bestWL
	}
	if level != bestLevel {
		return level < bestLevel
	}
	return h.String() < best.String()
}
