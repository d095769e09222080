// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mainchain computes per-unit level/best_parent/witnessed_level,
// walks the unstable main chain out from the current best free joint, and
// promotes it to stable as far as the evidence allows, assigning mci and
// sub_mci to every unit that becomes included.
package mainchain

import "github.com/luxfi/sdag/internal/unit"

// Graph is the read/write surface the main-chain worker needs from the
// joint cache; jointcache.Cache satisfies it.
type Graph interface {
	Snapshot(h unit.Hash) (unit.Snapshot, bool)
	ParentsOf(h unit.Hash) ([]unit.Hash, error)
	Children(h unit.Hash) []unit.Hash
	GetJoint(h unit.Hash) (*unit.Joint, error)
	Properties(h unit.Hash) *unit.Properties
	GetFreeJoints() []unit.Hash
}

// WitnessSet resolves the addresses in force for a witness_list_unit.
// internal/witness implements it by reading the witness_list message of
// that unit through the joint cache.
type WitnessSet interface {
	Witnesses(witnessListUnit unit.Hash) ([]unit.Address, error)
}

// MciStable is emitted once a main-chain unit is promoted to stable. It
// carries every unit newly assigned that mci, in the (level, hash) order
// the business worker must apply them in.
type MciStable struct {
	MCI   int64
	Units []unit.Hash
}
