// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store specifies and implements the durable read/write contract:
// two logical tables (joints, properties) plus the auxiliary ball<->unit
// and mci<->unit indexes. Flush is required after each write; a write
// failure is a process-abort condition.
package store

import (
	"encoding/json"

	"github.com/luxfi/sdag/internal/unit"
)

// PropertyRecord is the durable shape of unit.Properties.
type PropertyRecord struct {
	Level uint64 `json:"level"`
	BestParent unit.Hash `json:"best_parent"`
	HasBestParent bool `json:"has_best_parent"`
	WitnessedLevel uint64 `json:"witnessed_level"`
	MinWL uint64 `json:"min_wl"`
	MCI int64 `json:"mci"`
	LIMCI int64 `json:"limci"`
	SubMCI int64 `json:"sub_mci"`
	Sequence unit.Sequence `json:"sequence"`
	IsStable bool `json:"is_stable"`
	IsWLIncreased bool `json:"is_wl_increased"`
	IsMinWLIncreased bool `json:"is_min_wl_increased"`
}

func FromSnapshot(s unit.Snapshot) PropertyRecord {
	return PropertyRecord{
		Level: s.Level, BestParent: s.BestParent, HasBestParent: s.HasBestParent,
		WitnessedLevel: s.WitnessedLevel, MinWL: s.MinWL,
		MCI: s.MCI, LIMCI: s.LIMCI, SubMCI: s.SubMCI,
		Sequence: s.Sequence, IsStable: s.IsStable,
		IsWLIncreased: s.IsWLIncreased, IsMinWLIncreased: s.IsMinWLIncreased,
	}
}

// Store is the durable persistence contract every consensus worker relies
// on. Implementations must flush before returning from any Put* call.
type Store interface {
	PutJoint(j *unit.Joint) error
	GetJoint(h unit.Hash) (*unit.Joint, bool, error)
	HasJoint(h unit.Hash) (bool, error)

	PutProperties(h unit.Hash, p PropertyRecord) error
	GetProperties(h unit.Hash) (PropertyRecord, bool, error)

	// PutBall indexes both directions of the ball↔unit map.
	PutBall(ball, unitHash unit.Hash) error
	UnitByBall(ball unit.Hash) (unit.Hash, bool, error)
	BallByUnit(unitHash unit.Hash) (unit.Hash, bool, error)

	// PutMciUnit appends unitHash to the ordered set for mci, used for
	// bootstrap replay via GetJoint enumeration.
	PutMciUnit(mci int64, unitHash unit.Hash) error
	UnitsByMci(mci int64) ([]unit.Hash, error)

	// LastStableMci returns the highest mci durably committed, or -1.
	LastStableMci() (int64, error)

	Close() error
}

func marshalJoint(j *unit.Joint) ([]byte, error) { return json.Marshal(j) }
func unmarshalJoint(b []byte) (*unit.Joint, error) {
	var j unit.Joint
	if err := json.Unmarshal(b, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
