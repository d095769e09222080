// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"sync"

	"github.com/luxfi/sdag/internal/unit"
)

// Mem is an in-memory Store used by tests exercising round-trip and
// idempotence behavior; it honors the same contract as the
// luxfi/database-backed implementation (DB), just without durability.
type Mem struct {
	mu sync.RWMutex
	joints map[unit.Hash][]byte
	properties map[unit.Hash]PropertyRecord
	unitByBall map[unit.Hash]unit.Hash
	ballByUnit map[unit.Hash]unit.Hash
	mciUnits map[int64][]unit.Hash
}

func NewMem() *Mem {
	return &Mem{
		joints: make(map[unit.Hash][]byte),
		properties: make(map[unit.Hash]PropertyRecord),
		unitByBall: make(map[unit.Hash]unit.Hash),
		ballByUnit: make(map[unit.Hash]unit.Hash),
		mciUnits: make(map[int64][]unit.Hash),
	}
}

func (m *Mem) PutJoint(j *unit.Joint) error {
	b, err := marshalJoint(j)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.joints[j.Unit.UnitHash] = b
	m.mu.Unlock()
	return nil
}

func (m *Mem) GetJoint(h unit.Hash) (*unit.Joint, bool, error) {
	m.mu.RLock()
	b, ok := m.joints[h]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	j, err := unmarshalJoint(b)
	if err != nil {
		return nil, false, err
	}
	return j, true, nil
}

func (m *Mem) HasJoint(h unit.Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.joints[h]
	return ok, nil
}

func (m *Mem) PutProperties(h unit.Hash, p PropertyRecord) error {
	m.mu.Lock()
	m.properties[h] = p
	m.mu.Unlock()
	return nil
}

func (m *Mem) GetProperties(h unit.Hash) (PropertyRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.properties[h]
	return p, ok, nil
}

func (m *Mem) PutBall(ball, unitHash unit.Hash) error {
	m.mu.Lock()
	m.unitByBall[ball] = unitHash
	m.ballByUnit[unitHash] = ball
	m.mu.Unlock()
	return nil
}

func (m *Mem) UnitByBall(ball unit.Hash) (unit.Hash, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.unitByBall[ball]
	return u, ok, nil
}

func (m *Mem) BallByUnit(unitHash unit.Hash) (unit.Hash, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.ballByUnit[unitHash]
	return b, ok, nil
}

func (m *Mem) PutMciUnit(mci int64, unitHash unit.Hash) error {
	m.mu.Lock()
	m.mciUnits[mci] = append(m.mciUnits[mci], unitHash)
	m.mu.Unlock()
	return nil
}

func (m *Mem) UnitsByMci(mci int64) ([]unit.Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]unit.Hash(nil), m.mciUnits[mci]...), nil
}

func (m *Mem) LastStableMci() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64 = -1
	for mci := range m.mciUnits {
		if mci > max {
			max = mci
		}
	}
	return max, nil
}

func (m *Mem) Close() error { return nil }
