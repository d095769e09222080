// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package witness resolves the 12-member witness set named by a unit's
// witness_list_unit and runs the periodic posting scheduler that keeps
// a witness node's heartbeat units flowing.
package witness

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// MessageApp is the message.app tag carrying the witness list payload on
// a witness_list_unit.
const MessageApp = "witness_list"

// Graph is the read surface Resolver needs from the joint cache.
type Graph interface {
	GetJoint(h unit.Hash) (*unit.Joint, error)
}

// Resolver resolves a witness_list_unit hash to its 12 addresses,
// caching by hash since a witness list unit is immutable once stable.
type Resolver struct {
	graph Graph

	mu    sync.RWMutex
	cache map[unit.Hash][]unit.Address
}

// NewResolver constructs a Resolver reading witness_list_unit joints
// from g.
func NewResolver(g Graph) *Resolver {
	return &Resolver{graph: g, cache: make(map[unit.Hash][]unit.Address)}
}

// Witnesses implements mainchain.WitnessSet.
func (r *Resolver) Witnesses(witnessListUnit unit.Hash) ([]unit.Address, error) {
	r.mu.RLock()
	if w, ok := r.cache[witnessListUnit]; ok {
		r.mu.RUnlock()
		return w, nil
	}
	r.mu.RUnlock()

	j, err := r.graph.GetJoint(witnessListUnit)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, sdagerr.New(sdagerr.MissingParents, witnessListUnit.String(), errors.New("witness_list_unit not yet resolvable"))
	}

	for _, m := range j.Unit.Messages {
		if m.App != MessageApp {
			continue
		}
		var addrs []unit.Address
		if err := json.Unmarshal(m.Payload, &addrs); err != nil {
			return nil, sdagerr.New(sdagerr.MalformedUnit, witnessListUnit.String(), err)
		}
		r.mu.Lock()
		r.cache[witnessListUnit] = addrs
		r.mu.Unlock()
		return addrs, nil
	}
	return nil, sdagerr.New(sdagerr.MalformedUnit, witnessListUnit.String(), errors.New("unit carries no witness_list message"))
}
