// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jointcache

import (
	"sync"

	"github.com/luxfi/sdag/internal/unit"
)

// entry is one cached joint. Parent/child edges are append-only references
// by hash: the cache never holds a strong owning pointer across them, only
// lookup keys, so cycles are structurally impossible and eviction of a
// child never orphans a parent.
type entry struct {
	mu sync.Mutex // guards children/resolvedParents bookkeeping only

	joint *unit.Joint
	properties *unit.Properties

	// parents, in the unit's own canonical parent_units order.
	parents []unit.Hash
	// children observed so far, arrival order; used only as a set except
	// where noted.
	children []unit.Hash
	childSet map[unit.Hash]struct{}

	resolvedParents int
	ready bool // all parents resolved and onReady fired; properties are computed later
}

func newEntry(j *unit.Joint) *entry {
	return &entry{
		joint: j,
		properties: unit.NewProperties(),
		parents: append([]unit.Hash(nil), j.Unit.ParentUnits...),
		childSet: make(map[unit.Hash]struct{}),
	}
}

func (e *entry) addChild(h unit.Hash) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.childSet[h]; ok {
		return
	}
	e.childSet[h] = struct{}{}
	e.children = append(e.children, h)
}

func (e *entry) childrenSnapshot() []unit.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]unit.Hash(nil), e.children...)
}

func (e *entry) hasChildren() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.children) > 0
}
