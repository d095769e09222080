// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package jointcache implements the in-memory joint graph: append-only
// parent/child/best-parent edges over a demand-loading map keyed by unit
// hash, with a readiness gate once all of a unit's parents resolve.
package jointcache

import (
	"sync"

	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

// Cache is the joint cache.
type Cache struct {
	mu sync.RWMutex

	entries map[unit.Hash]*entry

	store store.Store
	log log.Logger
	metrics *metrics.Metrics

	// onReady is invoked once a joint's parents are all resolved;
	// internal/engine registers a callback here that hands the unit to
	// both the main-chain and business workers.
	onReady func(unit.Hash)
}

// New constructs an empty Cache backed by st.
func New(st store.Store, logger log.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		entries: make(map[unit.Hash]*entry),
		store: st,
		log: log.New(logger, "jointcache"),
		metrics: m,
	}
}

// OnReady registers the callback invoked when a joint becomes ready.
func (c *Cache) OnReady(fn func(unit.Hash)) { c.onReady = fn }

// AddJoint inserts j if absent, links parent/child edges, and — once all
// parents resolve — marks it ready. Returns sdagerr.MissingParents when a
// parent is absent from both cache and store.
func (c *Cache) AddJoint(j *unit.Joint) error {
	h := j.Unit.UnitHash

	c.mu.Lock()
	if _, exists := c.entries[h]; exists {
		c.mu.Unlock()
		return nil // admitting the same unit twice is a no-op 
	}
	e := newEntry(j)
	c.entries[h] = e
	c.mu.Unlock()

	var missing []string
	for _, parentHash := range e.parents {
		if c.resolveEdge(parentHash, h) {
			continue
		}
		missing = append(missing, parentHash.String())
	}
	if len(missing) > 0 {
		return sdagerr.MissingParentsErr(h.String(), missing)
	}

	e.resolvedParents = len(e.parents)
	c.markReadyIfComplete(h, e)
	if c.metrics != nil {
		c.metrics.UnitsAdmitted.Inc()
	}
	return nil
}

// resolveEdge records h as a child of parentHash if parentHash is known
// (in memory or durably), returning whether it was found.
func (c *Cache) resolveEdge(parentHash, childHash unit.Hash) bool {
	c.mu.RLock()
	pe, ok := c.entries[parentHash]
	c.mu.RUnlock()
	if ok {
		pe.addChild(childHash)
		return true
	}
	if c.store == nil {
		return false
	}
	has, err := c.store.HasJoint(parentHash)
	if err != nil || !has {
		return false
	}
	return true
}

func (c *Cache) markReadyIfComplete(h unit.Hash, e *entry) {
	e.mu.Lock()
	alreadyReady := e.ready
	e.ready = true
	e.mu.Unlock()
	if alreadyReady {
		return
	}
	if c.onReady != nil {
		c.onReady(h)
	}
}

// GetJoint returns the joint, loading from the store on a cache miss.
func (c *Cache) GetJoint(h unit.Hash) (*unit.Joint, error) {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if ok {
		return e.joint, nil
	}
	return c.TryGetJoint(h)
}

// TryGetJoint loads a joint from the store without populating the cache
// (used by ancestry walks that touch cold history once).
func (c *Cache) TryGetJoint(h unit.Hash) (*unit.Joint, error) {
	if c.store == nil {
		return nil, nil
	}
	j, ok, err := c.store.GetJoint(h)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return j, nil
}

// Properties returns the property record for h, or nil if h is unknown in
// memory (callers needing stable history should read via Store instead).
func (c *Cache) Properties(h unit.Hash) *unit.Properties {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[h]
	if !ok {
		return nil
	}
	return e.properties
}

// Parents returns the unit's parent hashes in canonical order.
func (c *Cache) Parents(h unit.Hash) []unit.Hash {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return append([]unit.Hash(nil), e.parents...)
}

// Children returns the children observed so far for h (arrival order).
func (c *Cache) Children(h unit.Hash) []unit.Hash {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	return e.childrenSnapshot()
}

// Has reports whether h is resident in memory.
func (c *Cache) Has(h unit.Hash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[h]
	return ok
}

// GetFreeJoints returns joints with no children: the roots the main-chain
// engine walks from.
func (c *Cache) GetFreeJoints() []unit.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var free []unit.Hash
	for h, e := range c.entries {
		if !e.hasChildren() {
			free = append(free, h)
		}
	}
	if c.metrics != nil {
		c.metrics.FreeJoints.Set(float64(len(free)))
	}
	return free
}

// GetJointsByMci enumerates the units assigned to mci, for bootstrap
// replay.
func (c *Cache) GetJointsByMci(mci int64) ([]unit.Hash, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.UnitsByMci(mci)
}

// Snapshot returns the property snapshot for h, checking memory first and
// falling back to the durable record so ancestry walks work uniformly
// over hot and cold history.
func (c *Cache) Snapshot(h unit.Hash) (unit.Snapshot, bool) {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if ok {
		return e.properties.Snapshot(), true
	}
	if c.store == nil {
		return unit.Snapshot{}, false
	}
	rec, ok, err := c.store.GetProperties(h)
	if err != nil || !ok {
		return unit.Snapshot{}, false
	}
	return unit.Snapshot{
		Level: rec.Level, BestParent: rec.BestParent, HasBestParent: rec.HasBestParent,
		WitnessedLevel: rec.WitnessedLevel, MinWL: rec.MinWL,
		MCI: rec.MCI, LIMCI: rec.LIMCI, SubMCI: rec.SubMCI,
		Sequence: rec.Sequence, IsStable: rec.IsStable,
		IsWLIncreased: rec.IsWLIncreased, IsMinWLIncreased: rec.IsMinWLIncreased,
	}, true
}

// ParentsOf returns h's parents, loading the joint from the store when h
// is not cache-resident.
func (c *Cache) ParentsOf(h unit.Hash) ([]unit.Hash, error) {
	c.mu.RLock()
	e, ok := c.entries[h]
	c.mu.RUnlock()
	if ok {
		return append([]unit.Hash(nil), e.parents...), nil
	}
	j, err := c.TryGetJoint(h)
	if err != nil || j == nil {
		return nil, err
	}
	return j.Unit.ParentUnits, nil
}

// Evict removes h from the in-memory map (used after stability + durable
// commit frees memory; the durable copy in Store remains authoritative).
func (c *Cache) Evict(h unit.Hash) {
	c.mu.Lock()
	delete(c.entries, h)
	c.mu.Unlock()
}
