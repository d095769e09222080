// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mainchain

import (
	"errors"
	"sync"

	luxatomic "github.com/luxfi/atomic"

	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// Engine is the single-consumer serial worker that computes level,
// best_parent and witnessed_level for each unit as it becomes ready, and
// advances the unstable main chain to stable as far as the evidence
// allows after every arrival.
type Engine struct {
	graph     Graph
	witnesses WitnessSet
	cfg       config.Config
	log       log.Logger
	metrics   *metrics.Metrics

	in  <-chan unit.Hash
	out chan<- MciStable

	lastStableMci luxatomic.Int64

	tipMu         sync.RWMutex
	lastStable    unit.Hash
	hasLastStable bool
}

// New constructs an Engine that reads ready-unit hashes from in and
// publishes MciStable events to out. out may be nil for tests that only
// care about property computation.
func New(g Graph, w WitnessSet, cfg config.Config, logger log.Logger, m *metrics.Metrics, in <-chan unit.Hash, out chan<- MciStable) *Engine {
	e := &Engine{
		graph:     g,
		witnesses: w,
		cfg:       cfg,
		log:       log.New(logger, "mainchain"),
		metrics:   m,
		in:        in,
		out:       out,
	}
	e.lastStableMci.Store(-1)
	return e
}

// SeedGenesis marks h as the initial stable tip at mci 0, bypassing the
// normal promotion path. Called once, before Run starts consuming the
// ready-unit channel.
func (e *Engine) SeedGenesis(h unit.Hash) {
	props := e.graph.Properties(h)
	if props == nil {
		return
	}
	props.SetLevel(0)
	props.AssignStable(0, 0, 0)
	e.lastStableMci.Store(0)
	e.setStableTip(h)
}

func (e *Engine) setStableTip(h unit.Hash) {
	e.tipMu.Lock()
	e.lastStable = h
	e.hasLastStable = true
	e.tipMu.Unlock()
}

func (e *Engine) stableTip() (unit.Hash, bool) {
	e.tipMu.RLock()
	defer e.tipMu.RUnlock()
	return e.lastStable, e.hasLastStable
}

// Run drains the ready-unit channel until it is closed. A returned error
// is a process-abort condition: a stalled or erroring main-chain worker
// must not be allowed to silently degrade to partial ordering.
func (e *Engine) Run() error {
	for h := range e.in {
		if err := e.computeProperties(h); err != nil {
			return err
		}
		if err := e.tryAdvance(); err != nil {
			return err
		}
	}
	return nil
}

// computeProperties fills level, best_parent, witnessed_level, min_wl
// and a provisional limci for a newly-ready unit.
func (e *Engine) computeProperties(h unit.Hash) error {
	j, err := e.graph.GetJoint(h)
	if err != nil {
		return err
	}
	if j == nil {
		return sdagerr.New(sdagerr.MissingParents, h.String(), errors.New("ready unit not found in cache"))
	}
	props := e.graph.Properties(h)
	if props == nil {
		return nil
	}

	if j.Unit.IsGenesis() {
		props.SetLevel(0)
		props.SetLIMCI(-1)
		return nil
	}

	parents := j.Unit.ParentUnits
	var maxLevel uint64
	var maxLIMCI int64 = -1
	for i, p := range parents {
		snap, ok := e.graph.Snapshot(p)
		if !ok {
			return sdagerr.New(sdagerr.MissingParents, h.String(), errors.New("parent properties not yet computed"))
		}
		if i == 0 || snap.Level > maxLevel {
			maxLevel = snap.Level
		}
		if snap.LIMCI > maxLIMCI {
			maxLIMCI = snap.LIMCI
		}
	}
	props.SetLevel(maxLevel + 1)
	props.SetLIMCI(maxLIMCI)

	best, ok := pickBestParent(e.graph, parents)
	if !ok {
		return sdagerr.New(sdagerr.MalformedUnit, h.String(), errors.New("no eligible best parent among declared parents"))
	}
	props.SetBestParent(best)

	witnesses, err := e.witnesses.Witnesses(j.Unit.WitnessListUnit)
	if err != nil {
		return err
	}
	set := make(map[unit.Address]struct{}, len(witnesses))
	for _, a := range witnesses {
		set[a] = struct{}{}
	}
	wl, minWL, ok, err := witnessedLevel(e.graph, set, e.cfg.MajorityOfWitnesses, best)
	if err != nil {
		return err
	}
	if ok {
		props.SetWitnessLevels(wl, minWL)
	}
	return nil
}

// tryAdvance walks out to the current best free joint and promotes the
// unstable chain below it for as long as each candidate, lowest to
// highest, tests stable.
func (e *Engine) tryAdvance() error {
	stablePoint, ok := e.stableTip()
	if !ok {
		return nil // genesis not seeded yet
	}

	free := e.graph.GetFreeJoints()
	if len(free) == 0 {
		return nil
	}
	tip, ok := pickBestParent(e.graph, free)
	if !ok {
		return nil
	}

	for _, candidate := range e.unstableChain(tip) {
		stable, err := e.isStable(candidate, tip, stablePoint)
		if err != nil {
			return err
		}
		if !stable {
			break
		}
		if err := e.promote(candidate); err != nil {
			return err
		}
		stablePoint, _ = e.stableTip()
	}
	return nil
}
