// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"errors"
	"sync"
	"time"

	"github.com/luxfi/sdag/internal/ancestry"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/mainchain"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// Graph is the read surface the business worker needs from the joint
// cache: resolving a hash to its joint and its property record.
type Graph interface {
	GetJoint(h unit.Hash) (*unit.Joint, error)
	Properties(h unit.Hash) *unit.Properties
	Snapshot(h unit.Hash) (unit.Snapshot, bool)
	ParentsOf(h unit.Hash) ([]unit.Hash, error)
}

// Engine is the single-consumer serial worker that applies each ready
// unit to the tentative mirror, then, once the main-chain worker
// declares units stable, re-validates and applies them to the stable
// mirror under the full rule set.
type Engine struct {
	graph  Graph
	policy CommissionPolicy
	log    log.Logger
	metrics *metrics.Metrics

	ready <-chan unit.Hash
	stable <-chan mainchain.MciStable
	out chan<- mainchain.MciStable

	Tentative *Mirror
	Stable    *Mirror

	mu                  sync.RWMutex
	lastStableSelfJoint map[unit.Address]unit.Hash
}

// New constructs a business Engine reading newly-ready units from ready
// and mci-stable batches from stable. Once a batch has been re-validated
// and applied against the stable mirror, it is forwarded on out (which
// may be nil) for the finalization worker to seal. The forwarded batch
// carries the same units in the same order; only the sequence each unit
// was left with by this stage may have changed.
func New(g Graph, policy CommissionPolicy, logger log.Logger, m *metrics.Metrics, ready <-chan unit.Hash, stable <-chan mainchain.MciStable, out chan<- mainchain.MciStable) *Engine {
	if policy == nil {
		policy = NullCommission{}
	}
	return &Engine{
		graph:  g,
		policy: policy,
		log:    log.New(logger, "business"),
		metrics: m,
		ready:  ready,
		stable: stable,
		out:    out,
		Tentative: NewMirror(),
		Stable:    NewMirror(),
		lastStableSelfJoint: make(map[unit.Address]unit.Hash),
	}
}

// SeedGenesis credits genesis's payment outputs directly into both
// mirrors' UtxoCache and marks it as every one of its authors' first
// stable self-joint, bypassing the normal validate/apply path.
func (e *Engine) SeedGenesis(u *unit.Unit) {
	for i, msg := range u.Messages {
		if msg.App != AppPayment {
			continue
		}
		p, err := decodePayment(msg)
		if err != nil {
			continue
		}
		for outIdx, out := range p.Outputs {
			e.Tentative.Utxo.Credit(u.UnitHash, i, outIdx, out)
			e.Stable.Utxo.Credit(u.UnitHash, i, outIdx, out)
		}
	}
	e.mu.Lock()
	for _, a := range u.Authors {
		e.lastStableSelfJoint[a.Address] = u.UnitHash
	}
	e.mu.Unlock()
}

// Run drains both input channels until they are closed. A returned error
// is a process-abort condition, matching the main-chain worker's
// contract: business-rule evaluation is part of consensus, not an
// optional side effect.
func (e *Engine) Run() error {
	readyOpen, stableOpen := true, true
	for readyOpen || stableOpen {
		select {
		case h, ok := <-e.ready:
			if !ok {
				readyOpen = false
				e.ready = nil
				continue
			}
			if err := e.applyTentative(h); err != nil {
				return err
			}
		case batch, ok := <-e.stable:
			if !ok {
				stableOpen = false
				e.stable = nil
				continue
			}
			if err := e.applyStable(batch); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyTentative validates a newly-ready unit against the tentative
// mirror. A rule failure marks the unit TempBad rather than aborting the
// worker: it may still resolve to Good once concurrent siblings are
// pruned by serial-conflict detection or simply age out as the chain
// stabilizes around a different branch.
func (e *Engine) applyTentative(h unit.Hash) error {
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

	if err := e.Tentative.ValidateUnit(j.Unit); err != nil {
		e.log.Info("unit failed tentative validation", "unit", h.String(), "err", err.Error())
		props.SetSequence(unit.TempBad)
		return nil
	}
	if err := e.Tentative.ApplyUnit(j.Unit); err != nil {
		return err
	}
	return nil
}

// applyStable re-validates every unit promoted to the given mci against
// the stable mirror, in the order the main-chain worker assigned
// sub_mci. A unit that was TempBad may still turn Good here (its
// tentative rejection was only ever a hint); a unit that fails the
// stable rule set, including seeing its author's prior stable self-unit,
// becomes FinalBad and its tentative mutations are undone.
func (e *Engine) applyStable(batch mainchain.MciStable) error {
	for _, h := range batch.Units {
		start := time.Now()
		if err := e.finalizeOne(h); err != nil {
			return err
		}
		if e.metrics != nil {
			e.metrics.BusinessLatency.Observe(time.Since(start).Seconds())
		}
	}
	if e.out != nil {
		e.out <- batch
	}
	return nil
}

func (e *Engine) finalizeOne(h unit.Hash) error {
	j, err := e.graph.GetJoint(h)
	if err != nil {
		return err
	}
	if j == nil {
		return sdagerr.New(sdagerr.MissingParents, h.String(), errors.New("stabilized unit not found in cache"))
	}
	props := e.graph.Properties(h)
	if props == nil {
		return nil
	}
	u := j.Unit

	if err := e.checkSelfJointOrder(u); err != nil {
		e.revertAndFail(u, props, err)
		return nil
	}
	if err := e.Stable.ValidateUnit(u); err != nil {
		e.revertAndFail(u, props, err)
		return nil
	}
	if err := e.policy.Check(u); err != nil {
		e.revertAndFail(u, props, err)
		props.SetSequence(unit.NoCommission)
		return nil
	}
	if err := e.Stable.ApplyUnit(u); err != nil {
		return err
	}

	e.mu.Lock()
	for _, a := range u.Authors {
		e.lastStableSelfJoint[a.Address] = u.UnitHash
	}
	e.mu.Unlock()

	if props.Sequence() == unit.TempBad {
		props.SetSequence(unit.Good)
	}
	return nil
}

// checkSelfJointOrder enforces is_include_last_stable_self_joint: each
// author's previous stable self-unit, if any, must be in u's past. This
// rejects an author re-ordering their own history across concurrent
// branches once one of those branches stabilizes.
func (e *Engine) checkSelfJointOrder(u *unit.Unit) error {
	for _, a := range u.Authors {
		e.mu.RLock()
		prior, ok := e.lastStableSelfJoint[a.Address]
		e.mu.RUnlock()
		if !ok || prior == u.UnitHash {
			continue
		}
		included, err := ancestry.IsInPast(e.graph, u.UnitHash, prior)
		if err != nil {
			return err
		}
		if !included {
			return sdagerr.New(sdagerr.FinalBad, u.UnitHash.String(),
				errors.New("unit does not include author's prior stable self-joint"))
		}
	}
	return nil
}

func (e *Engine) revertAndFail(u *unit.Unit, props *unit.Properties, cause error) {
	e.log.Info("unit failed stable validation", "unit", u.UnitHash.String(), "err", cause.Error())
	if props.Sequence() == unit.Good {
		// Tentative validation succeeded and mutated the tentative
		// mirror; undo it now that the stable rule set has rejected it.
		_ = e.Tentative.RevertUnit(u)
	}
	props.SetSequence(unit.FinalBad)
}
