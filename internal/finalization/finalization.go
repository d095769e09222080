// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finalization is the third and last serial worker: for every
// unit the main-chain worker declares stable, in mci order, it computes
// the skiplist, derives the deterministic ball hash, strips content from
// NoCommission units, and commits the result durably.
package finalization

import (
	"errors"
	"time"

	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/mainchain"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

// Graph is the read surface the finalization worker needs from the
// joint cache.
type Graph interface {
	GetJoint(h unit.Hash) (*unit.Joint, error)
	Properties(h unit.Hash) *unit.Properties
}

// Engine drains mci-stable batches and durably commits each unit's ball.
type Engine struct {
	graph Graph
	store store.Store
	log   log.Logger
	metrics *metrics.Metrics

	in <-chan mainchain.MciStable
}

// New constructs a finalization Engine reading stable batches from in.
func New(g Graph, s store.Store, logger log.Logger, m *metrics.Metrics, in <-chan mainchain.MciStable) *Engine {
	return &Engine{
		graph: g,
		store: s,
		log:   log.New(logger, "finalization"),
		metrics: m,
		in:    in,
	}
}

// Run drains in until it is closed. A returned error is a process-abort
// condition: a durable-write failure, or a parent ball missing out of
// order, must never be allowed to finalize a wrong or partial history.
func (e *Engine) Run() error {
	for batch := range e.in {
		for _, h := range batch.Units {
			if err := e.finalizeOne(h); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) finalizeOne(h unit.Hash) error {
	start := time.Now()
	j, err := e.graph.GetJoint(h)
	if err != nil {
		return err
	}
	if j == nil {
		return sdagerr.New(sdagerr.OrderingViolation, h.String(), errors.New("stabilized unit not found in cache"))
	}
	props := e.graph.Properties(h)
	if props == nil {
		return sdagerr.New(sdagerr.OrderingViolation, h.String(), errors.New("stabilized unit has no properties"))
	}
	snap := props.Snapshot()

	var skiplistUnits []unit.Hash
	if snap.MCI > 0 && snap.MCI == snap.LIMCI {
		skiplistUnits, err = e.skiplistUnits(snap.MCI)
		if err != nil {
			return err
		}
	}

	parentBalls, err := e.ballsOf(j.Unit.ParentUnits)
	if err != nil {
		return err
	}
	skiplistBalls, err := e.ballsOf(skiplistUnits)
	if err != nil {
		return err
	}

	bad := snap.Sequence != unit.Good
	ballHash, err := unit.ComputeBallHash(h, parentBalls, skiplistBalls, bad)
	if err != nil {
		return sdagerr.New(sdagerr.MalformedUnit, h.String(), err)
	}
	if j.Ball != nil && *j.Ball != ballHash {
		e.log.Warn("received ball differs from computed ball, preferring computed",
			"unit", h.String(), "received", j.Ball.String(), "computed", ballHash.String())
	}

	finalUnit := j.Unit
	if snap.Sequence == unit.NoCommission {
		finalUnit, err = stripContent(j.Unit)
		if err != nil {
			return err
		}
	}

	finalJoint := &unit.Joint{
		Unit:          finalUnit,
		Ball:          &ballHash,
		SkiplistUnits: skiplistUnits,
	}

	if err := e.store.PutJoint(finalJoint); err != nil {
		return sdagerr.New(sdagerr.StoreError, h.String(), err)
	}
	if err := e.store.PutProperties(h, store.FromSnapshot(snap)); err != nil {
		return sdagerr.New(sdagerr.StoreError, h.String(), err)
	}
	if err := e.store.PutBall(ballHash, h); err != nil {
		return sdagerr.New(sdagerr.StoreError, h.String(), err)
	}
	if err := e.store.PutMciUnit(snap.MCI, h); err != nil {
		return sdagerr.New(sdagerr.StoreError, h.String(), err)
	}

	if e.metrics != nil {
		e.metrics.FinalizeLatency.Observe(time.Since(start).Seconds())
	}
	e.log.Info("unit finalized", "unit", h.String(), "mci", snap.MCI, "sequence", snap.Sequence.String())
	return nil
}

// ballsOf resolves each hash's durable ball. Every parent and skiplist
// entry must already have one: units are finalized strictly in mci
// order, so their ancestors always precede them through this worker.
func (e *Engine) ballsOf(hashes []unit.Hash) ([]unit.Hash, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	balls := make([]unit.Hash, len(hashes))
	for i, h := range hashes {
		ball, ok, err := e.store.BallByUnit(h)
		if err != nil {
			return nil, sdagerr.New(sdagerr.StoreError, h.String(), err)
		}
		if !ok {
			return nil, sdagerr.New(sdagerr.OrderingViolation, h.String(), errors.New("parent ball missing at finalize"))
		}
		balls[i] = ball
	}
	return balls, nil
}
