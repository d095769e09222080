// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine wires the node's serial pipeline: the joint cache feeds
// ready units to the main-chain worker and the business worker in
// parallel; the main-chain worker's stability verdicts feed the business
// worker's stable-mirror pass; and the business worker's confirmed
// batches feed finalization's durable commit. Each stage is a
// single-consumer goroutine so ordering within a stage is never
// ambiguous, matching every one of those workers' own Run contracts.
package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/finalization"
	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/light"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/mainchain"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

// chanBuffer sizes every inter-stage channel; a single-consumer worker
// that falls behind backpressures the producer rather than drops units.
const chanBuffer = 256

// Node owns the full pipeline for one running instance: the joint
// cache, the three serial workers, and the read-only query/compose
// surfaces built on top of them.
type Node struct {
	Cache        *jointcache.Cache
	MainChain    *mainchain.Engine
	Business     *business.Engine
	Finalization *finalization.Engine
	Queries      *light.Queries
	Witnesses    *witness.Resolver

	store store.Store
}

// New constructs a Node. witnessListUnit names the unit whose
// witness_list message governs main-chain stability and light-client
// queries until a new one supersedes it.
func New(st store.Store, logger log.Logger, m *metrics.Metrics, cfg config.Config, policy business.CommissionPolicy, witnessListUnit unit.Hash) *Node {
	cache := jointcache.New(st, logger, m)
	resolver := witness.NewResolver(cache)

	readyMC := make(chan unit.Hash, chanBuffer)
	readyBiz := make(chan unit.Hash, chanBuffer)
	cache.OnReady(func(h unit.Hash) {
		readyMC <- h
		readyBiz <- h
	})

	toBusiness := make(chan mainchain.MciStable, chanBuffer)
	toFinalization := make(chan mainchain.MciStable, chanBuffer)

	mc := mainchain.New(cache, resolver, cfg, logger, m, readyMC, toBusiness)
	biz := business.New(cache, policy, logger, m, readyBiz, toBusiness, toFinalization)
	fin := finalization.New(cache, st, logger, m, toFinalization)

	q := light.New(cache, st, biz.Stable, resolver, witnessListUnit, cfg.MaxParentsPerUnit)

	return &Node{
		Cache:        cache,
		MainChain:    mc,
		Business:     biz,
		Finalization: fin,
		Queries:      q,
		Witnesses:    resolver,
		store:        st,
	}
}

// SeedGenesis admits the genesis joint and marks it stable at mci 0
// across every stage, bypassing the normal readiness/promotion path.
func (n *Node) SeedGenesis(j *unit.Joint) error {
	if err := n.Cache.AddJoint(j); err != nil {
		return err
	}
	h := j.Unit.UnitHash
	n.MainChain.SeedGenesis(h)
	n.Business.SeedGenesis(j.Unit)
	return nil
}

// Run drains the three workers concurrently until every upstream
// channel closes, returning the first worker error encountered. A
// worker returning an error is a process-abort condition per each
// worker's own contract.
func (n *Node) Run() error {
	var g errgroup.Group
	g.Go(n.MainChain.Run)
	g.Go(n.Business.Run)
	g.Go(n.Finalization.Run)
	return g.Wait()
}
