// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finalization

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/mainchain"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

func fh(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func addStableJoint(t *testing.T, c *jointcache.Cache, h unit.Hash, parents []unit.Hash, mci, limci int64, seq unit.Sequence) {
	t.Helper()
	require.NoError(t, c.AddJoint(&unit.Joint{Unit: &unit.Unit{
		UnitHash:    h,
		ParentUnits: parents,
		Authors:     []unit.Author{{Address: unit.Address{0xaa}}},
		Messages:    []unit.Message{{App: "text", PayloadLocation: unit.PayloadInline, Payload: []byte(`"hi"`)}},
	}}))
	props := c.Properties(h)
	props.SetSequence(seq)
	props.AssignStable(mci, 0, limci)
}

func TestFinalizeGenesisHasEmptySkiplistAndBalls(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	genesis := fh(1)
	addStableJoint(t, cache, genesis, nil, 0, 0, unit.Good)

	e := New(cache, mem, log.NewNoOp(), metrics.NewNoOp(), nil)
	require.NoError(t, e.finalizeOne(genesis))

	ball, ok, err := mem.BallByUnit(genesis)
	require.NoError(t, err)
	require.True(t, ok)

	wantBall, err := unit.ComputeBallHash(genesis, nil, nil, false)
	require.NoError(t, err)
	require.Equal(t, wantBall, ball)
}

func TestFinalizeNoCommissionStripsMessages(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	genesis := fh(1)
	addStableJoint(t, cache, genesis, nil, 0, 0, unit.Good)

	child := fh(2)
	addStableJoint(t, cache, child, []unit.Hash{genesis}, 1, 1, unit.NoCommission)

	e := New(cache, mem, log.NewNoOp(), metrics.NewNoOp(), nil)
	require.NoError(t, e.finalizeOne(genesis))
	require.NoError(t, e.finalizeOne(child))

	stored, ok, err := mem.GetJoint(child)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored.Unit.Messages, 1)
	require.Equal(t, AppContentHash, stored.Unit.Messages[0].App)
}

func TestFinalizeComputesSkiplistAtMci1000(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	e := New(cache, mem, log.NewNoOp(), metrics.NewNoOp(), nil)

	// Seed durable mci=0, mci=900 and mci=990 on-main-chain balls directly,
	// as if earlier units had already been finalized: 1000 is divisible by
	// 10, 100 and 1000, so its skiplist targets 990, 900 and 0.
	zero := fh(1)
	nine00 := fh(2)
	nine90 := fh(3)
	require.NoError(t, mem.PutMciUnit(0, zero))
	require.NoError(t, mem.PutProperties(zero, store.PropertyRecord{MCI: 0, LIMCI: 0}))
	require.NoError(t, mem.PutBall(fh(0x90), zero))

	require.NoError(t, mem.PutMciUnit(900, nine00))
	require.NoError(t, mem.PutProperties(nine00, store.PropertyRecord{MCI: 900, LIMCI: 900}))
	require.NoError(t, mem.PutBall(fh(0x91), nine00))

	require.NoError(t, mem.PutMciUnit(990, nine90))
	require.NoError(t, mem.PutProperties(nine90, store.PropertyRecord{MCI: 990, LIMCI: 990}))
	require.NoError(t, mem.PutBall(fh(0x92), nine90))

	units, err := e.skiplistUnits(1000)
	require.NoError(t, err)
	require.ElementsMatch(t, []unit.Hash{zero, nine00, nine90}, units)

	empty, err := e.skiplistUnits(999)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFinalizeRunDrainsBatches(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	genesis := fh(1)
	addStableJoint(t, cache, genesis, nil, 0, 0, unit.Good)
	child := fh(2)
	addStableJoint(t, cache, child, []unit.Hash{genesis}, 1, 1, unit.Good)

	in := make(chan mainchain.MciStable, 2)
	e := New(cache, mem, log.NewNoOp(), metrics.NewNoOp(), in)

	in <- mainchain.MciStable{MCI: 0, Units: []unit.Hash{genesis}}
	in <- mainchain.MciStable{MCI: 1, Units: []unit.Hash{child}}
	close(in)

	require.NoError(t, e.Run())

	_, ok, err := mem.BallByUnit(child)
	require.NoError(t, err)
	require.True(t, ok)
}
