// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serialcheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

func h(b byte) unit.Hash {
	var x unit.Hash
	x[0] = b
	return x
}

func addr(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func add(t *testing.T, c *jointcache.Cache, hash unit.Hash, parents []unit.Hash, author unit.Address) {
	t.Helper()
	require.NoError(t, c.AddJoint(&unit.Joint{Unit: &unit.Unit{
		UnitHash:    hash,
		ParentUnits: parents,
		Authors:     []unit.Author{{Address: author}},
	}}))
}

func TestCheckFlagsConcurrentReuseOfSameAddress(t *testing.T) {
	c := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	genesis := h(1)
	add(t, c, genesis, nil, addr(0xaa))

	same := addr(0x01)
	branchA := h(2)
	add(t, c, branchA, []unit.Hash{genesis}, same)
	branchB := h(3)
	add(t, c, branchB, []unit.Hash{genesis}, same) // concurrent fork, same author

	require.NoError(t, Check(c, branchA))
	require.NoError(t, Check(c, branchB))

	snapB, ok := c.Snapshot(branchB)
	require.True(t, ok)
	require.Equal(t, unit.NonserialBad, snapB.Sequence)
}

func TestCheckAllowsDistinctAuthors(t *testing.T) {
	c := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	genesis := h(1)
	add(t, c, genesis, nil, addr(0xaa))

	branchA := h(2)
	add(t, c, branchA, []unit.Hash{genesis}, addr(0x01))
	branchB := h(3)
	add(t, c, branchB, []unit.Hash{genesis}, addr(0x02))

	require.NoError(t, Check(c, branchA))
	require.NoError(t, Check(c, branchB))

	snapB, ok := c.Snapshot(branchB)
	require.True(t, ok)
	require.Equal(t, unit.Good, snapB.Sequence)
}
