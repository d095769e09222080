// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mainchain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

type fixedWitnesses struct {
	addrs []unit.Address
}

func (f fixedWitnesses) Witnesses(unit.Hash) ([]unit.Address, error) { return f.addrs, nil }

func testHash(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func testAddress(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func addUnit(t *testing.T, c *jointcache.Cache, h unit.Hash, parents []unit.Hash, author unit.Address) {
	t.Helper()
	u := &unit.Unit{
		UnitHash:        h,
		ParentUnits:     parents,
		WitnessListUnit: testHash(0),
		Authors:         []unit.Author{{Address: author}},
	}
	require.NoError(t, c.AddJoint(&unit.Joint{Unit: u}))
}

// newChain builds a genesis plus a linear run of units, each authored by
// a distinct witness so witnessed_level advances one step per unit.
func newChain(t *testing.T, n int, witnesses []unit.Address) (*jointcache.Cache, *Engine, unit.Hash, []unit.Hash) {
	t.Helper()
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())

	genesis := testHash(0x01)
	addUnit(t, cache, genesis, nil, testAddress(0xff))

	e := New(cache, fixedWitnesses{addrs: witnesses}, config.Config{MajorityOfWitnesses: 7, WitnessCount: 12}, log.NewNoOp(), metrics.NewNoOp(), nil, nil)
	e.SeedGenesis(genesis)

	hashes := make([]unit.Hash, 0, n)
	prev := genesis
	for i := 0; i < n; i++ {
		h := testHash(byte(0x10 + i))
		addUnit(t, cache, h, []unit.Hash{prev}, witnesses[i%len(witnesses)])
		require.NoError(t, e.computeProperties(h))
		hashes = append(hashes, h)
		prev = h
	}
	return cache, e, genesis, hashes
}

func TestComputePropertiesLevelsIncrease(t *testing.T) {
	witnesses := make([]unit.Address, 12)
	for i := range witnesses {
		witnesses[i] = testAddress(byte(i + 1))
	}
	cache, _, genesis, chain := newChain(t, 8, witnesses)

	gs, ok := cache.Snapshot(genesis)
	require.True(t, ok)
	require.EqualValues(t, 0, gs.Level)

	for i, h := range chain {
		snap, ok := cache.Snapshot(h)
		require.True(t, ok)
		require.EqualValues(t, i+1, snap.Level)
		bp, has := snap.BestParent, snap.HasBestParent
		require.True(t, has)
		if i == 0 {
			require.Equal(t, genesis, bp)
		} else {
			require.Equal(t, chain[i-1], bp)
		}
	}
}

func TestWitnessedLevelReachesMajority(t *testing.T) {
	witnesses := make([]unit.Address, 12)
	for i := range witnesses {
		witnesses[i] = testAddress(byte(i + 1))
	}
	cache, _, _, chain := newChain(t, 9, witnesses)

	// chain[7]'s best-parent walk starts at chain[6] and passes through
	// chain[0..6], the first point at which 7 distinct witnesses
	// (authors of chain[0..6]) have been seen.
	snap, ok := cache.Snapshot(chain[7])
	require.True(t, ok)
	require.Greater(t, snap.WitnessedLevel, uint64(0))

	early, ok := cache.Snapshot(chain[4])
	require.True(t, ok)
	require.Zero(t, early.WitnessedLevel)
}

func TestMainChainPromotesGenesisDescendants(t *testing.T) {
	witnesses := make([]unit.Address, 12)
	for i := range witnesses {
		witnesses[i] = testAddress(byte(i + 1))
	}
	cache, e, genesis, chain := newChain(t, 15, witnesses)

	require.NoError(t, e.tryAdvance())

	gs, ok := cache.Snapshot(genesis)
	require.True(t, ok)
	require.True(t, gs.IsStable)
	require.EqualValues(t, 0, gs.MCI)

	// chain[7] is the first unit with witnessed_level > 0, so chain[14]
	// (whose min_wl is chain[7]'s witnessed_level) is the first tip with
	// min_wl 1, above the level of every alternative to chain[0]. With no
	// competing branch, chain[0] becomes stable as the first mci after
	// genesis.
	first, ok := cache.Snapshot(chain[0])
	require.True(t, ok)
	require.True(t, first.IsStable)
	require.EqualValues(t, 1, first.MCI)
}
