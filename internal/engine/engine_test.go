// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

func eaddr(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func ehash(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func paymentMsg(t *testing.T, p business.Payment) unit.Message {
	t.Helper()
	payload, err := json.Marshal(p)
	require.NoError(t, err)
	return unit.Message{App: business.AppPayment, PayloadLocation: unit.PayloadInline, Payload: payload}
}

func newTestNode(t *testing.T) (*Node, unit.Address, unit.Hash) {
	t.Helper()
	st := store.NewMem()
	cfg := config.Default()
	alice := eaddr(0xaa)

	genesisHash := ehash(0x01)
	genesis := &unit.Unit{
		UnitHash: genesisHash,
		Authors:  []unit.Author{{Address: eaddr(0xff)}},
		Messages: []unit.Message{paymentMsg(t, business.Payment{
			Outputs: []business.PaymentOutput{{Address: alice, Amount: 1000}},
		})},
	}

	n := New(st, log.NewNoOp(), metrics.NewNoOp(), cfg, business.NullCommission{}, genesisHash)
	require.NoError(t, n.SeedGenesis(&unit.Joint{Unit: genesis}))
	return n, alice, genesisHash
}

func TestNewWiresEveryComponent(t *testing.T) {
	n, _, _ := newTestNode(t)
	require.NotNil(t, n.Cache)
	require.NotNil(t, n.MainChain)
	require.NotNil(t, n.Business)
	require.NotNil(t, n.Finalization)
	require.NotNil(t, n.Queries)
	require.NotNil(t, n.Witnesses)
}

func TestSeedGenesisCreditsBothMirrors(t *testing.T) {
	n, alice, _ := newTestNode(t)
	require.EqualValues(t, 1000, n.Business.Tentative.Utxo.Balance(alice))
	require.EqualValues(t, 1000, n.Business.Stable.Utxo.Balance(alice))
	require.EqualValues(t, 1000, n.Queries.GetBalance(alice))
}

func TestRebuildReplaysStoredUnitsInMciOrder(t *testing.T) {
	st := store.NewMem()
	cfg := config.Default()
	alice, bob := eaddr(0xaa), eaddr(0xbb)

	genesisHash := ehash(0x01)
	genesis := &unit.Unit{
		UnitHash: genesisHash,
		Authors:  []unit.Author{{Address: eaddr(0xff)}},
		Messages: []unit.Message{paymentMsg(t, business.Payment{
			Outputs: []business.PaymentOutput{{Address: alice, Amount: 500}},
		})},
	}
	require.NoError(t, st.PutJoint(&unit.Joint{Unit: genesis}))

	spendHash := ehash(0x02)
	spend := &unit.Unit{
		UnitHash:    spendHash,
		ParentUnits: []unit.Hash{genesisHash},
		Authors:     []unit.Author{{Address: alice}},
		Messages: []unit.Message{paymentMsg(t, business.Payment{
			Inputs: []business.PaymentInput{{Unit: genesisHash, MessageIndex: 0, OutputIndex: 0}},
			Outputs: []business.PaymentOutput{
				{Address: bob, Amount: 200},
				{Address: alice, Amount: 300},
			},
		})},
	}
	require.NoError(t, st.PutJoint(&unit.Joint{Unit: spend}))
	require.NoError(t, st.PutMciUnit(1, spendHash))

	n := New(st, log.NewNoOp(), metrics.NewNoOp(), cfg, business.NullCommission{}, genesisHash)
	require.NoError(t, n.SeedGenesis(&unit.Joint{Unit: genesis}))

	require.NoError(t, n.Rebuild())
	require.EqualValues(t, 300, n.Business.Stable.Utxo.Balance(alice))
	require.EqualValues(t, 200, n.Business.Stable.Utxo.Balance(bob))
	require.EqualValues(t, 300, n.Business.Tentative.Utxo.Balance(alice))
	require.EqualValues(t, 200, n.Business.Tentative.Utxo.Balance(bob))
}
