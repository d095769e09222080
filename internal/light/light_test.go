// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package light

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

func lh(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func laddr(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func TestGetBalanceAndHistory(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	alice := laddr(0xaa)
	genesis := lh(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 100})

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)
	require.EqualValues(t, 100, q.GetBalance(alice))
	require.Empty(t, q.GetHistory(alice, 10))
}

func TestInputsSelectsLargestFirstUntilEnough(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	alice := laddr(0xaa)
	genesis := lh(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 10})
	mirror.Utxo.Credit(genesis, 0, 1, business.PaymentOutput{Address: alice, Amount: 50})
	mirror.Utxo.Credit(genesis, 0, 2, business.PaymentOutput{Address: alice, Amount: 30})

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)

	selected, total, err := q.Inputs(alice, 60, false)
	require.NoError(t, err)
	require.EqualValues(t, 80, total)
	require.Len(t, selected, 2)
	require.EqualValues(t, 50, selected[0].Amount)
	require.EqualValues(t, 30, selected[1].Amount)
}

func TestInputsSpendAllReturnsEverything(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	alice := laddr(0xaa)
	genesis := lh(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 10})
	mirror.Utxo.Credit(genesis, 0, 1, business.PaymentOutput{Address: alice, Amount: 50})

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)
	selected, total, err := q.Inputs(alice, 0, true)
	require.NoError(t, err)
	require.EqualValues(t, 60, total)
	require.Len(t, selected, 2)
}

func TestInputsInsufficientBalanceErrors(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	alice := laddr(0xaa)
	genesis := lh(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 10})

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)
	_, _, err := q.Inputs(alice, 1000, false)
	require.Error(t, err)
}

func TestLightPropsReportsFreeJointsAndDefinition(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	alice := laddr(0xaa)
	genesis := lh(1)
	require.NoError(t, cache.AddJoint(&unit.Joint{Unit: &unit.Unit{UnitHash: genesis}}))
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 10})

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)
	props, err := q.LightProps(alice)
	require.NoError(t, err)
	require.Equal(t, []unit.Hash{genesis}, props.ParentUnits)
	require.True(t, props.HasDefinition)
	require.Equal(t, lh(0xff), props.WitnessListUnit)
	require.Equal(t, unit.Hash{}, props.LastBallUnit)

	bob := laddr(0xbb)
	propsBob, err := q.LightProps(bob)
	require.NoError(t, err)
	require.False(t, propsBob.HasDefinition)
}

func TestLightPropsUsesLastStableBall(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	genesis := lh(1)
	ball := lh(0x90)

	require.NoError(t, mem.PutMciUnit(0, genesis))
	require.NoError(t, mem.PutProperties(genesis, store.PropertyRecord{MCI: 0, LIMCI: 0}))
	require.NoError(t, mem.PutBall(ball, genesis))

	q := New(cache, mem, mirror, witness.NewResolver(cache), lh(0xff), 16)
	props, err := q.LightProps(laddr(0xaa))
	require.NoError(t, err)
	require.Equal(t, genesis, props.LastBallUnit)
	require.Equal(t, ball, props.LastBall)
}

func TestGetWitnessesResolvesFromWitnessListUnit(t *testing.T) {
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	listUnit := lh(2)
	addrs := []unit.Address{laddr(1), laddr(2)}
	payload, err := json.Marshal(addrs)
	require.NoError(t, err)
	require.NoError(t, cache.AddJoint(&unit.Joint{Unit: &unit.Unit{
		UnitHash: listUnit,
		Messages: []unit.Message{{App: witness.MessageApp, PayloadLocation: unit.PayloadInline, Payload: payload}},
	}}))

	q := New(cache, mem, mirror, witness.NewResolver(cache), listUnit, 16)
	got, err := q.GetWitnesses()
	require.NoError(t, err)
	require.Equal(t, addrs, got)
}
