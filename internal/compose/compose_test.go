// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package compose

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"

	"github.com/luxfi/sdag/internal/light"
)

type fakeSigner struct{}

func (fakeSigner) Sign(addr unit.Address, h unit.Hash) (string, error) {
	return fmt.Sprintf("sig(%s,%s)", addr.String(), h.String()), nil
}

func caddr(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func chash(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func newTestQueries(t *testing.T) (*light.Queries, *business.Mirror) {
	t.Helper()
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	q := light.New(cache, mem, mirror, witness.NewResolver(cache), chash(0xff), 16)
	return q, mirror
}

func TestComposeJointSignsAndSetsChange(t *testing.T) {
	q, mirror := newTestQueries(t)
	alice, bob, change := caddr(0xaa), caddr(0xbb), caddr(0xcc)
	genesis := chash(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 10_000})

	joint, err := ComposeJoint(Request{
		PaidAddress:   alice,
		ChangeAddress: change,
		Outputs:       []business.PaymentOutput{{Address: bob, Amount: 1000}},
		Amount:        1000,
		PubKey:        "pub",
	}, q, fakeSigner{})
	require.NoError(t, err)
	require.NotEqual(t, unit.Hash{}, joint.Unit.UnitHash)
	require.Len(t, joint.Unit.Authors, 1)
	require.NotEmpty(t, joint.Unit.Authors[0].Authentifiers["r"])
	require.NotNil(t, joint.Unit.Authors[0].Definition)

	require.Len(t, joint.Unit.Messages, 1)
	var payment business.Payment
	require.NoError(t, json.Unmarshal(joint.Unit.Messages[0].Payload, &payment))
	var changeOut *business.PaymentOutput
	for i := range payment.Outputs {
		if payment.Outputs[i].Address == change {
			changeOut = &payment.Outputs[i]
		}
	}
	require.NotNil(t, changeOut)
	require.Greater(t, changeOut.Amount, uint64(0))
}

func TestComposeJointInsufficientFundsForFees(t *testing.T) {
	q, mirror := newTestQueries(t)
	alice, bob, change := caddr(0xaa), caddr(0xbb), caddr(0xcc)
	genesis := chash(1)
	mirror.Utxo.Credit(genesis, 0, 0, business.PaymentOutput{Address: alice, Amount: 100})

	_, err := ComposeJoint(Request{
		PaidAddress:   alice,
		ChangeAddress: change,
		Outputs:       []business.PaymentOutput{{Address: bob, Amount: 100}},
		Amount:        100,
		PubKey:        "pub",
	}, q, fakeSigner{})
	require.Error(t, err)
}

func TestCreateTextJointSigns(t *testing.T) {
	q, _ := newTestQueries(t)
	alice := caddr(0xaa)
	joint, err := CreateTextJoint(alice, "hello", q, fakeSigner{})
	require.NoError(t, err)
	require.Len(t, joint.Unit.Messages, 1)
	require.Equal(t, business.AppText, joint.Unit.Messages[0].App)
	require.NotEmpty(t, joint.Unit.Authors[0].Authentifiers["r"])
}
