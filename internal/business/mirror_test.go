// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/unit"
)

func addrB(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func hashB(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func paymentUnit(h unit.Hash, author unit.Address, p Payment) *unit.Unit {
	payload, _ := json.Marshal(p)
	return &unit.Unit{
		UnitHash: h,
		Authors:  []unit.Author{{Address: author}},
		Messages: []unit.Message{{App: AppPayment, PayloadLocation: unit.PayloadInline, Payload: payload}},
	}
}

func TestMirrorDispatchesByApp(t *testing.T) {
	m := NewMirror()
	genesis := hashB(1)
	alice := addrB(0xaa)
	m.Utxo.Credit(genesis, 0, 0, PaymentOutput{Address: alice, Amount: 100})

	u := paymentUnit(hashB(2), alice, Payment{
		Inputs:  []PaymentInput{{Unit: genesis, MessageIndex: 0, OutputIndex: 0}},
		Outputs: []PaymentOutput{{Address: addrB(0xbb), Amount: 40}},
	})

	require.NoError(t, m.ValidateUnit(u))
	require.NoError(t, m.ApplyUnit(u))
	require.EqualValues(t, 0, m.Utxo.Balance(alice))
	require.EqualValues(t, 40, m.Utxo.Balance(addrB(0xbb)))
}

func TestMirrorUnknownAppFailsTheUnit(t *testing.T) {
	m := NewMirror()
	u := &unit.Unit{
		UnitHash: hashB(1),
		Authors:  []unit.Author{{Address: addrB(1)}},
		Messages: []unit.Message{{App: "no_such_app", PayloadLocation: unit.PayloadInline, Payload: []byte(`{}`)}},
	}
	require.Error(t, m.ValidateUnit(u))
}

func TestApplyUnitRevertsEarlierMessagesOnFailure(t *testing.T) {
	m := NewMirror()
	genesis := hashB(1)
	alice := addrB(0xaa)
	m.Utxo.Credit(genesis, 0, 0, PaymentOutput{Address: alice, Amount: 100})

	u := paymentUnit(hashB(2), alice, Payment{
		Inputs:  []PaymentInput{{Unit: genesis, MessageIndex: 0, OutputIndex: 0}},
		Outputs: []PaymentOutput{{Address: addrB(0xbb), Amount: 40}},
	})
	// A second, malformed payment message: its ApplyMessage fails to
	// decode, so ApplyUnit must roll back the first message's mutation.
	u.Messages = append(u.Messages, unit.Message{App: AppPayment, PayloadLocation: unit.PayloadInline, Payload: []byte(`not-json`)})

	err := m.ApplyUnit(u)
	require.Error(t, err)
	// The payment message's mutation must have been rolled back.
	require.EqualValues(t, 100, m.Utxo.Balance(alice))
	require.EqualValues(t, 0, m.Utxo.Balance(addrB(0xbb)))
}
