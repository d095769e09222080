// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnspentOutputsExcludesSpent(t *testing.T) {
	c := NewUtxoCache()
	alice := addrB(0xaa)
	genesis := hashB(1)
	c.Credit(genesis, 0, 0, PaymentOutput{Address: alice, Amount: 10})
	c.Credit(genesis, 0, 1, PaymentOutput{Address: alice, Amount: 20})

	outs := c.UnspentOutputs(alice)
	require.Len(t, outs, 2)

	u := paymentUnit(hashB(2), alice, Payment{
		Inputs:  []PaymentInput{{Unit: genesis, MessageIndex: 0, OutputIndex: 0}},
		Outputs: []PaymentOutput{{Address: addrB(0xbb), Amount: 10}},
	})
	require.NoError(t, c.ApplyMessage(u, 0))

	outs = c.UnspentOutputs(alice)
	require.Len(t, outs, 1)
	require.EqualValues(t, 20, outs[0].Amount)
}

func TestHistoryTracksSpendsAndReceipts(t *testing.T) {
	c := NewUtxoCache()
	alice, bob := addrB(0xaa), addrB(0xbb)
	genesis := hashB(1)
	c.Credit(genesis, 0, 0, PaymentOutput{Address: alice, Amount: 100})

	spend := hashB(2)
	u := paymentUnit(spend, alice, Payment{
		Inputs:  []PaymentInput{{Unit: genesis, MessageIndex: 0, OutputIndex: 0}},
		Outputs: []PaymentOutput{{Address: bob, Amount: 40}},
	})
	require.NoError(t, c.ApplyMessage(u, 0))

	aliceHist := c.History(alice, 10)
	require.Len(t, aliceHist, 1)
	require.Equal(t, int64(-100), aliceHist[0].Delta)

	bobHist := c.History(bob, 10)
	require.Len(t, bobHist, 1)
	require.Equal(t, int64(40), bobHist[0].Delta)

	require.NoError(t, c.RevertMessage(u, 0))
	require.Empty(t, c.History(alice, 10))
	require.Empty(t, c.History(bob, 10))
}
