// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package witness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/unit"
)

type fixtureGraph struct {
	joints map[unit.Hash]*unit.Joint
}

func (f fixtureGraph) GetJoint(h unit.Hash) (*unit.Joint, error) { return f.joints[h], nil }

func TestResolverReadsWitnessListMessage(t *testing.T) {
	var h unit.Hash
	h[0] = 0x01

	var a1, a2 unit.Address
	a1[0], a2[0] = 0x01, 0x02
	payload, err := json.Marshal([]unit.Address{a1, a2})
	require.NoError(t, err)

	g := fixtureGraph{joints: map[unit.Hash]*unit.Joint{
		h: {Unit: &unit.Unit{
			UnitHash: h,
			Messages: []unit.Message{{App: MessageApp, PayloadLocation: unit.PayloadInline, Payload: payload}},
		}},
	}}

	r := NewResolver(g)
	addrs, err := r.Witnesses(h)
	require.NoError(t, err)
	require.Equal(t, []unit.Address{a1, a2}, addrs)

	// second call hits the cache
	addrs2, err := r.Witnesses(h)
	require.NoError(t, err)
	require.Equal(t, addrs, addrs2)
}

func TestResolverRejectsMissingWitnessListMessage(t *testing.T) {
	var h unit.Hash
	h[0] = 0x02
	g := fixtureGraph{joints: map[unit.Hash]*unit.Joint{
		h: {Unit: &unit.Unit{UnitHash: h}},
	}}
	r := NewResolver(g)
	_, err := r.Witnesses(h)
	require.Error(t, err)
}
