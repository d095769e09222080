// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/jointcache"
	"github.com/luxfi/sdag/internal/light"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

func hh(b byte) unit.Hash {
	var h unit.Hash
	h[0] = b
	return h
}

func haddr(b byte) unit.Address {
	var a unit.Address
	a[0] = b
	return a
}

func newTestServer(t *testing.T) (*Server, *jointcache.Cache, *business.Mirror) {
	t.Helper()
	cache := jointcache.New(store.NewMem(), log.NewNoOp(), metrics.NewNoOp())
	mem := store.NewMem()
	mirror := business.NewMirror()
	q := light.New(cache, mem, mirror, witness.NewResolver(cache), hh(0xff), 16)
	srv := New(cache, q, mirror, nil, log.NewNoOp(), metrics.NewNoOp(), 16, nil)
	return srv, cache, mirror
}

func TestHandleGetBalanceRoundTrips(t *testing.T) {
	srv, _, mirror := newTestServer(t)
	alice := haddr(0xaa)
	mirror.Utxo.Credit(hh(1), 0, 0, business.PaymentOutput{Address: alice, Amount: 42})

	params, err := json.Marshal(addressParams{Address: alice})
	require.NoError(t, err)
	resp := srv.Handle(context.Background(), Request{ID: json.RawMessage("1"), Method: MethodGetBalance, Params: params})
	require.Empty(t, resp.Error)
	require.EqualValues(t, 42, resp.Result)
}

func TestHandleUnknownMethodErrors(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp := srv.Handle(context.Background(), Request{Method: "nope"})
	require.NotEmpty(t, resp.Error)
}

func TestHandlePostJointAdmitsWellFormedUnit(t *testing.T) {
	srv, cache, _ := newTestServer(t)
	genesis := &unit.Joint{Unit: &unit.Unit{
		UnitHash: hh(1),
		Authors:  []unit.Author{{Address: haddr(0xaa)}},
		Messages: []unit.Message{{App: "text", PayloadLocation: unit.PayloadInline, PayloadHash: unit.HashPayload([]byte(`"hi"`)), Payload: []byte(`"hi"`)}},
	}}
	payload, err := json.Marshal(genesis)
	require.NoError(t, err)

	resp := srv.Handle(context.Background(), Request{Method: MethodPostJoint, Params: payload})
	require.Empty(t, resp.Error)

	stored, err := cache.GetJoint(hh(1))
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestHandlePostJointRejectsMalformedUnit(t *testing.T) {
	srv, _, _ := newTestServer(t)
	badJoint := &unit.Joint{Unit: &unit.Unit{UnitHash: hh(1)}} // no authors
	payload, err := json.Marshal(badJoint)
	require.NoError(t, err)

	resp := srv.Handle(context.Background(), Request{Method: MethodPostJoint, Params: payload})
	require.NotEmpty(t, resp.Error)
}

func TestHandleHeartbeatAndVersion(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp := srv.Handle(context.Background(), Request{Method: MethodHeartbeat})
	require.Empty(t, resp.Error)
	resp = srv.Handle(context.Background(), Request{Method: MethodVersion})
	require.Empty(t, resp.Error)
}
