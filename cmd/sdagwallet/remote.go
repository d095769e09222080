// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/luxfi/sdag/internal/hub"
	"github.com/luxfi/sdag/internal/light"
	"github.com/luxfi/sdag/internal/unit"
)

// remoteResolver satisfies compose.Resolver against a node reached over
// the hub's websocket RPC surface, so a wallet can compose a payment
// without holding any DAG state of its own.
type remoteResolver struct {
	rpc *client
}

type lightInputsParams struct {
	PaidAddress unit.Address `json:"paid_address"`
	TotalAmount uint64       `json:"total_amount"`
	IsSpendAll  bool         `json:"is_spend_all"`
}

type inputsResult struct {
	Inputs []light.Input `json:"inputs"`
	Total  uint64        `json:"total"`
}

type addressParams struct {
	Address unit.Address `json:"address"`
}

func (r remoteResolver) LightProps(addr unit.Address) (light.Props, error) {
	var props light.Props
	err := r.rpc.Call(hub.MethodLightProps, addressParams{Address: addr}, &props)
	return props, err
}

func (r remoteResolver) Inputs(paidAddress unit.Address, totalAmount uint64, isSpendAll bool) ([]light.Input, uint64, error) {
	var result inputsResult
	err := r.rpc.Call(hub.MethodLightInputs, lightInputsParams{
		PaidAddress: paidAddress,
		TotalAmount: totalAmount,
		IsSpendAll:  isSpendAll,
	}, &result)
	if err != nil {
		return nil, 0, err
	}
	return result.Inputs, result.Total, nil
}

func getBalance(rpc *client, addr unit.Address) (uint64, error) {
	var balance uint64
	err := rpc.Call(hub.MethodGetBalance, addressParams{Address: addr}, &balance)
	return balance, err
}

func getHistory(rpc *client, addr unit.Address, num int) ([]historyEntry, error) {
	var history []historyEntry
	params := struct {
		Address unit.Address `json:"address"`
		Num     int          `json:"num"`
	}{Address: addr, Num: num}
	err := rpc.Call(hub.MethodGetHistory, params, &history)
	return history, err
}

// historyEntry mirrors business.HistoryEntry's JSON shape for decoding
// the get_history response without importing business just for this.
type historyEntry struct {
	Unit    unit.Hash    `json:"Unit"`
	Address unit.Address `json:"Address"`
	Delta   int64        `json:"Delta"`
}

func postJoint(rpc *client, j any) (string, error) {
	var result struct {
		Unit string `json:"unit"`
	}
	err := rpc.Call(hub.MethodPostJoint, j, &result)
	return result.Unit, err
}
