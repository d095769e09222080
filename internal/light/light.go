// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package light answers the read-only queries a light wallet needs to
// compose and track payments without holding the full DAG: unspent
// output selection, balance, transaction history, the fields needed to
// build a new unit's header, and the current witness list.
package light

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

// Graph is the read surface Queries needs from the joint cache.
type Graph interface {
	GetFreeJoints() []unit.Hash
	GetJoint(h unit.Hash) (*unit.Joint, error)
}

// Props is the light/light_props response: the fields a light client
// needs to build the header of its next unit.
type Props struct {
	ParentUnits     []unit.Hash  `json:"parent_units"`
	LastBall        unit.Hash    `json:"last_ball"`
	LastBallUnit    unit.Hash    `json:"last_ball_unit"`
	WitnessListUnit unit.Hash    `json:"witness_list_unit"`
	HasDefinition   bool         `json:"has_definition"`
	Address         unit.Address `json:"address"`
}

// Queries answers light-client requests against the stable business
// mirror and the durable store; it never touches the tentative mirror,
// since a light client must only ever see finalized state.
type Queries struct {
	graph           Graph
	store           store.Store
	stable          *business.Mirror
	witnesses       *witness.Resolver
	witnessListUnit unit.Hash
	maxParents      int
}

// New returns a Queries answering against stable (the Engine's stable
// mirror), reading free-joint candidates from g and ball/mci indexes
// from s. witnessListUnit names the unit whose witness_list message
// the node currently follows.
func New(g Graph, s store.Store, stable *business.Mirror, w *witness.Resolver, witnessListUnit unit.Hash, maxParents int) *Queries {
	return &Queries{
		graph:           g,
		store:           s,
		stable:          stable,
		witnesses:       w,
		witnessListUnit: witnessListUnit,
		maxParents:      maxParents,
	}
}

// GetBalance returns addr's stable balance in micro-units.
func (q *Queries) GetBalance(addr unit.Address) uint64 {
	return q.stable.Utxo.Balance(addr)
}

// GetHistory returns addr's last num stable payments, newest first.
func (q *Queries) GetHistory(addr unit.Address, num int) []business.HistoryEntry {
	return q.stable.Utxo.History(addr, num)
}

// GetWitnesses resolves the current witness list.
func (q *Queries) GetWitnesses() ([]unit.Address, error) {
	return q.witnesses.Witnesses(q.witnessListUnit)
}

// Input is one selected unspent output, as returned by Inputs.
type Input = business.UnspentOutput

// Inputs selects unspent outputs owned by paidAddress summing to at
// least totalAmount (or, if isSpendAll is set, every unspent output
// regardless of totalAmount), for composing a new payment. Selection is
// largest-output-first, breaking ties by unit hash for determinism.
func (q *Queries) Inputs(paidAddress unit.Address, totalAmount uint64, isSpendAll bool) ([]Input, uint64, error) {
	outs := q.stable.Utxo.UnspentOutputs(paidAddress)
	sort.Slice(outs, func(i, j int) bool {
		if outs[i].Amount != outs[j].Amount {
			return outs[i].Amount > outs[j].Amount
		}
		return bytes.Compare(outs[i].Input.Unit[:], outs[j].Input.Unit[:]) < 0
	})

	if isSpendAll {
		var total uint64
		for _, o := range outs {
			total += o.Amount
		}
		return outs, total, nil
	}

	var (
		selected []Input
		total    uint64
	)
	for _, o := range outs {
		selected = append(selected, o)
		total += o.Amount
		if total >= totalAmount {
			return selected, total, nil
		}
	}
	return nil, 0, sdagerr.New(sdagerr.TempBad, paidAddress.String(), fmt.Errorf("insufficient stable balance: have %d, need %d", total, totalAmount))
}

// LightProps returns the header fields and has_definition flag a light
// client needs to compose its next unit from address.
func (q *Queries) LightProps(address unit.Address) (Props, error) {
	parents := append([]unit.Hash(nil), q.graph.GetFreeJoints()...)
	sort.Slice(parents, func(i, j int) bool { return bytes.Compare(parents[i][:], parents[j][:]) < 0 })
	if len(parents) > q.maxParents {
		parents = parents[:q.maxParents]
	}

	props := Props{
		ParentUnits:     parents,
		WitnessListUnit: q.witnessListUnit,
		Address:         address,
		HasDefinition:   len(q.stable.Utxo.UnspentOutputs(address)) > 0 || len(q.stable.Utxo.History(address, 1)) > 0,
	}

	lastBallUnit, ok, err := q.lastStableUnit()
	if err != nil {
		return Props{}, err
	}
	if !ok {
		return props, nil
	}
	props.LastBallUnit = lastBallUnit

	lastBall, ok, err := q.store.BallByUnit(lastBallUnit)
	if err != nil {
		return Props{}, err
	}
	if ok {
		props.LastBall = lastBall
	}
	return props, nil
}

// lastStableUnit returns the unit on the main chain at the highest
// durably-committed mci, the one whose last ball a new unit should cite.
func (q *Queries) lastStableUnit() (unit.Hash, bool, error) {
	mci, err := q.store.LastStableMci()
	if err != nil {
		return unit.Hash{}, false, err
	}
	if mci < 0 {
		return unit.Hash{}, false, nil
	}
	units, err := q.store.UnitsByMci(mci)
	if err != nil {
		return unit.Hash{}, false, err
	}
	for _, h := range units {
		rec, ok, err := q.store.GetProperties(h)
		if err != nil {
			return unit.Hash{}, false, err
		}
		if ok && rec.MCI == rec.LIMCI {
			return h, true, nil
		}
	}
	return unit.Hash{}, false, nil
}
