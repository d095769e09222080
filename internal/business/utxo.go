// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"encoding/json"
	"fmt"
	"sync"

	safemath "github.com/luxfi/math"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

const AppPayment = "payment"

// PaymentInput references a prior unit's output by (unit, message,
// output) position.
type PaymentInput struct {
	Unit         unit.Hash `json:"unit"`
	MessageIndex int       `json:"message_index"`
	OutputIndex  int       `json:"output_index"`
}

// PaymentOutput credits Amount (micro-units) to Address.
type PaymentOutput struct {
	Address unit.Address `json:"address"`
	Amount  uint64       `json:"amount"`
}

// Payment is the "payment" message payload: spend Inputs, create Outputs.
type Payment struct {
	Inputs  []PaymentInput  `json:"inputs"`
	Outputs []PaymentOutput `json:"outputs"`
}

type utxoKey struct {
	unit  unit.Hash
	msg   int
	index int
}

// HistoryEntry is one payment touching an address: Delta is negative for
// the spending unit, positive for each output's receiving unit.
type HistoryEntry struct {
	Unit    unit.Hash
	Address unit.Address
	Delta   int64
}

// UtxoCache is the payment sub-ledger: an unspent-output set keyed by
// (unit, message_index, output_index).
type UtxoCache struct {
	mu      sync.RWMutex
	outputs map[utxoKey]PaymentOutput
	spent   map[utxoKey]struct{}
	history []HistoryEntry
}

// NewUtxoCache returns an empty payment ledger.
func NewUtxoCache() *UtxoCache {
	return &UtxoCache{
		outputs: make(map[utxoKey]PaymentOutput),
		spent:   make(map[utxoKey]struct{}),
	}
}

// History returns addr's last num payments touching it, newest first.
func (c *UtxoCache) History(addr unit.Address, num int) []HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []HistoryEntry
	for i := len(c.history) - 1; i >= 0 && len(out) < num; i-- {
		if c.history[i].Address == addr {
			out = append(out, c.history[i])
		}
	}
	return out
}

// Credit seeds an output directly, used by genesis construction to fund
// the initial witness UTXOs without going through message application.
func (c *UtxoCache) Credit(u unit.Hash, msgIdx, outIdx int, out PaymentOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs[utxoKey{u, msgIdx, outIdx}] = out
}

// UnspentOutput is one of addr's spendable outputs, as returned by
// UnspentOutputs for light-client input selection.
type UnspentOutput struct {
	Input  PaymentInput
	Amount uint64
}

// UnspentOutputs returns every unspent output credited to addr, in no
// particular order; callers needing a deterministic order (e.g. greedy
// input selection) must sort the result themselves.
func (c *UtxoCache) UnspentOutputs(addr unit.Address) []UnspentOutput {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []UnspentOutput
	for k, o := range c.outputs {
		if o.Address != addr {
			continue
		}
		if _, spent := c.spent[k]; spent {
			continue
		}
		out = append(out, UnspentOutput{
			Input:  PaymentInput{Unit: k.unit, MessageIndex: k.msg, OutputIndex: k.index},
			Amount: o.Amount,
		})
	}
	return out
}

// Balance sums every unspent output credited to addr.
func (c *UtxoCache) Balance(addr unit.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total uint64
	for k, out := range c.outputs {
		if out.Address != addr {
			continue
		}
		if _, spent := c.spent[k]; spent {
			continue
		}
		total += out.Amount
	}
	return total
}

func decodePayment(msg unit.Message) (Payment, error) {
	var p Payment
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return Payment{}, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	return p, nil
}

func (c *UtxoCache) ValidateMessageBasic(msg unit.Message) error {
	p, err := decodePayment(msg)
	if err != nil {
		return err
	}
	if len(p.Outputs) == 0 {
		return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("payment has no outputs"))
	}
	seen := make(map[utxoKey]struct{}, len(p.Inputs))
	for _, in := range p.Inputs {
		k := utxoKey{in.Unit, in.MessageIndex, in.OutputIndex}
		if _, dup := seen[k]; dup {
			return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("input referenced twice"))
		}
		seen[k] = struct{}{}
	}
	for _, out := range p.Outputs {
		if out.Amount == 0 {
			return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("zero-amount output"))
		}
	}
	return nil
}

func (c *UtxoCache) CheckBusiness(u *unit.Unit, msgIdx int) error {
	p, err := decodePayment(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	for _, in := range p.Inputs {
		if in.Unit == u.UnitHash {
			return sdagerr.New(sdagerr.MalformedUnit, u.UnitHash.String(), fmt.Errorf("unit spends its own not-yet-sealed output"))
		}
	}
	return nil
}

func (c *UtxoCache) ValidateMessage(u *unit.Unit, msgIdx int) error {
	p, err := decodePayment(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	authors := make(map[unit.Address]struct{}, len(u.Authors))
	for _, a := range u.Authors {
		authors[a.Address] = struct{}{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var inTotal, outTotal uint64
	for _, in := range p.Inputs {
		k := utxoKey{in.Unit, in.MessageIndex, in.OutputIndex}
		out, ok := c.outputs[k]
		if !ok {
			return sdagerr.New(sdagerr.TempBad, u.UnitHash.String(), fmt.Errorf("input %+v not found", k))
		}
		if _, spent := c.spent[k]; spent {
			return sdagerr.New(sdagerr.TempBad, u.UnitHash.String(), fmt.Errorf("input %+v already spent", k))
		}
		if _, owned := authors[out.Address]; !owned {
			return sdagerr.New(sdagerr.TempBad, u.UnitHash.String(), fmt.Errorf("input %+v not owned by an author", k))
		}
		if inTotal, err = safemath.Add64(inTotal, out.Amount); err != nil {
			return sdagerr.New(sdagerr.TempBad, u.UnitHash.String(), fmt.Errorf("input total overflow: %w", err))
		}
	}
	for _, out := range p.Outputs {
		if outTotal, err = safemath.Add64(outTotal, out.Amount); err != nil {
			return sdagerr.New(sdagerr.MalformedUnit, u.UnitHash.String(), fmt.Errorf("output total overflow: %w", err))
		}
	}
	if outTotal > inTotal {
		return sdagerr.New(sdagerr.TempBad, u.UnitHash.String(), fmt.Errorf("outputs %d exceed inputs %d", outTotal, inTotal))
	}
	return nil
}

func (c *UtxoCache) ApplyMessage(u *unit.Unit, msgIdx int) error {
	p, err := decodePayment(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, in := range p.Inputs {
		k := utxoKey{in.Unit, in.MessageIndex, in.OutputIndex}
		c.spent[k] = struct{}{}
		if spent, ok := c.outputs[k]; ok {
			c.history = append(c.history, HistoryEntry{Unit: u.UnitHash, Address: spent.Address, Delta: -int64(spent.Amount)})
		}
	}
	for i, out := range p.Outputs {
		c.outputs[utxoKey{u.UnitHash, msgIdx, i}] = out
		c.history = append(c.history, HistoryEntry{Unit: u.UnitHash, Address: out.Address, Delta: int64(out.Amount)})
	}
	return nil
}

func (c *UtxoCache) RevertMessage(u *unit.Unit, msgIdx int) error {
	p, err := decodePayment(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, in := range p.Inputs {
		delete(c.spent, utxoKey{in.Unit, in.MessageIndex, in.OutputIndex})
	}
	for i := range p.Outputs {
		delete(c.outputs, utxoKey{u.UnitHash, msgIdx, i})
	}
	kept := c.history[:0]
	for _, h := range c.history {
		if h.Unit != u.UnitHash {
			kept = append(kept, h)
		}
	}
	c.history = kept
	return nil
}
