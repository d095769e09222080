// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis builds the bootstrap joint every node seeds its
// caches and mirrors from: the 12-witness list, the founding payment
// splitting total supply across witness UTXOs and the organization
// address, and the self-signatures that make it a valid unit.
package genesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/compose"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

const (
	// WitnessCount is the size of the genesis witness list.
	WitnessCount = 12
	// UtxosPerWitness is how many equal-sized outputs each witness
	// receives, so early witness activity can spend without waiting on
	// a single UTXO's confirmation.
	UtxosPerWitness = 8
	// PerUtxoAmount is the size of each witness output, in micro-units.
	PerUtxoAmount = 1_000_000
	// TotalSupply is the fixed total genesis issuance, in micro-units.
	// The organization address receives whatever remains after the
	// witness allocation and the unit's own header/payload commission.
	TotalSupply = 499_999_999_000_000
)

// Signer signs the genesis unit on behalf of each witness author and
// supplies the public key their first-use address definition commits to.
type Signer interface {
	Sign(addr unit.Address, hash unit.Hash) (string, error)
	PublicKey(addr unit.Address) (string, error)
}

// Build constructs and signs the genesis joint for witnesses (exactly
// WitnessCount addresses) and org (the organization address receiving
// the header commission and remaining supply). message, if non-empty,
// is posted as a companion text message.
func Build(witnesses []unit.Address, org unit.Address, message string, signer Signer) (*unit.Joint, error) {
	if len(witnesses) != WitnessCount {
		return nil, fmt.Errorf("genesis requires exactly %d witnesses, got %d", WitnessCount, len(witnesses))
	}
	sorted := append([]unit.Address(nil), witnesses...)
	sortAddresses(sorted)

	witnessPayload, err := json.Marshal(sorted)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}

	messages := []unit.Message{{
		App: witness.MessageApp, PayloadLocation: unit.PayloadInline,
		PayloadHash: unit.HashPayload(witnessPayload), Payload: witnessPayload,
	}}
	if message != "" {
		textPayload, err := json.Marshal(message)
		if err != nil {
			return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
		}
		messages = append(messages, unit.Message{
			App: business.AppText, PayloadLocation: unit.PayloadInline,
			PayloadHash: unit.HashPayload(textPayload), Payload: textPayload,
		})
	}

	var outputs []business.PaymentOutput
	for _, w := range sorted {
		for i := 0; i < UtxosPerWitness; i++ {
			outputs = append(outputs, business.PaymentOutput{Address: w, Amount: PerUtxoAmount})
		}
	}
	outputs = append(outputs, business.PaymentOutput{Address: org, Amount: 0})
	payment := business.Payment{Outputs: outputs}

	paymentPayload, err := json.Marshal(payment)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	messages = append(messages, unit.Message{
		App: business.AppPayment, PayloadLocation: unit.PayloadInline,
		PayloadHash: unit.HashPayload(paymentPayload), Payload: paymentPayload,
	})

	authors := make([]unit.Author, len(sorted))
	for i, w := range sorted {
		pubkey, err := signer.PublicKey(w)
		if err != nil {
			return nil, err
		}
		definition, err := json.Marshal([]any{"sig", map[string]string{"pubkey": pubkey}})
		if err != nil {
			return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
		}
		authors[i] = unit.Author{Address: w, Definition: definition}
	}

	u := &unit.Unit{
		Messages:                          messages,
		Authors:                           authors,
		EarnedHeadersCommissionRecipients: []unit.CommissionRecipient{{Address: org, Share: 100}},
		Timestamp:                         time.Now().Unix(),
	}

	headers, err := compose.HeaderSize(u)
	if err != nil {
		return nil, err
	}
	body, err := compose.PayloadSize(u)
	if err != nil {
		return nil, err
	}
	u.HeadersCommission = headers
	u.PayloadCommission = body

	witnessAllocation := uint64(WitnessCount * UtxosPerWitness * PerUtxoAmount)
	fees := uint64(headers) + uint64(body)
	if TotalSupply < witnessAllocation+fees {
		return nil, fmt.Errorf("total supply %d too small for witness allocation %d plus fees %d", TotalSupply, witnessAllocation, fees)
	}
	payment.Outputs[len(payment.Outputs)-1].Amount = TotalSupply - witnessAllocation - fees
	sortOutputs(payment.Outputs)

	paymentPayload, err = json.Marshal(payment)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	lastMsg := len(u.Messages) - 1
	u.Messages[lastMsg].Payload = paymentPayload
	u.Messages[lastMsg].PayloadHash = unit.HashPayload(paymentPayload)

	unitHash, err := unit.ComputeUnitHash(u)
	if err != nil {
		return nil, err
	}
	u.UnitHash = unitHash
	u.WitnessListUnit = unitHash // the genesis unit names itself as its own witness list

	for i, author := range u.Authors {
		sig, err := signer.Sign(author.Address, unitHash)
		if err != nil {
			return nil, err
		}
		u.Authors[i].Authentifiers = map[string]string{"r": sig}
	}

	ball, err := unit.ComputeBallHash(unitHash, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return &unit.Joint{Unit: u, Ball: &ball}, nil
}

func sortAddresses(addrs []unit.Address) {
	sort.Slice(addrs, func(i, j int) bool { return bytes.Compare(addrs[i][:], addrs[j][:]) < 0 })
}

func sortOutputs(outputs []business.PaymentOutput) {
	sort.Slice(outputs, func(i, j int) bool {
		if outputs[i].Address != outputs[j].Address {
			return bytes.Compare(outputs[i].Address[:], outputs[j].Address[:]) < 0
		}
		return outputs[i].Amount < outputs[j].Amount
	})
}
