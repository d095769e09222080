// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package compose builds a new payment unit from a wallet's intent:
// resolve parents and last ball from the light-query surface, select
// spendable inputs, size the header and payload to derive the
// commission due, attach a change output, and sign.
package compose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/light"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// Signer signs hash on behalf of addr, returning the wire-format
// signature stored under the unit's "r" authentifier.
type Signer interface {
	Sign(addr unit.Address, hash unit.Hash) (string, error)
}

// Resolver answers the header-field and input-selection queries a
// composer needs. *light.Queries satisfies this directly for a node
// composing against its own stable mirror; a wallet composing against a
// remote node instead drives it over the hub's RPC surface.
type Resolver interface {
	LightProps(addr unit.Address) (light.Props, error)
	Inputs(paidAddress unit.Address, totalAmount uint64, isSpendAll bool) ([]light.Input, uint64, error)
}

// Request describes the payment a wallet wants to send.
type Request struct {
	PaidAddress   unit.Address
	ChangeAddress unit.Address
	Outputs       []business.PaymentOutput
	Amount        uint64
	Text          string
	PubKey        string // only used to populate a first-time address definition
}

// ComposeJoint resolves req.PaidAddress's current header fields and
// spendable inputs through q, builds and signs the resulting payment
// unit via signer, and returns it ready to post.
func ComposeJoint(req Request, q Resolver, signer Signer) (*unit.Joint, error) {
	props, err := q.LightProps(req.PaidAddress)
	if err != nil {
		return nil, err
	}

	inputs, total, err := q.Inputs(req.PaidAddress, req.Amount, false)
	if err != nil {
		return nil, err
	}

	u := &unit.Unit{
		ParentUnits:     props.ParentUnits,
		LastBall:        props.LastBall,
		LastBallUnit:    props.LastBallUnit,
		WitnessListUnit: props.WitnessListUnit,
		Timestamp:       time.Now().Unix(),
	}

	if req.Text != "" {
		payload, err := json.Marshal(req.Text)
		if err != nil {
			return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
		}
		u.Messages = append(u.Messages, unit.Message{
			App: business.AppText, PayloadLocation: unit.PayloadInline,
			PayloadHash: unit.HashPayload(payload), Payload: payload,
		})
	}

	var definition json.RawMessage
	if !props.HasDefinition {
		def, err := json.Marshal([]any{"sig", map[string]string{"pubkey": req.PubKey}})
		if err != nil {
			return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
		}
		definition = def
	}
	u.Authors = []unit.Author{{Address: req.PaidAddress, Definition: definition}}

	outputs := append([]business.PaymentOutput(nil), req.Outputs...)
	outputs = append(outputs, business.PaymentOutput{Address: req.ChangeAddress, Amount: 0})
	paymentInputs := make([]business.PaymentInput, len(inputs))
	for i, in := range inputs {
		paymentInputs[i] = in.Input
	}
	payment := business.Payment{Inputs: paymentInputs, Outputs: outputs}

	paymentPayload, err := json.Marshal(payment)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	u.Messages = append(u.Messages, unit.Message{
		App: business.AppPayment, PayloadLocation: unit.PayloadInline,
		PayloadHash: unit.HashPayload(paymentPayload), Payload: paymentPayload,
	})

	headers, err := HeaderSize(u)
	if err != nil {
		return nil, err
	}
	body, err := PayloadSize(u)
	if err != nil {
		return nil, err
	}
	u.HeadersCommission = headers
	u.PayloadCommission = body

	change := int64(total) - int64(req.Amount) - int64(headers) - int64(body)
	if change < 0 {
		return nil, sdagerr.New(sdagerr.TempBad, req.PaidAddress.String(), fmt.Errorf(
			"not enough spendable funds for fees: have %d, need %d", total, uint64(int64(req.Amount)+int64(headers)+int64(body))))
	}
	payment.Outputs[len(payment.Outputs)-1].Amount = uint64(change)
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
	for i, author := range u.Authors {
		sig, err := signer.Sign(author.Address, unitHash)
		if err != nil {
			return nil, err
		}
		u.Authors[i].Authentifiers = map[string]string{"r": sig}
	}

	return &unit.Joint{Unit: u}, nil
}

// CreateTextJoint composes a text-only unit carrying no payment message,
// for posting arbitrary data without moving funds.
func CreateTextJoint(addr unit.Address, text string, q Resolver, signer Signer) (*unit.Joint, error) {
	props, err := q.LightProps(addr)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(text)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	u := &unit.Unit{
		ParentUnits:     props.ParentUnits,
		LastBall:        props.LastBall,
		LastBallUnit:    props.LastBallUnit,
		WitnessListUnit: props.WitnessListUnit,
		Timestamp:       time.Now().Unix(),
		Authors:         []unit.Author{{Address: addr}},
		Messages: []unit.Message{{
			App: business.AppText, PayloadLocation: unit.PayloadInline,
			PayloadHash: unit.HashPayload(payload), Payload: payload,
		}},
	}
	headers, err := HeaderSize(u)
	if err != nil {
		return nil, err
	}
	body, err := PayloadSize(u)
	if err != nil {
		return nil, err
	}
	u.HeadersCommission, u.PayloadCommission = headers, body

	unitHash, err := unit.ComputeUnitHash(u)
	if err != nil {
		return nil, err
	}
	u.UnitHash = unitHash
	sig, err := signer.Sign(addr, unitHash)
	if err != nil {
		return nil, err
	}
	u.Authors[0].Authentifiers = map[string]string{"r": sig}
	return &unit.Joint{Unit: u}, nil
}

// sortOutputs orders outputs by address then amount, the deterministic
// order the stable mirror and every wallet must agree on.
func sortOutputs(outputs []business.PaymentOutput) {
	sort.Slice(outputs, func(i, j int) bool {
		if outputs[i].Address != outputs[j].Address {
			return bytes.Compare(outputs[i].Address[:], outputs[j].Address[:]) < 0
		}
		return outputs[i].Amount < outputs[j].Amount
	})
}

// HeaderSize derives the header commission from the canonical encoding
// of u's header fields (everything but its messages).
func HeaderSize(u *unit.Unit) (uint32, error) {
	clone := *u
	clone.Messages = nil
	b, err := unit.ToSignBytes(&clone)
	if err != nil {
		return 0, err
	}
	return uint32(len(b)), nil
}

// PayloadSize derives the payload commission from the encoded message set.
func PayloadSize(u *unit.Unit) (uint32, error) {
	b, err := json.Marshal(u.Messages)
	if err != nil {
		return 0, err
	}
	return uint32(len(b)), nil
}
