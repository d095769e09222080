// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finalization

import (
	"encoding/json"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// AppContentHash is the message app a NoCommission unit's messages are
// replaced with: the unit stays in the DAG (its hash, parents and
// signatures are unchanged) but its payload is reduced to a commitment.
const AppContentHash = "content_hash"

// ContentHashPayload is the stripped-message payload.
type ContentHashPayload struct {
	Hash unit.Hash `json:"hash"`
}

// stripContent returns a copy of u whose messages are replaced by a
// single content_hash commitment to the original message set. u's own
// hash is unaffected: finalization only rewrites the durable copy, never
// the canonical unit identity.
func stripContent(u *unit.Unit) (*unit.Unit, error) {
	encoded, err := json.Marshal(u.Messages)
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, u.UnitHash.String(), err)
	}
	contentHash := unit.HashPayload(encoded)

	payload, err := json.Marshal(ContentHashPayload{Hash: contentHash})
	if err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, u.UnitHash.String(), err)
	}

	clone := *u
	clone.Messages = []unit.Message{{
		App:             AppContentHash,
		PayloadLocation: unit.PayloadInline,
		PayloadHash:     unit.HashPayload(payload),
		Payload:         payload,
	}}
	return &clone, nil
}
