// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package unit implements the immutable data model: Unit, Ball, Joint,
// and their deterministic hashes.
package unit

import (
	"encoding/json"
	"sort"

	"github.com/luxfi/ids"
)

// Hash identifies a unit (self-hash) or a ball. Both are Base64-encoded
// fixed-width hashes at the wire boundary; in memory they are plain
// 32-byte ids.ID values so they compare and hash cheaply as map keys.
type Hash = ids.ID

// Address is a checksummed hash of an author's definition.
// Unlike Hash, addresses are not consensus identities — they are the
// domain's account namespace — so they get their own 20-byte type rather
// than reusing ids.ID.
type Address [20]byte

func (a Address) String() string { return ids.ShortID(a).String() }

// ParseAddress parses the wire form Address.String produces.
func ParseAddress(s string) (Address, error) {
	short, err := ids.ShortIDFromString(s)
	if err != nil {
		return Address{}, err
	}
	return Address(short), nil
}

// PayloadLocation is where a message's payload lives.
type PayloadLocation string

const (
	PayloadInline PayloadLocation = "inline"
	PayloadURI PayloadLocation = "uri"
	PayloadNone PayloadLocation = "none"
)

// Message is one application-tagged entry in a unit.
type Message struct {
	App string `json:"app"`
	PayloadLocation PayloadLocation `json:"payload_location"`
	PayloadHash Hash `json:"payload_hash"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Author is one signer of a unit.
type Author struct {
	Address Address `json:"address"`
	Authentifiers map[string]string `json:"authentifiers"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

// CommissionRecipient is one entry of earned_headers_commission_recipients.
type CommissionRecipient struct {
	Address Address `json:"address"`
	Share uint32 `json:"earned_headers_commission_share"` // percent, summing to 100
}

// Unit is the immutable signed payload. UnitHash is populated from
// ComputeUnitHash and is excluded from the to-sign hash.
type Unit struct {
	UnitHash Hash `json:"unit"`
	ParentUnits []Hash `json:"parent_units"`
	LastBall Hash `json:"last_ball"`
	LastBallUnit Hash `json:"last_ball_unit"`
	WitnessListUnit Hash `json:"witness_list_unit"`
	Authors []Author `json:"authors"`
	Messages []Message `json:"messages"`
	EarnedHeadersCommissionRecipients []CommissionRecipient `json:"earned_headers_commission_recipients,omitempty"`
	HeadersCommission uint32 `json:"headers_commission"`
	PayloadCommission uint32 `json:"payload_commission"`
	Timestamp int64 `json:"timestamp"`
}

// Ball seals a stable unit.
type Ball struct {
	Unit Hash `json:"unit"`
	ParentBalls []Hash `json:"parent_balls"`
	SkiplistBalls []Hash `json:"skiplist_balls"`
	Bad bool `json:"is_bad,omitempty"`
}

// Joint is the transport envelope.
type Joint struct {
	Unit *Unit `json:"unit"`
	Ball *Hash `json:"ball,omitempty"`
	SkiplistUnits []Hash `json:"skiplist_units,omitempty"`
	Unsigned bool `json:"unsigned,omitempty"`
}

// IsGenesis reports whether u has no parents.
func (u *Unit) IsGenesis() bool { return len(u.ParentUnits) == 0 }

// ValidateStructure checks the format invariants that must hold regardless
// of DAG state.
func (u *Unit) ValidateStructure(maxParents int) error {
	if !u.IsGenesis() {
		if len(u.ParentUnits) == 0 {
			return errMalformed("unit has no parents and is not genesis")
		}
		if len(u.ParentUnits) > maxParents {
			return errMalformed("too many parents")
		}
	}
	if len(u.Authors) == 0 {
		return errMalformed("unit has no authors")
	}
	if len(u.Authors) > 1 {
		if len(u.EarnedHeadersCommissionRecipients) == 0 {
			return errMalformed("multi-author unit missing commission recipients")
		}
		if err := validateCommissionRecipients(u.EarnedHeadersCommissionRecipients); err != nil {
			return err
		}
	}
	for i, m := range u.Messages {
		if m.App == "" {
			return errMalformedf("message %d missing app", i)
		}
		switch m.PayloadLocation {
		case PayloadInline, PayloadURI, PayloadNone:
		default:
			return errMalformedf("message %d has invalid payload_location", i)
		}
		if m.PayloadLocation == PayloadInline && len(m.Payload) > 0 {
			h := HashPayload(m.Payload)
			if h != m.PayloadHash {
				return errMalformedf("message %d payload_hash mismatch", i)
			}
		}
	}
	return nil
}

// validateCommissionRecipients enforces strict ascending address order and
// shares summing to exactly 100.
func validateCommissionRecipients(recipients []CommissionRecipient) error {
	var sum uint32
	for i, r := range recipients {
		sum += r.Share
		if i > 0 {
			prev := recipients[i-1].Address
			if compareAddress(prev, r.Address) >= 0 {
				return errMalformed("commission recipients not strictly ascending")
			}
		}
	}
	if sum != 100 {
		return errMalformed("commission shares do not sum to 100")
	}
	return nil
}

func compareAddress(a, b Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// sortedHashes returns a sorted copy of hs, used when computing ball
// hashes and skiplists.
func sortedHashes(hs []Hash) []Hash {
	out := append([]Hash(nil), hs...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
