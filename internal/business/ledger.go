// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package business implements the two identically-shaped state mirrors —
// tentative and stable — each holding the payment, text and data-feed
// sub-ledgers a unit's messages can mutate, dispatched by message.app.
package business

import (
	"fmt"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// Ledger is the contract every sub-ledger (payment/text/data_feed)
// implements. A Mirror dispatches to one Ledger per message.app.
type Ledger interface {
	// ValidateMessageBasic checks stateless format, called pre-admission.
	ValidateMessageBasic(msg unit.Message) error
	// CheckBusiness checks the message against the unit's own context
	// (e.g. inputs referencing units that precede it).
	CheckBusiness(u *unit.Unit, msgIdx int) error
	// ValidateMessage checks the message against this mirror's state.
	ValidateMessage(u *unit.Unit, msgIdx int) error
	// ApplyMessage and RevertMessage mutate this mirror's state.
	ApplyMessage(u *unit.Unit, msgIdx int) error
	RevertMessage(u *unit.Unit, msgIdx int) error
}

func errUnknownApp(app string) error {
	return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("unknown message app %q", app))
}
