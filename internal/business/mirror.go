// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import "github.com/luxfi/sdag/internal/unit"

// Mirror dispatches a unit's messages to the sub-ledger named by each
// message's app. A node keeps two Mirrors: one tentative (mutated as
// units become ready), one stable (mutated only once a unit is final).
type Mirror struct {
	Utxo *UtxoCache
	Text *TextCache
	Feed *TimerCache
}

// NewMirror returns a Mirror with fresh, empty sub-ledgers.
func NewMirror() *Mirror {
	return &Mirror{
		Utxo: NewUtxoCache(),
		Text: NewTextCache(),
		Feed: NewTimerCache(),
	}
}

func (m *Mirror) ledgerFor(app string) (Ledger, error) {
	switch app {
	case AppPayment:
		return m.Utxo, nil
	case AppText:
		return m.Text, nil
	case AppDataFeed:
		return m.Feed, nil
	default:
		return nil, errUnknownApp(app)
	}
}

// ValidateMessageBasic dispatches msg to its app's ledger.
func (m *Mirror) ValidateMessageBasic(msg unit.Message) error {
	l, err := m.ledgerFor(msg.App)
	if err != nil {
		return err
	}
	return l.ValidateMessageBasic(msg)
}

// CheckBusiness dispatches the unit's msgIdx'th message to its app's ledger.
func (m *Mirror) CheckBusiness(u *unit.Unit, msgIdx int) error {
	l, err := m.ledgerFor(u.Messages[msgIdx].App)
	if err != nil {
		return err
	}
	return l.CheckBusiness(u, msgIdx)
}

// ValidateMessage dispatches the unit's msgIdx'th message to its app's ledger.
func (m *Mirror) ValidateMessage(u *unit.Unit, msgIdx int) error {
	l, err := m.ledgerFor(u.Messages[msgIdx].App)
	if err != nil {
		return err
	}
	return l.ValidateMessage(u, msgIdx)
}

// ApplyMessage dispatches the unit's msgIdx'th message to its app's ledger.
func (m *Mirror) ApplyMessage(u *unit.Unit, msgIdx int) error {
	l, err := m.ledgerFor(u.Messages[msgIdx].App)
	if err != nil {
		return err
	}
	return l.ApplyMessage(u, msgIdx)
}

// RevertMessage dispatches the unit's msgIdx'th message to its app's ledger.
func (m *Mirror) RevertMessage(u *unit.Unit, msgIdx int) error {
	l, err := m.ledgerFor(u.Messages[msgIdx].App)
	if err != nil {
		return err
	}
	return l.RevertMessage(u, msgIdx)
}

// ValidateUnit runs ValidateMessageBasic, CheckBusiness and ValidateMessage
// over every message in u, in order, stopping at the first failure.
func (m *Mirror) ValidateUnit(u *unit.Unit) error {
	for i, msg := range u.Messages {
		if err := m.ValidateMessageBasic(msg); err != nil {
			return err
		}
		if err := m.CheckBusiness(u, i); err != nil {
			return err
		}
		if err := m.ValidateMessage(u, i); err != nil {
			return err
		}
	}
	return nil
}

// ApplyUnit applies every message in u. If a message at index i fails,
// messages [0,i) are reverted before the error is returned, leaving the
// mirror unchanged.
func (m *Mirror) ApplyUnit(u *unit.Unit) error {
	for i := range u.Messages {
		if err := m.ApplyMessage(u, i); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = m.RevertMessage(u, j)
			}
			return err
		}
	}
	return nil
}

// RevertUnit reverts every message in u, in reverse order.
func (m *Mirror) RevertUnit(u *unit.Unit) error {
	for i := len(u.Messages) - 1; i >= 0; i-- {
		if err := m.RevertMessage(u, i); err != nil {
			return err
		}
	}
	return nil
}
