// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

const AppText = "text"

const maxTextBytes = 4096

// TextCache is the logged-text sub-ledger: an append-only, per-unit log
// with no spendable state, so apply/revert are pure bookkeeping.
type TextCache struct {
	mu  sync.RWMutex
	log map[unit.Hash]map[int]string
}

// NewTextCache returns an empty text ledger.
func NewTextCache() *TextCache {
	return &TextCache{log: make(map[unit.Hash]map[int]string)}
}

// Get returns the text logged for (u, msgIdx), if any.
func (c *TextCache) Get(u unit.Hash, msgIdx int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.log[u]
	if !ok {
		return "", false
	}
	s, ok := m[msgIdx]
	return s, ok
}

func (c *TextCache) ValidateMessageBasic(msg unit.Message) error {
	if len(msg.Payload) == 0 {
		return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("text message has no payload"))
	}
	if len(msg.Payload) > maxTextBytes {
		return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("text payload exceeds %d bytes", maxTextBytes))
	}
	if !utf8.Valid(msg.Payload) {
		return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("text payload is not valid utf-8"))
	}
	return nil
}

func (c *TextCache) CheckBusiness(*unit.Unit, int) error   { return nil }
func (c *TextCache) ValidateMessage(*unit.Unit, int) error { return nil }

func (c *TextCache) ApplyMessage(u *unit.Unit, msgIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.log[u.UnitHash]
	if !ok {
		m = make(map[int]string)
		c.log[u.UnitHash] = m
	}
	m[msgIdx] = string(u.Messages[msgIdx].Payload)
	return nil
}

func (c *TextCache) RevertMessage(u *unit.Unit, msgIdx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.log[u.UnitHash]; ok {
		delete(m, msgIdx)
		if len(m) == 0 {
			delete(c.log, u.UnitHash)
		}
	}
	return nil
}
