// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

const AppDataFeed = "data_feed"

// DataFeedPayload is the "data_feed" message payload: a set of
// feed-name → value postings from this unit's author.
type DataFeedPayload map[string]json.RawMessage

type feedPosting struct {
	author unit.Address
	unit   unit.Hash
	value  json.RawMessage
}

// TimerCache is the data-feed sub-ledger: the latest value each oracle
// address has posted per feed name. "Timer" names the original oracle
// mechanism (periodic value postings), kept for continuity with the
// rest of the sub-ledger naming.
type TimerCache struct {
	mu     sync.RWMutex
	latest map[string]map[unit.Address]feedPosting
}

// NewTimerCache returns an empty data-feed ledger.
func NewTimerCache() *TimerCache {
	return &TimerCache{latest: make(map[string]map[unit.Address]feedPosting)}
}

// Value returns oracle's latest posting for feed, if any.
func (c *TimerCache) Value(feed string, oracle unit.Address) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.latest[feed]
	if !ok {
		return nil, false
	}
	p, ok := m[oracle]
	if !ok {
		return nil, false
	}
	return p.value, true
}

func decodeDataFeed(msg unit.Message) (DataFeedPayload, error) {
	var p DataFeedPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	return p, nil
}

func (c *TimerCache) ValidateMessageBasic(msg unit.Message) error {
	p, err := decodeDataFeed(msg)
	if err != nil {
		return err
	}
	if len(p) == 0 {
		return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("data_feed message posts no values"))
	}
	return nil
}

func (c *TimerCache) CheckBusiness(*unit.Unit, int) error   { return nil }
func (c *TimerCache) ValidateMessage(*unit.Unit, int) error { return nil }

func (c *TimerCache) ApplyMessage(u *unit.Unit, msgIdx int) error {
	p, err := decodeDataFeed(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	oracle := u.Authors[0].Address
	c.mu.Lock()
	defer c.mu.Unlock()
	for feed, value := range p {
		m, ok := c.latest[feed]
		if !ok {
			m = make(map[unit.Address]feedPosting)
			c.latest[feed] = m
		}
		m[oracle] = feedPosting{author: oracle, unit: u.UnitHash, value: value}
	}
	return nil
}

func (c *TimerCache) RevertMessage(u *unit.Unit, msgIdx int) error {
	p, err := decodeDataFeed(u.Messages[msgIdx])
	if err != nil {
		return err
	}
	oracle := u.Authors[0].Address
	c.mu.Lock()
	defer c.mu.Unlock()
	for feed := range p {
		if m, ok := c.latest[feed]; ok {
			if posting, ok := m[oracle]; ok && posting.unit == u.UnitHash {
				delete(m, oracle)
			}
		}
	}
	return nil
}
