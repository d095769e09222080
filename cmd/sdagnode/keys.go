// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/walletkey"
)

// witnessKeySet loads (or, the first time a node bootstraps a network,
// generates) the keypairs for every genesis witness, keyed by address.
// It implements both compose.Signer and genesis.Signer by dispatching
// to whichever key owns the requested address.
type witnessKeySet struct {
	keys []*walletkey.Key
	byAddr map[unit.Address]*walletkey.Key
}

// loadOrGenerateWitnessKeys loads count keys, one per file named
// witness-0 .. witness-(count-1) in dir, generating any that are
// missing. Other files in dir are left untouched.
func loadOrGenerateWitnessKeys(dir string, count int) (*witnessKeySet, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	set := &witnessKeySet{byAddr: make(map[unit.Address]*walletkey.Key, count)}
	for i := 0; i < count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("witness-%d", i))
		key, err := walletkey.Load(path)
		if os.IsNotExist(err) {
			key, err = walletkey.Generate()
			if err != nil {
				return nil, err
			}
			if err := key.Save(path); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		set.keys = append(set.keys, key)
		set.byAddr[key.Address()] = key
	}
	return set, nil
}

// loadOrGenerateOrgKey ensures dir holds a single "org" key file,
// generating one the first time a node bootstraps.
func loadOrGenerateOrgKey(dir string) (*walletkey.Key, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "org")
	key, err := walletkey.Load(path)
	if os.IsNotExist(err) {
		key, err = walletkey.Generate()
		if err != nil {
			return nil, err
		}
		if err := key.Save(path); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return key, nil
}

func (w *witnessKeySet) Addresses() []unit.Address {
	out := make([]unit.Address, len(w.keys))
	for i, k := range w.keys {
		out[i] = k.Address()
	}
	return out
}

func (w *witnessKeySet) Sign(addr unit.Address, hash unit.Hash) (string, error) {
	k, ok := w.byAddr[addr]
	if !ok {
		return "", fmt.Errorf("no witness key for address %s", addr)
	}
	return k.Sign(addr, hash)
}

func (w *witnessKeySet) PublicKey(addr unit.Address) (string, error) {
	k, ok := w.byAddr[addr]
	if !ok {
		return "", fmt.Errorf("no witness key for address %s", addr)
	}
	return k.PublicKey(addr)
}
