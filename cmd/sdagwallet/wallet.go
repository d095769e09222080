// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"
	"path/filepath"

	"github.com/luxfi/sdag/internal/walletkey"
)

const walletKeyFile = "key"

// loadOrInitWallet loads the wallet's single keypair from dir, generating
// and persisting a new one the first time the wallet runs there.
func loadOrInitWallet(dir string) (*walletkey.Key, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, walletKeyFile)
	key, err := walletkey.Load(path)
	if os.IsNotExist(err) {
		key, err = walletkey.Generate()
		if err != nil {
			return nil, err
		}
		return key, key.Save(path)
	}
	if err != nil {
		return nil, err
	}
	return key, nil
}

// resetWallet discards any existing key at dir, forcing the next
// loadOrInitWallet to generate a fresh one. It mirrors the reference
// wallet's "every init wipes local state" behavior.
func resetWallet(dir string) error {
	path := filepath.Join(dir, walletKeyFile)
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
