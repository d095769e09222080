// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package walletkey is the minimal secp256k1 keystore cmd/sdagwallet
// signs with: one keypair per address, persisted as a hex-encoded
// private key file. It implements both compose.Signer and
// genesis.Signer's narrow method sets.
package walletkey

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/luxfi/sdag/internal/unit"
)

// Key is a single secp256k1 keypair and the address it authenticates.
type Key struct {
	priv *secp256k1.PrivateKey
	addr unit.Address
}

// Generate creates a fresh keypair and derives its address from the
// standard "sig" definition carrying the compressed public key, the same
// definition compose.ComposeJoint/genesis.Build attach to a first-use
// author.
func Generate() (*Key, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return fromPrivateKey(priv)
}

// Load reads a key previously written by Save.
func Load(path string) (*Key, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return nil, fmt.Errorf("walletkey: decode %s: %w", path, err)
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	return fromPrivateKey(priv)
}

// Save writes the key's private scalar, hex-encoded, to path.
func (k *Key) Save(path string) error {
	enc := hex.EncodeToString(k.priv.Serialize())
	return os.WriteFile(path, []byte(enc), 0o600)
}

// Address is the address this key authenticates.
func (k *Key) Address() unit.Address { return k.addr }

// Sign implements compose.Signer and genesis.Signer. addr must match
// k.Address(); a node's real signer routes per-address, but a wallet
// holding a single key can only ever be asked to sign on its own behalf.
func (k *Key) Sign(addr unit.Address, hash unit.Hash) (string, error) {
	if addr != k.addr {
		return "", fmt.Errorf("walletkey: key for %s cannot sign for %s", k.addr, addr)
	}
	sig := ecdsa.Sign(k.priv, hash[:])
	return hex.EncodeToString(sig.Serialize()), nil
}

// PublicKey implements genesis.Signer, returning the compressed public
// key as hex.
func (k *Key) PublicKey(addr unit.Address) (string, error) {
	if addr != k.addr {
		return "", fmt.Errorf("walletkey: key for %s cannot provide pubkey for %s", k.addr, addr)
	}
	return hex.EncodeToString(k.priv.PubKey().SerializeCompressed()), nil
}

func fromPrivateKey(priv *secp256k1.PrivateKey) (*Key, error) {
	pubkeyHex := hex.EncodeToString(priv.PubKey().SerializeCompressed())
	definition, err := json.Marshal([]any{"sig", map[string]string{"pubkey": pubkeyHex}})
	if err != nil {
		return nil, err
	}
	h := unit.HashPayload(definition)
	var addr unit.Address
	copy(addr[:], h[:])
	return &Key{priv: priv, addr: addr}, nil
}
