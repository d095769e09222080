// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package unit

import (
	"fmt"

	luxcodec "github.com/luxfi/codec"
	luxcrypto "github.com/luxfi/crypto"

	"github.com/luxfi/sdag/internal/sdagerr"
)

// codecManifest is the canonical, deterministic encoding used for both the
// to-sign hash and the unit-hash. luxfi/codec gives us stable field
// ordering across versions, which plain encoding/json does not guarantee.
var codecManifest = luxcodec.NewManifest()

// ToSignBytes returns the canonical encoding of u with the hash and
// signatures excluded, so the result is exactly what authors sign.
func ToSignBytes(u *Unit) ([]byte, error) {
	clone := *u
	clone.UnitHash = Hash{}
	clone.Authors = make([]Author, len(u.Authors))
	for i, a := range u.Authors {
		clone.Authors[i] = Author{Address: a.Address, Definition: a.Definition}
	}
	return luxcodec.Marshal(codecManifest, &clone)
}

// ComputeUnitHash derives the final canonical unit-hash.
func ComputeUnitHash(u *Unit) (Hash, error) {
	b, err := ToSignBytes(u)
	if err != nil {
		return Hash{}, err
	}
	return hashBytes(b), nil
}

// HashPayload hashes an inline message payload.
func HashPayload(payload []byte) Hash {
	return hashBytes(payload)
}

// ComputeBallHash derives the deterministic ball hash from
// (unit, sorted(parent_balls), sorted(skiplist_balls), bad_flag).
func ComputeBallHash(unitHash Hash, parentBalls, skiplistBalls []Hash, bad bool) (Hash, error) {
	b := &Ball{
		Unit: unitHash,
		ParentBalls: sortedHashes(parentBalls),
		SkiplistBalls: sortedHashes(skiplistBalls),
		Bad: bad,
	}
	enc, err := luxcodec.Marshal(codecManifest, b)
	if err != nil {
		return Hash{}, err
	}
	return hashBytes(enc), nil
}

func hashBytes(b []byte) Hash {
	sum := luxcrypto.Hash256(b)
	var h Hash
	copy(h[:], sum[:])
	return h
}

func errMalformed(msg string) *sdagerr.Error {
	return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("%s", msg))
}

func errMalformedf(format string, args...interface{}) *sdagerr.Error {
	return sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf(format, args...))
}
