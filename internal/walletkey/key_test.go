// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package walletkey

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/unit"
)

func TestGenerateSignsForItsOwnAddress(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	var hash unit.Hash
	hash[0] = 0x42
	sig, err := k.Sign(k.Address(), hash)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	pub, err := k.PublicKey(k.Address())
	require.NoError(t, err)
	require.NotEmpty(t, pub)
}

func TestSignRejectsForeignAddress(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)
	var other unit.Address
	other[0] = 0x99

	_, err = k.Sign(other, unit.Hash{})
	require.Error(t, err)
	_, err = k.PublicKey(other)
	require.Error(t, err)
}

func TestSaveAndLoadRoundTripsAddress(t *testing.T) {
	k, err := Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, k.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, k.Address(), loaded.Address())
}
