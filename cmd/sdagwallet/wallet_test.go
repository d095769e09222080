// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrInitWalletGeneratesThenPersists(t *testing.T) {
	dir := t.TempDir()

	first, err := loadOrInitWallet(dir)
	require.NoError(t, err)

	second, err := loadOrInitWallet(dir)
	require.NoError(t, err)

	require.Equal(t, first.Address(), second.Address())
}

func TestResetWalletForcesFreshKeyOnNextInit(t *testing.T) {
	dir := t.TempDir()

	first, err := loadOrInitWallet(dir)
	require.NoError(t, err)

	require.NoError(t, resetWallet(dir))

	second, err := loadOrInitWallet(dir)
	require.NoError(t, err)

	require.NotEqual(t, first.Address(), second.Address())
}

func TestResetWalletOnMissingKeyIsNotAnError(t *testing.T) {
	require.NoError(t, resetWallet(t.TempDir()))
}
