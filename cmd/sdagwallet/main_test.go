// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePayArgParsesMultiplePairs(t *testing.T) {
	key, err := loadOrInitWallet(t.TempDir())
	require.NoError(t, err)
	addr := key.Address().String()

	outputs, err := parsePayArg(addr + ":1.5," + addr + ":2")
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.Equal(t, key.Address(), outputs[0].Address)
	require.EqualValues(t, 1_500_000, outputs[0].Amount)
	require.Equal(t, key.Address(), outputs[1].Address)
	require.EqualValues(t, 2_000_000, outputs[1].Amount)
}

func TestParsePayArgRejectsMalformedPair(t *testing.T) {
	_, err := parsePayArg("not-a-valid-pair")
	require.Error(t, err)
}

func TestParsePayArgRejectsBelowMinimumAmount(t *testing.T) {
	key, err := loadOrInitWallet(t.TempDir())
	require.NoError(t, err)
	_, err = parsePayArg(key.Address().String() + ":0")
	require.Error(t, err)
}

func TestParsePayArgRejectsEmpty(t *testing.T) {
	_, err := parsePayArg("")
	require.Error(t, err)
}

func TestMicroToUnitsConverts(t *testing.T) {
	require.InDelta(t, 1.5, microToUnits(1_500_000), 1e-9)
}
