// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package business

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/unit"
)

func TestNullCommissionAcceptsEverything(t *testing.T) {
	var p CommissionPolicy = NullCommission{}
	require.NoError(t, p.Check(&unit.Unit{}))
	require.NoError(t, p.Check(&unit.Unit{
		EarnedHeadersCommissionRecipients: []unit.CommissionRecipient{{Address: addrB(1), Share: 100}},
	}))
}
