// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/sdag/internal/hub"
	"github.com/luxfi/sdag/internal/log"
)

// p2pSender must satisfy hub.Sender so a node embedding a real p2p.Sender
// can hand it straight to hub.New.
var _ hub.Sender = p2pSender{}

func TestNoGossipSenderNeverErrors(t *testing.T) {
	s := noGossipSender{log: log.NewNoOp()}
	require.NoError(t, s.SendAppGossip(context.Background(), nil, []byte("joint")))
}
