// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"

	"github.com/luxfi/p2p"

	"github.com/luxfi/sdag/internal/hub"
	"github.com/luxfi/sdag/internal/log"
)

// p2pSender adapts a concrete p2p.Sender into hub.Sender. p2p.Sender's
// gossip methods take a generic node-id set rather than hub.Sender's
// loosely-typed nodeIDs parameter, so this adapter always passes nil for
// that argument: the avalanchego-family gossip methods this interface is
// aliased from treat a nil/empty node-id set as "broadcast to every
// connected peer", which is exactly the semantics a newly admitted joint
// needs.
type p2pSender struct {
	sender p2p.Sender
}

// newP2PSender wraps sender for use as a hub.Server's gossip channel.
func newP2PSender(sender p2p.Sender) hub.Sender {
	return p2pSender{sender: sender}
}

func (p p2pSender) SendAppGossip(ctx context.Context, _ any, appGossipBytes []byte) error {
	return p.sender.SendAppGossip(ctx, nil, appGossipBytes)
}

// noGossipSender is used when the node runs without a peer transport
// (single-node development, or a node embedded by something that hasn't
// wired p2p yet): admitted joints are still accepted locally, they just
// never leave the process.
type noGossipSender struct {
	log log.Logger
}

func (n noGossipSender) SendAppGossip(context.Context, any, []byte) error {
	n.log.Debug("no peer transport configured, dropping gossip")
	return nil
}
