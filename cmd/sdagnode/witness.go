// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"

	"github.com/luxfi/sdag/internal/compose"
	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/engine"
	"github.com/luxfi/sdag/internal/hub"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/unit"
	"github.com/luxfi/sdag/internal/witness"
)

// newWitnessScheduler builds the periodic heartbeat poster for the
// witness at addr: every tick it composes and admits a text-only unit
// signed by that witness's key, then gossips it to peers exactly like a
// unit posted over the hub.
func newWitnessScheduler(cfg config.Config, logger log.Logger, node *engine.Node, signer compose.Signer, addr unit.Address, sender hub.Sender) *witness.Scheduler {
	post := func(ctx context.Context) error {
		joint, err := compose.CreateTextJoint(addr, "heartbeat", node.Queries, signer)
		if err != nil {
			return err
		}
		if err := node.Cache.AddJoint(joint); err != nil {
			return err
		}
		encoded, err := json.Marshal(joint)
		if err != nil {
			return err
		}
		return sender.SendAppGossip(ctx, nil, encoded)
	}
	return witness.NewScheduler(cfg, logger, post)
}
