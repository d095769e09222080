// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command sdagnode runs one DAG ledger node: it admits units, tracks
// main-chain stability, maintains the tentative and stable mirrors, and
// serves light-client queries and unit posting over a websocket hub.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/config"
	"github.com/luxfi/sdag/internal/engine"
	"github.com/luxfi/sdag/internal/genesis"
	"github.com/luxfi/sdag/internal/hub"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/store"
	"github.com/luxfi/sdag/internal/unit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sdagnode: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config overlay (optional)")
	listen := flag.String("listen", ":6000", "address the websocket hub listens on")
	witnessKeysDir := flag.String("witness-keys", "./sdag-witness-keys", "directory holding the 12 genesis witness keys (generated on first run)")
	orgAddressStr := flag.String("org-address", "", "organization address receiving the genesis remainder (generated if empty)")
	genesisMessage := flag.String("genesis-message", "", "optional text message posted alongside the genesis payment")
	witnessIndex := flag.Int("post-as-witness", -1, "if >= 0, run the posting scheduler authoring heartbeat units as witness N")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	logger := log.NewDefault("sdagnode")
	m := metrics.New(prometheus.NewRegistry())

	witnesses, err := loadOrGenerateWitnessKeys(*witnessKeysDir, genesis.WitnessCount)
	if err != nil {
		return fmt.Errorf("load witness keys: %w", err)
	}

	var orgAddress unit.Address
	if *orgAddressStr != "" {
		orgAddress, err = unit.ParseAddress(*orgAddressStr)
		if err != nil {
			return fmt.Errorf("parse org address: %w", err)
		}
	} else {
		orgKey, err := loadOrGenerateOrgKey(*witnessKeysDir)
		if err != nil {
			return err
		}
		orgAddress = orgKey.Address()
	}

	genesisJoint, err := genesis.Build(witnesses.Addresses(), orgAddress, *genesisMessage, witnesses)
	if err != nil {
		return fmt.Errorf("build genesis: %w", err)
	}

	// A durable backend's exact opener (leveldb/pebbledb path, options)
	// is not wired here; internal/store.DB accepts any luxfi/database.Database,
	// so swapping memdb for a disk-backed opener is a one-line change once
	// that constructor is confirmed.
	st := store.NewDB(memdb.New())

	policy := business.NullCommission{}
	node := engine.New(st, logger, m, cfg, policy, genesisJoint.Unit.UnitHash)
	if err := node.SeedGenesis(genesisJoint); err != nil {
		return fmt.Errorf("seed genesis: %w", err)
	}

	sender := hub.Sender(noGossipSender{log: log.New(logger, "gossip")})
	ws := hub.NewWSHub(nil, logger)
	srv := hub.New(node.Cache, node.Queries, node.Business.Tentative, sender, logger, m, cfg.MaxParentsPerUnit, ws)
	ws.Attach(srv)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- node.Run() }()

	if *witnessIndex >= 0 && *witnessIndex < len(witnesses.keys) {
		scheduler := newWitnessScheduler(cfg, logger, node, witnesses, witnesses.keys[*witnessIndex].Address(), sender)
		go scheduler.Run(ctx)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", ws)
	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("sdagnode listening", "addr", *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}
