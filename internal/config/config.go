// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the node's tunables: witness/majority sizing, the
// periodic-task intervals, and the two purge windows left open by the
// reference timer implementation.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full node configuration. Zero value is invalid; use
// Default() and override fields, or Load a YAML file.
type Config struct {
	// WitnessCount is the size of the witness list (12 by default).
	WitnessCount int `yaml:"witness_count"`
	// MajorityOfWitnesses is the count of distinct witnesses a best-parent
	// walk must see to advance witnessed_level (7 of 12 by default).
	MajorityOfWitnesses int `yaml:"majority_of_witnesses"`
	// MaxParentsPerUnit bounds parent_units length.
	MaxParentsPerUnit int `yaml:"max_parents_per_unit"`

	// HeartbeatInterval and HeartbeatTimeout govern hub connection health
	// defaulting to a 5s timeout, probing every 3s plus jitter.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`

	// RequestParentsInterval re-requests lost parents, 8s by default.
	RequestParentsInterval time.Duration `yaml:"request_parents_interval"`
	// JunkPurgeInterval purges unhandled junk units. The reference source
	// disagreed between a 10m and a 2m window; this module takes the
	// shorter one, 2m by default.
	JunkPurgeInterval time.Duration `yaml:"junk_purge_interval"`
	// TempBadPurgeInterval purges temp-bad free units. Reference disagreed
	// between a 4m and a 1m window; this module takes the shorter one.
	TempBadPurgeInterval time.Duration `yaml:"temp_bad_purge_interval"`
	// FreeJointBroadcastInterval broadcasts the free-joint set every 10s by default.
	FreeJointBroadcastInterval time.Duration `yaml:"free_joint_broadcast_interval"`
	// PeerReconnectInterval re-establishes peer quorum every 30s by default.
	PeerReconnectInterval time.Duration `yaml:"peer_reconnect_interval"`

	// WitnessPostInterval paces the witness-posting scheduler
	// (internal/witness).
	WitnessPostInterval time.Duration `yaml:"witness_post_interval"`

	// StorePath is where the luxfi/database-backed KV store keeps its files.
	StorePath string `yaml:"store_path"`
}

// Default returns the node's out-of-the-box configuration.
func Default() Config {
	return Config{
		WitnessCount: 12,
		MajorityOfWitnesses: 7,
		MaxParentsPerUnit: 16,
		HeartbeatInterval: 3 * time.Second,
		HeartbeatTimeout: 5 * time.Second,
		RequestParentsInterval: 8 * time.Second,
		JunkPurgeInterval: 2 * time.Minute,
		TempBadPurgeInterval: 1 * time.Minute,
		FreeJointBroadcastInterval: 10 * time.Second,
		PeerReconnectInterval: 30 * time.Second,
		WitnessPostInterval: 30 * time.Second,
		StorePath: "./sdag-data",
	}
}

// Load reads a YAML config file, overlaying it on Default().
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
