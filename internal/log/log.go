// Copyright (C) 2019-2024, Lux Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log adapts github.com/luxfi/log to the small surface every
// consensus worker takes at construction.
package log

import (
	luxlog "github.com/luxfi/log"
)

// Logger is the structured logger passed to every worker. It mirrors
// luxlog.Logger; components depend on this narrower alias so the rest of
// the module never imports luxfi/log directly.
type Logger = luxlog.Logger

// New returns the named sub-logger of root, the way every worker tags its
// own log lines (e.g. "mainchain", "business", "finalization").
func New(root Logger, name string) Logger {
	if root == nil {
		return NewNoOp()
	}
	return root.With("component", name)
}

// NewNoOp returns a logger that discards everything, for tests and
// components that were not handed a real logger.
func NewNoOp() Logger {
	return luxlog.NewNoOpLogger()
}

// NewDefault returns the node's top-level logger, tagged with name, for
// cmd/sdagnode and cmd/sdagwallet to build their component loggers from.
func NewDefault(name string) Logger {
	return luxlog.NewDefaultLogger(name)
}
