// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hub serves the node's client-facing surface: a JSON-RPC
// method table reachable over a websocket connection, plus an
// inter-node gossip sender for newly admitted joints. Wallets and other
// light clients post units and run queries through here; they never
// touch the joint cache or store directly.
package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/luxfi/sdag/internal/business"
	"github.com/luxfi/sdag/internal/light"
	"github.com/luxfi/sdag/internal/log"
	"github.com/luxfi/sdag/internal/metrics"
	"github.com/luxfi/sdag/internal/sdagerr"
	"github.com/luxfi/sdag/internal/unit"
)

// Request is the JSON-RPC envelope clients post to a method.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the JSON-RPC envelope returned for a Request.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Method names, matching the wallet/light-client wire surface.
const (
	MethodPostJoint    = "post_joint"
	MethodLightInputs  = "light/inputs"
	MethodGetHistory   = "light/get_history"
	MethodLightProps   = "light/light_props"
	MethodGetBalance   = "get_balance"
	MethodGetWitnesses = "get_witnesses"
	MethodHeartbeat    = "heartbeat"
	MethodSubscribe    = "subscribe"
	MethodVersion      = "version"
)

// Sender gossips a newly admitted joint to the node's peers. Its shape
// mirrors the SendAppGossip method of p2p.Sender (github.com/luxfi/p2p),
// but its nodeIDs parameter is untyped, so a real p2p.Sender is wired in
// through an adapter (cmd/sdagnode's p2pSender). A nil nodeIDs set means "gossip to every
// connected peer", the zero-value convention this family of Sender
// implementations uses for unrestricted broadcast.
type Sender interface {
	SendAppGossip(ctx context.Context, nodeIDs any, appGossipBytes []byte) error
}

// Graph is the joint-cache surface Server needs for post_joint admission.
type Graph interface {
	AddJoint(j *unit.Joint) error
	GetJoint(h unit.Hash) (*unit.Joint, error)
}

// Server dispatches JSON-RPC requests against the node's read surfaces
// and, for post_joint, admits units into cache and gossips them onward.
type Server struct {
	graph      Graph
	queries    *light.Queries
	tentative  *business.Mirror
	sender     Sender
	log        log.Logger
	metrics    *metrics.Metrics
	maxParents int
	broadcast  *WSHub
}

// New constructs a Server. sender may be nil, in which case admitted
// joints are cached locally but never gossiped onward (single-node or
// test configurations).
func New(g Graph, q *light.Queries, tentative *business.Mirror, sender Sender, logger log.Logger, m *metrics.Metrics, maxParents int, broadcast *WSHub) *Server {
	return &Server{
		graph:      g,
		queries:    q,
		tentative:  tentative,
		sender:     sender,
		log:        log.New(logger, "hub"),
		metrics:    m,
		maxParents: maxParents,
		broadcast:  broadcast,
	}
}

// Handle dispatches req and returns the Response to send back. Handle
// never returns an error itself: every failure is reported inside the
// Response so the caller always has exactly one JSON value to write.
func (s *Server) Handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}
	result, err := s.dispatch(ctx, req.Method, req.Params)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case MethodPostJoint:
		return s.postJoint(ctx, params)
	case MethodLightInputs:
		return s.lightInputs(params)
	case MethodGetHistory:
		return s.getHistory(params)
	case MethodLightProps:
		return s.lightProps(params)
	case MethodGetBalance:
		return s.getBalance(params)
	case MethodGetWitnesses:
		return s.queries.GetWitnesses()
	case MethodHeartbeat:
		return map[string]string{"status": "ok"}, nil
	case MethodSubscribe:
		return map[string]string{"status": "subscribed"}, nil
	case MethodVersion:
		return map[string]string{"version": "sdag/1.0.0"}, nil
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

func (s *Server) postJoint(ctx context.Context, params json.RawMessage) (any, error) {
	var j unit.Joint
	if err := json.Unmarshal(params, &j); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	if j.Unit == nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", fmt.Errorf("joint carries no unit"))
	}
	if err := j.Unit.ValidateStructure(s.maxParents); err != nil {
		return nil, err
	}
	if err := s.tentative.ValidateUnit(j.Unit); err != nil {
		if s.metrics != nil {
			s.metrics.UnitsRejected.WithLabelValues(sdagerr.KindOf(err).String()).Inc()
		}
		return nil, err
	}
	if err := s.graph.AddJoint(&j); err != nil {
		if s.metrics != nil {
			s.metrics.UnitsRejected.WithLabelValues(sdagerr.KindOf(err).String()).Inc()
		}
		return nil, err
	}

	encoded, err := json.Marshal(&j)
	if err == nil {
		if s.sender != nil {
			_ = s.sender.SendAppGossip(ctx, nil, encoded)
		}
		if s.broadcast != nil {
			s.broadcast.Broadcast(encoded)
		}
	}
	return map[string]string{"unit": j.Unit.UnitHash.String()}, nil
}

type lightInputsParams struct {
	PaidAddress unit.Address `json:"paid_address"`
	TotalAmount uint64       `json:"total_amount"`
	IsSpendAll  bool         `json:"is_spend_all"`
}

func (s *Server) lightInputs(params json.RawMessage) (any, error) {
	var p lightInputsParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	selected, total, err := s.queries.Inputs(p.PaidAddress, p.TotalAmount, p.IsSpendAll)
	if err != nil {
		return nil, err
	}
	return map[string]any{"inputs": selected, "total": total}, nil
}

type historyParams struct {
	Address unit.Address `json:"address"`
	Num     int          `json:"num"`
}

func (s *Server) getHistory(params json.RawMessage) (any, error) {
	var p historyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	return s.queries.GetHistory(p.Address, p.Num), nil
}

type addressParams struct {
	Address unit.Address `json:"address"`
}

func (s *Server) lightProps(params json.RawMessage) (any, error) {
	var p addressParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	return s.queries.LightProps(p.Address)
}

func (s *Server) getBalance(params json.RawMessage) (any, error) {
	var p addressParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, sdagerr.New(sdagerr.MalformedUnit, "", err)
	}
	return s.queries.GetBalance(p.Address), nil
}
