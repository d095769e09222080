// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/luxfi/sdag/internal/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const writeDeadline = 5 * time.Second

// WSHub maintains every connected websocket client, dispatches each
// inbound JSON-RPC request to srv, and fans out server-initiated pushes
// (newly admitted joints) to every subscriber.
type WSHub struct {
	srv *Server
	log log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewWSHub constructs a WSHub dispatching requests to srv. srv may be
// nil if the Server itself needs a reference to this WSHub to construct
// (the two hold a cyclic reference); call Attach before serving traffic.
func NewWSHub(srv *Server, logger log.Logger) *WSHub {
	return &WSHub{
		srv:     srv,
		log:     log.New(logger, "hub-ws"),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Attach sets the Server a WSHub constructed with a nil srv dispatches
// to, resolving the WSHub/Server construction cycle.
func (h *WSHub) Attach(srv *Server) {
	h.srv = srv
}

// ServeHTTP upgrades the connection and serves JSON-RPC requests over it
// until the client disconnects.
func (h *WSHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "err", err.Error())
		return
	}

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()
	h.log.Info("client connected", "total", h.clientCount())

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("client disconnected", "total", h.clientCount())
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "err", err.Error())
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			h.writeJSON(conn, writeMu, Response{Error: err.Error()})
			continue
		}
		resp := h.srv.Handle(context.Background(), req)
		if err := h.writeJSON(conn, writeMu, resp); err != nil {
			h.log.Warn("websocket write error", "err", err.Error())
			return
		}
	}
}

// writeJSON serializes writes to conn against every other writer (the
// reply path here and Broadcast) sharing writeMu, since gorilla's
// websocket.Conn supports only one concurrent writer.
func (h *WSHub) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, v any) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(v)
}

func (h *WSHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast pushes a pre-encoded JSON message (e.g. a newly admitted
// joint) to every connected client in turn. Each write may block for up
// to writeDeadline; a client whose write fails or times out is closed
// and dropped.
func (h *WSHub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, writeMu := range h.clients {
		err := func() error {
			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			return conn.WriteMessage(websocket.TextMessage, payload)
		}()
		if err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
