// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/luxfi/sdag/internal/hub"
)

// client is a single websocket connection to a node's hub, round-tripping
// one hub.Request/hub.Response pair per Call. The wallet never keeps more
// than one request outstanding, so a blocking read after every write is
// enough; it does not need the per-connection id multiplexing a full
// light client would.
type client struct {
	conn   *websocket.Conn
	nextID uint64
}

const dialTimeout = 5 * time.Second

// dial opens a websocket connection to a node's hub at url (e.g.
// "ws://127.0.0.1:6000/ws").
func dial(url string) (*client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &client{conn: conn}, nil
}

func (c *client) Close() error {
	return c.conn.Close()
}

// Call sends method with params and decodes the response's result into
// out (if out is non-nil). It returns the error the hub reported, if any.
func (c *client) Call(method string, params, out any) error {
	id := atomic.AddUint64(&c.nextID, 1)
	encodedParams, err := json.Marshal(params)
	if err != nil {
		return err
	}
	encodedID, err := json.Marshal(id)
	if err != nil {
		return err
	}
	req := hub.Request{ID: encodedID, Method: method, Params: encodedParams}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	var resp hub.Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%s: %s", method, resp.Error)
	}
	if out == nil {
		return nil
	}
	// resp.Result was decoded once already as an any by ReadJSON; round-trip
	// it through json to land it in out's concrete type.
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
