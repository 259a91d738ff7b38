// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

// Client is a connection to a bridge [Server].
// Use [Connect] to create one.
type Client struct {
	conn *websocket.Conn

	// done is closed when the connection is closed.
	done chan struct{}
}

// Connect connects to the bridge server at the given ws:// URL.
func Connect(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, done: make(chan struct{})}, nil
}

// OnMessage starts calling f for every message received, on a
// separate goroutine. It can only be called once.
func (c *Client) OnMessage(f func(m *Message)) {
	go func() {
		defer close(c.done)
		for {
			_, b, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			m := &Message{}
			if err := json.Unmarshal(b, m); err != nil {
				slog.Error("bridge: invalid message", "err", err)
				continue
			}
			f(m)
		}
	}()
}

// Send sends a request to the server.
func (c *Client) Send(req *Request) error {
	return c.conn.WriteJSON(req)
}

// Set asks the server to set the given label to the given value.
func (c *Client) Set(label string, value float64) error {
	return c.Send(&Request{Op: OpSet, Label: label, Value: &value})
}

// Close cleanly closes the connection. Once the server has closed its
// side, the [Client.OnMessage] goroutine stops and [Client.Done] is closed.
func (c *Client) Close() error {
	return c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Done returns a channel that is closed once the connection has closed,
// after [Client.OnMessage] has been called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
