// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bridge lets a remote presentation layer drive a
// [session.Session] over a WebSocket connection. Clients receive the
// label schema once the session is ready and the display vertices after
// every change, and send control changes back.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/session"
	"github.com/gorilla/websocket"
)

// SendBuffer is the number of outgoing messages buffered per client.
// Geometry messages are dropped for clients that fall further behind;
// the next change brings them up to date.
const SendBuffer = 16

// Server is an [http.Handler] that serves a session over WebSocket.
// It is a [session.Listener], and [New] registers it with the session.
type Server struct {
	Session *session.Session

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New returns a new server for the given session.
func New(s *session.Session) *Server {
	sv := &Server{
		Session: s,
		clients: map[*client]struct{}{},
	}
	s.AddListener(sv)
	return sv
}

type client struct {
	conn *websocket.Conn
	send chan *Message
	done chan struct{}
}

func (sv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := sv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("bridge: upgrade failed", "err", err)
		return
	}
	cl := &client{conn: conn, send: make(chan *Message, SendBuffer), done: make(chan struct{})}
	sv.mu.Lock()
	sv.clients[cl] = struct{}{}
	sv.mu.Unlock()
	slog.Info("bridge: client connected", "remote", r.RemoteAddr, "session", sv.Session.ID)

	go sv.writeLoop(cl)
	if sv.Session.IsReady() {
		cl.push(sv.initMessage(sv.Session.Schema()), true)
		if d := sv.Session.Display(); d != nil {
			cl.push(geometryMessage(d.Version(), d.Vertices()), true)
		}
	}
	sv.readLoop(cl)

	sv.mu.Lock()
	delete(sv.clients, cl)
	sv.mu.Unlock()
	close(cl.done)
	conn.Close()
	slog.Info("bridge: client disconnected", "remote", r.RemoteAddr)
}

// push queues a message for the client. Messages that must arrive
// block until there is room; others are dropped if the buffer is full.
func (cl *client) push(m *Message, must bool) {
	if must {
		select {
		case cl.send <- m:
		case <-cl.done:
		}
		return
	}
	select {
	case cl.send <- m:
	default:
		slog.Debug("bridge: dropped message for slow client", "type", m.Type)
	}
}

func (sv *Server) writeLoop(cl *client) {
	for {
		select {
		case m := <-cl.send:
			if err := cl.conn.WriteJSON(m); err != nil {
				slog.Debug("bridge: write failed", "err", err)
				return
			}
		case <-cl.done:
			return
		}
	}
}

func (sv *Server) readLoop(cl *client) {
	for {
		_, b, err := cl.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("bridge: read failed", "err", err)
			}
			return
		}
		var req Request
		if err := json.Unmarshal(b, &req); err != nil {
			cl.push(&Message{Type: TypeError, Error: fmt.Sprintf("invalid request: %v", err)}, true)
			continue
		}
		if err := sv.Handle(&req); err != nil {
			cl.push(&Message{Type: TypeError, Error: err.Error()}, true)
		}
	}
}

// Handle applies one client request to the session.
func (sv *Server) Handle(req *Request) error {
	op := req.Op
	if op == "" && req.Label != "" {
		op = OpSet
	}
	switch op {
	case OpSet:
		if req.Value == nil {
			return errors.New("bridge: set requires a value")
		}
		return sv.Session.Set(req.Label, *req.Value)
	case OpReset:
		return sv.Session.Reset()
	case OpRandomize:
		return sv.Session.Randomize()
	case OpSkin:
		return sv.Session.SetSkin(req.Name)
	}
	return fmt.Errorf("bridge: unknown op %q", req.Op)
}

func (sv *Server) broadcast(m *Message, must bool) {
	sv.mu.Lock()
	cls := make([]*client, 0, len(sv.clients))
	for cl := range sv.clients {
		cls = append(cls, cl)
	}
	sv.mu.Unlock()
	for _, cl := range cls {
		cl.push(m, must)
	}
}

func (sv *Server) initMessage(sc *labels.Schema) *Message {
	m := &Message{
		Type:    TypeInit,
		Session: sv.Session.ID.String(),
		Labels:  sc.Strings(),
		Values:  sv.Session.Values(),
		Skins:   sv.Session.Skins(),
	}
	for _, g := range sc.Groups() {
		gm := Group{Name: g.Name, Open: g.Open}
		for _, l := range g.Labels {
			gm.Labels = append(gm.Labels, l.String())
		}
		m.Groups = append(m.Groups, gm)
	}
	return m
}

func geometryMessage(version uint64, vtx []float32) *Message {
	return &Message{Type: TypeGeometry, Version: version, Vertices: vtx}
}

func (sv *Server) Ready(sc *labels.Schema) {
	sv.broadcast(sv.initMessage(sc), true)
}

func (sv *Server) GeometryChanged(ev geom.ChangeEvent) {
	d := sv.Session.Display()
	if d == nil {
		return
	}
	sv.broadcast(geometryMessage(ev.Version, d.Vertices()), false)
}

func (sv *Server) Error(err error) {
	sv.broadcast(&Message{Type: TypeError, Error: err.Error()}, false)
}
