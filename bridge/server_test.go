// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cogentcore.org/morph/assets"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/model"
	"cogentcore.org/morph/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	sc, err := labels.NewSchema([]string{"macrodetails/age-old", "macrodetails/age-young", "torso/chest"})
	require.NoError(t, err)
	mdl := assets.NewFuture[model.Model]()
	disp := assets.NewFuture[*geom.Mesh]()
	ref := assets.NewFuture[*geom.Mesh]()
	lf := assets.NewFuture[*labels.Schema]()
	mdl.Resolve(&model.Func{In: 3, Out: 6, Fun: func(ctx context.Context, in []float32) ([]float32, error) {
		return []float32{in[0], 0, 0, 0, in[1], in[2]}, nil
	}}, nil)
	disp.Resolve(&geom.Mesh{Vertex: make([]float32, 6)}, nil)
	ref.Resolve(&geom.Mesh{Vertex: make([]float32, 6)}, nil)
	lf.Resolve(sc, nil)
	return session.New(assets.NewBarrier(mdl, disp, ref, lf), nil, session.Options{})
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one of the given type arrives.
func next(t *testing.T, conn *websocket.Conn, typ string) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m Message
		require.NoError(t, conn.ReadJSON(&m))
		if m.Type == typ {
			return &m
		}
	}
}

// geometryFor reads geometry messages until the given vertices arrive.
func geometryFor(t *testing.T, conn *websocket.Conn, want []float32) {
	t.Helper()
	for {
		m := next(t, conn, TypeGeometry)
		if assert.ObjectsAreEqual(want, m.Vertices) {
			return
		}
	}
}

func TestBridge(t *testing.T) {
	s := testSession(t)
	sv := New(s)
	srv := httptest.NewServer(sv)
	defer srv.Close()

	early := dial(t, srv.URL)
	require.Eventually(t, func() bool {
		sv.mu.Lock()
		defer sv.mu.Unlock()
		return len(sv.clients) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	init := next(t, early, TypeInit)
	assert.Equal(t, s.ID.String(), init.Session)
	assert.Equal(t, []string{"macrodetails/age-old", "macrodetails/age-young", "torso/chest"}, init.Labels)
	require.Len(t, init.Groups, 2)
	assert.Equal(t, "macrodetails", init.Groups[0].Name)
	assert.True(t, init.Groups[0].Open)
	assert.False(t, init.Groups[1].Open)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, init.Values)
	geometryFor(t, early, []float32{0.5, 0, 0, 0, 0.5, 0.5})

	late := dial(t, srv.URL)
	assert.Equal(t, init.Labels, next(t, late, TypeInit).Labels)

	require.NoError(t, late.WriteJSON(map[string]any{"label": "macrodetails/age-old", "value": 0.75}))
	geometryFor(t, early, []float32{0.75, 0, 0, 0, 0.5, 0.5})
	geometryFor(t, late, []float32{0.75, 0, 0, 0, 0.5, 0.5})

	require.NoError(t, early.WriteJSON(Request{Op: OpReset}))
	geometryFor(t, late, []float32{0.5, 0, 0, 0, 0.5, 0.5})

	require.NoError(t, early.WriteJSON(map[string]any{"label": "torso/chest", "value": 2}))
	assert.Contains(t, next(t, early, TypeError).Error, "range")

	require.NoError(t, early.WriteMessage(websocket.TextMessage, []byte("{")))
	assert.Contains(t, next(t, early, TypeError).Error, "invalid request")

	require.NoError(t, early.WriteJSON(Request{Op: "explode"}))
	assert.Contains(t, next(t, early, TypeError).Error, "unknown op")
}

func TestHandle(t *testing.T) {
	s := testSession(t)
	sv := New(s)
	v := 0.3
	assert.ErrorIs(t, sv.Handle(&Request{Label: "torso/chest", Value: &v}), session.ErrNotReady)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	require.NoError(t, sv.Handle(&Request{Label: "torso/chest", Value: &v}))
	assert.Equal(t, []float32{0.5, 0.5, 0.3}, s.Values())
	assert.Error(t, sv.Handle(&Request{Op: OpSet, Label: "torso/chest"}))
	require.NoError(t, sv.Handle(&Request{Op: OpRandomize}))
	assert.ErrorIs(t, sv.Handle(&Request{Op: OpSkin, Name: "none"}), session.ErrUnknownSkin)
}

func TestClient(t *testing.T) {
	s := testSession(t)
	srv := httptest.NewServer(New(s))
	defer srv.Close()
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	cl, err := Connect("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	msgs := make(chan *Message, 64)
	cl.OnMessage(func(m *Message) { msgs <- m })

	wait := func(match func(m *Message) bool) *Message {
		t.Helper()
		for {
			select {
			case m := <-msgs:
				if match(m) {
					return m
				}
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for message")
				return nil
			}
		}
	}
	init := wait(func(m *Message) bool { return m.Type == TypeInit })
	assert.Len(t, init.Labels, 3)

	require.NoError(t, cl.Set("torso/chest", 0.1))
	m := wait(func(m *Message) bool {
		return m.Type == TypeGeometry && len(m.Vertices) == 6 && m.Vertices[5] == float32(0.1)
	})
	assert.Equal(t, []float32{0.5, 0, 0, 0, 0.5, 0.1}, m.Vertices)

	require.NoError(t, cl.Send(&Request{Op: OpSkin, Name: "none"}))
	assert.Contains(t, wait(func(m *Message) bool { return m.Type == TypeError }).Error, "unknown skin")

	require.NoError(t, cl.Close())
	select {
	case <-cl.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client did not close")
	}
}
