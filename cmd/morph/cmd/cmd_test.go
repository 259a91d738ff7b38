// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cogentcore.org/morph/bridge"
	"cogentcore.org/morph/config"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/model"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAssets writes a two-label, two-vertex asset set to a new
// directory and returns a config for it. The model moves vertex 0 along
// x by the first parameter and vertex 1 along y by the second.
func writeAssets(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	meta, err := json.Marshal([]model.WeightInfo{
		{LayerName: "dense_1", WeightName: "dense_1/kernel:0", Offset: 0, Length: 12, Shape: []int{2, 6}},
		{LayerName: "dense_1", WeightName: "dense_1/bias:0", Offset: 12, Length: 6, Shape: []int{6}},
	})
	require.NoError(t, err)
	files := map[string][]byte{
		"model.json": []byte(`{"class_name": "Sequential", "config": [
			{"class_name": "Dense", "config": {"name": "dense_1", "units": 6, "batch_input_shape": [null, 2]}}]}`),
		"model_weights.buf": model.EncodeFloats([]float32{
			1, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 1, 0,
			0, 0, 0, 0, 0, 0,
		}),
		"model_metadata.json": meta,
		"human_base.obj":      []byte("o human\nv 0 0 0\nv 0 0 0\n"),
		"labels.yaml":         []byte("- macrodetails/age-old\n- macrodetails/age-young\n"),
	}
	for name, b := range files {
		require.NoError(t, os.WriteFile(filepath.Join(data, name), b, 0o644))
	}
	c := config.New()
	c.Assets.Dir = dir
	c.Assets.Geometry = "data/human_base.obj"
	c.Assets.Labels = "data/labels.yaml"
	return c
}

func readOBJ(t *testing.T, r io.Reader) []float32 {
	t.Helper()
	ms, err := geom.ReadOBJ(r, "")
	require.NoError(t, err)
	return ms.Vertex
}

func TestLabels(t *testing.T) {
	c := writeAssets(t)
	var buf bytes.Buffer
	require.NoError(t, Labels(context.Background(), c, &buf, false))
	assert.Equal(t, "macrodetails (open)\n  age-old\n  age-young\n", buf.String())

	buf.Reset()
	require.NoError(t, Labels(context.Background(), c, &buf, true))
	assert.Equal(t, "- macrodetails/age-old\n- macrodetails/age-young\n", buf.String())
}

func TestApply(t *testing.T) {
	c := writeAssets(t)
	pf := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(pf, []byte(`{"macrodetails/age-old": 0.8}`), 0o644))

	var buf bytes.Buffer
	require.NoError(t, Apply(context.Background(), c, pf, "", &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "o human\n"))
	assert.Equal(t, []float32{0.8, 0, 0, 0, 0.5, 0}, readOBJ(t, &buf))

	out := filepath.Join(t.TempDir(), "out.obj")
	require.NoError(t, Apply(context.Background(), c, pf, out, nil))
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []float32{0.8, 0, 0, 0, 0.5, 0}, readOBJ(t, f))

	require.NoError(t, os.WriteFile(pf, []byte(`{"macrodetails/age-old": 1.8}`), 0o644))
	assert.Error(t, Apply(context.Background(), c, pf, "", io.Discard))

	c.Assets.Labels = "data/missing.yaml"
	assert.Error(t, Apply(context.Background(), c, pf, "", io.Discard))
}

func TestWatch(t *testing.T) {
	c := writeAssets(t)
	dir := t.TempDir()
	pf := filepath.Join(dir, "body.toml")
	out := filepath.Join(dir, "out.obj")
	require.NoError(t, os.WriteFile(pf, []byte(`"macrodetails/age-young" = 0.25`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	applied := make(chan int)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, c, pf, out, applied) }()

	wait := func(n int) {
		t.Helper()
		select {
		case got := <-applied:
			assert.Equal(t, n, got)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for application %d", n)
		}
	}
	wait(1)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0, 0, 0, 0.25, 0}, readOBJ(t, bytes.NewReader(b)))

	require.NoError(t, os.WriteFile(pf, []byte(`"macrodetails/age-young" = 0.75`), 0o644))
	// a write may be seen as several events
	select {
	case <-applied:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}
	require.Eventually(t, func() bool {
		b, err := os.ReadFile(out)
		if err != nil || len(b) == 0 {
			return false
		}
		ms, err := geom.ReadOBJ(bytes.NewReader(b), "")
		return err == nil && assert.ObjectsAreEqual([]float32{0.5, 0, 0, 0, 0.75, 0}, ms.Vertex)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestServe(t *testing.T) {
	c := writeAssets(t)
	c.Server.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listening := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, c, listening) }()

	var addr net.Addr
	select {
	case addr = <-listening:
	case err := <-done:
		t.Fatal(err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr.String()+c.Server.SocketPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m bridge.Message
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, bridge.TypeInit, m.Type)
	assert.Equal(t, []string{"macrodetails/age-old", "macrodetails/age-young"}, m.Labels)

	for m.Type != bridge.TypeGeometry {
		require.NoError(t, conn.ReadJSON(&m))
	}
	first := m.Version

	require.NoError(t, conn.WriteJSON(bridge.Request{Op: bridge.OpRandomize}))
	for m.Type != bridge.TypeGeometry || m.Version <= first {
		require.NoError(t, conn.ReadJSON(&m))
	}
	assert.Len(t, m.Vertices, 6)

	resp, err := http.Get("http://" + addr.String() + c.Server.MetricsPath)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `morph_asset_loads_total{result="ok",slot="geometry.reference"} 1`)
	assert.Contains(t, string(body), "morph_predictions_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRoot(t *testing.T) {
	c := writeAssets(t)
	cf := filepath.Join(t.TempDir(), "morph.toml")
	require.NoError(t, os.WriteFile(cf, []byte(`
[Assets]
Dir = "`+c.Assets.Dir+`"
Geometry = "data/human_base.obj"
Labels = "data/labels.yaml"
`), 0o644))

	root := NewRoot()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"labels", "--config", cf, "-q"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "age-young")

	root = NewRoot()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"apply"})
	assert.Error(t, root.Execute())
}
