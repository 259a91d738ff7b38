// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"cogentcore.org/morph"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/metrics"
	"cogentcore.org/morph/model"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

const testArch = `{"class_name": "Sequential", "config": [
	{"class_name": "Dense", "config": {"name": "dense_1", "units": 6, "activation": "linear", "batch_input_shape": [null, 2]}}
]}`

const testGeometry = `{"metadata": {"formatVersion": 3}, "vertices": [0,0,0, 0,0,0], "faces": []}`

const testLabels = `["macrodetails/age-old", "macrodetails/age-young"]`

// testSource serves a 2-label model that moves the first vertex by the
// first parameter along x and the second vertex by the second along y.
func testSource(t *testing.T) MemSource {
	t.Helper()
	w := []float32{
		1, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 0,
	}
	meta, err := json.Marshal([]model.WeightInfo{
		{LayerName: "dense_1", WeightName: "dense_1/kernel:0", Offset: 0, Length: 12, Shape: []int{2, 6}},
		{LayerName: "dense_1", WeightName: "dense_1/bias:0", Offset: 12, Length: 6, Shape: []int{6}},
	})
	require.NoError(t, err)

	var pb bytes.Buffer
	im := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	im.Set(1, 1, color.NRGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(&pb, im))
	var bb bytes.Buffer
	require.NoError(t, bmp.Encode(&bb, im))

	return MemSource{
		"data/model.json":          []byte(testArch),
		"data/model_weights.buf":   model.EncodeFloats(w),
		"data/model_metadata.json": meta,
		"data/human.json":          []byte(testGeometry),
		"data/labels.json":         []byte(testLabels),
		"data/skins/young.png":     pb.Bytes(),
		"data/skins/old.bmp":       bb.Bytes(),
		"data/skins/notes.txt":     []byte("not an image"),
	}
}

func testManifest() *Manifest {
	return &Manifest{
		Model:    "data/model.json",
		Weights:  "data/model_weights.buf",
		Metadata: "data/model_metadata.json",
		Geometry: "data/human.json",
		Labels:   "data/labels.json",
		Textures: []string{"data/skins/young.png", "data/skins/notes.txt", "data/skins/old.bmp"},
	}
}

func TestLoaderStart(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	ld := NewLoader(testSource(t), metrics.New(reg))
	ctx := context.Background()
	loads, err := ld.Start(ctx, testManifest())
	require.NoError(t, err)

	r, err := loads.Barrier.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loads.Barrier.Fires())
	assert.Equal(t, []string{"macrodetails/age-old", "macrodetails/age-young"}, r.Schema.Strings())
	assert.Equal(t, 2, r.Model.InputWidth())
	assert.Equal(t, 6, r.Model.OutputWidth())
	assert.NotSame(t, r.Display, r.Reference)
	assert.Equal(t, r.Display.Vertex, r.Reference.Vertex)

	out, err := r.Model.Predict(ctx, []float32{1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0}, out)

	skins, err := loads.Textures.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, skins, 2)
	assert.Equal(t, "young", skins[0].Name)
	assert.Equal(t, "old", skins[1].Name)
	assert.Equal(t, image.Rect(0, 0, 2, 2), skins[1].Image.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, skins[0].Image.RGBAAt(1, 1))

	assert.Equal(t, 1.0, testutil.ToFloat64(ld.Metrics.AssetLoads.WithLabelValues(SlotDisplay, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ld.Metrics.AssetLoads.WithLabelValues(SlotReference, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ld.Metrics.AssetLoads.WithLabelValues(SlotTextures, "failure")))
}

func TestLoaderFailure(t *testing.T) {
	src := testSource(t)
	src["data/labels.json"] = []byte(`["a/b", "a/b"]`)
	ld := NewLoader(src, nil)
	loads, err := ld.Start(context.Background(), testManifest())
	require.NoError(t, err)

	_, err = loads.Barrier.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, morph.ErrAssetLoad)
	var ae *morph.AssetError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, SlotLabels, ae.Slot)
	assert.Equal(t, "data/labels.json", ae.URI)
	assert.Equal(t, 0, loads.Barrier.Fires())
	select {
	case <-loads.Barrier.Ready():
		t.Fatal("barrier became ready after a failed load")
	default:
	}
}

func TestLoaderMissing(t *testing.T) {
	src := testSource(t)
	delete(src, "data/model_weights.buf")
	ld := NewLoader(src, nil)
	_, err := ld.LoadModel(context.Background(), testManifest())
	assert.ErrorIs(t, err, morph.ErrAssetLoad)

	mf := testManifest()
	mf.Labels = ""
	_, err = ld.Start(context.Background(), mf)
	assert.Error(t, err)
}

func TestBarrierOrders(t *testing.T) {
	orders := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
	}
	for _, order := range orders {
		mdl := NewFuture[model.Model]()
		disp := NewFuture[*geom.Mesh]()
		ref := NewFuture[*geom.Mesh]()
		lbls := NewFuture[*labels.Schema]()
		b := NewBarrier(mdl, disp, ref, lbls)
		b.Start(context.Background())

		resolve := []func(){
			func() { mdl.Resolve(&model.Func{In: 2, Out: 6}, nil) },
			func() { disp.Resolve(testMesh(), nil) },
			func() { ref.Resolve(testMesh(), nil) },
			func() { lbls.Resolve(testSchema(t), nil) },
		}
		for i, ix := range order {
			select {
			case <-b.Ready():
				t.Fatalf("order %v: ready after only %d resolved", order, i)
			case <-time.After(time.Millisecond):
			}
			resolve[ix]()
		}
		r, err := b.Wait(context.Background())
		require.NoError(t, err, "order %v", order)
		assert.NotNil(t, r.Model)
		assert.Equal(t, 1, b.Fires())
		// resolving again has no effect
		assert.False(t, mdl.Resolve(nil, assert.AnError))
		r2, err := b.Wait(context.Background())
		require.NoError(t, err)
		assert.Same(t, r, r2)
		assert.Equal(t, 1, b.Fires())
	}
}

func TestBarrierAnyFailure(t *testing.T) {
	for slot := range 4 {
		mdl := NewFuture[model.Model]()
		disp := NewFuture[*geom.Mesh]()
		ref := NewFuture[*geom.Mesh]()
		lbls := NewFuture[*labels.Schema]()
		b := NewBarrier(mdl, disp, ref, lbls)
		errFor := func(i int) error {
			if i == slot {
				return assert.AnError
			}
			return nil
		}
		mdl.Resolve(&model.Func{In: 2, Out: 6}, errFor(0))
		disp.Resolve(testMesh(), errFor(1))
		ref.Resolve(testMesh(), errFor(2))
		lbls.Resolve(testSchema(t), errFor(3))

		_, err := b.Wait(context.Background())
		assert.ErrorIs(t, err, morph.ErrAssetLoad)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0, b.Fires())
		select {
		case <-b.Ready():
			t.Fatalf("slot %d: ready after failure", slot)
		default:
		}
	}
}

func TestBarrierSameGeometry(t *testing.T) {
	ms := testMesh()
	mdl := NewFuture[model.Model]()
	disp := NewFuture[*geom.Mesh]()
	ref := NewFuture[*geom.Mesh]()
	lbls := NewFuture[*labels.Schema]()
	mdl.Resolve(&model.Func{In: 2, Out: 6}, nil)
	disp.Resolve(ms, nil)
	ref.Resolve(ms, nil)
	lbls.Resolve(testSchema(t), nil)
	_, err := NewBarrier(mdl, disp, ref, lbls).Wait(context.Background())
	assert.ErrorIs(t, err, morph.ErrAssetLoad)
}

func TestBarrierCanceled(t *testing.T) {
	b := NewBarrier(NewFuture[model.Model](), NewFuture[*geom.Mesh](), NewFuture[*geom.Mesh](), NewFuture[*labels.Schema]())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-b.Done()
	assert.Equal(t, 0, b.Fires())
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "labels.json"), []byte(testLabels), 0o644))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/labels.json" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, testLabels)
	}))
	defer srv.Close()

	rt := NewRouter(dir)
	rt.Handle("mem", MemSource{"mem://labels": []byte(`["x/y"]`)})
	ctx := context.Background()
	for _, uri := range []string{"labels.json", "file://" + filepath.Join(dir, "labels.json"), srv.URL + "/data/labels.json"} {
		b, err := ReadAll(ctx, rt, uri)
		require.NoError(t, err, uri)
		assert.Equal(t, testLabels, string(b))
	}
	b, err := ReadAll(ctx, rt, "mem://labels")
	require.NoError(t, err)
	assert.Equal(t, `["x/y"]`, string(b))

	_, err = ReadAll(ctx, rt, srv.URL+"/missing.json")
	assert.Error(t, err)
	_, err = ReadAll(ctx, rt, "ftp://host/labels.json")
	assert.Error(t, err)

	ld := NewLoader(rt, nil)
	sc, err := ld.LoadLabels(ctx, srv.URL+"/data/labels.json?v=2")
	require.NoError(t, err)
	assert.Equal(t, 2, sc.Len())
}

func TestFileSourceFS(t *testing.T) {
	fsrc := &FileSource{FS: fstest.MapFS{"data/labels.yaml": {Data: []byte("- a/b\n- a/c\n")}}}
	sc, err := NewLoader(fsrc, nil).LoadLabels(context.Background(), "data/labels.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "a/c"}, sc.Strings())
}

// s3RoundTripper serves path-style GetObject requests from memory.
type s3RoundTripper map[string]string

func (m s3RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body, ok := m[strings.TrimPrefix(req.URL.Path, "/")]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{"Content-Type": {"application/xml"}},
			Body: io.NopCloser(strings.NewReader(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code></Error>`))}, nil
	}
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{"Content-Type": {"application/json"}},
		ContentLength: int64(len(body)), Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source(t *testing.T) {
	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	rt := s3RoundTripper{"assets/human/labels.json": testLabels}
	src := NewS3SourceFromConfig(awsCfg, S3Config{Endpoint: "https://mock.s3.local", PathStyle: true}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
	})

	router := NewRouter("")
	router.Handle("s3", src)
	b, err := ReadAll(ctx, router, "s3://assets/human/labels.json")
	require.NoError(t, err)
	assert.Equal(t, testLabels, string(b))

	_, err = ReadAll(ctx, router, "s3://assets/human/missing.json")
	assert.Error(t, err)
	_, err = ReadAll(ctx, router, "s3://assets")
	assert.Error(t, err)
}

func testMesh() *geom.Mesh {
	return &geom.Mesh{Name: "pair", Vertex: []float32{0, 0, 0, 0, 0, 0}}
}

func testSchema(t *testing.T) *labels.Schema {
	t.Helper()
	sc, err := labels.NewSchema([]string{"macrodetails/age-old", "macrodetails/age-young"})
	require.NoError(t, err)
	return sc
}
