// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assets loads the model, geometry, label schema and textures
// from local files, memory, http(s) or S3, and combines the required
// loads into a readiness [Barrier].
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"cogentcore.org/morph"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/metrics"
	"cogentcore.org/morph/model"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Manifest names the URIs of all assets of a session.
type Manifest struct {

	// Model is the Keras architecture JSON (model.json).
	Model string

	// Weights is the float32 weight buffer (model_weights.buf).
	Weights string

	// Metadata is the weight metadata JSON (model_metadata.json).
	Metadata string

	// Geometry is the reference mesh, as three.js JSON or OBJ.
	Geometry string

	// Labels is the label schema, as a JSON or YAML list of strings.
	Labels string

	// Textures are optional skin images; they never gate readiness.
	Textures []string
}

// Validate returns an error if a required URI is missing.
func (mf *Manifest) Validate() error {
	var errs []error
	for _, f := range []struct{ name, uri string }{
		{"model", mf.Model}, {"weights", mf.Weights}, {"metadata", mf.Metadata},
		{"geometry", mf.Geometry}, {"labels", mf.Labels},
	} {
		if f.uri == "" {
			errs = append(errs, fmt.Errorf("assets: %s URI is required", f.name))
		}
	}
	return errors.Join(errs...)
}

// Skin is a decoded texture image.
type Skin struct {
	Name  string
	URI   string
	Image *image.RGBA
}

// Loader loads assets through a [Source].
type Loader struct {
	Source Source

	// Metrics records loads; may be nil.
	Metrics *metrics.Metrics
}

// NewLoader returns a loader for the given source.
func NewLoader(src Source, mx *metrics.Metrics) *Loader {
	return &Loader{Source: src, Metrics: mx}
}

// load runs fun for the slot, recording metrics and wrapping any error
// in a [morph.AssetError].
func load[T any](ld *Loader, slot, uri string, fun func() (T, error)) (T, error) {
	st := time.Now()
	v, err := fun()
	ld.Metrics.ObserveLoad(slot, time.Since(st), err)
	if err != nil {
		var zero T
		slog.Error("assets: load failed", "slot", slot, "uri", uri, "err", err)
		return zero, &morph.AssetError{Slot: slot, URI: uri, Err: err}
	}
	slog.Debug("assets: loaded", "slot", slot, "uri", uri, "duration", time.Since(st))
	return v, nil
}

// LoadModel loads the three files of a Keras model bundle concurrently
// and builds the model from them.
func (ld *Loader) LoadModel(ctx context.Context, mf *Manifest) (*model.Sequential, error) {
	return load(ld, SlotModel, mf.Model, func() (*model.Sequential, error) {
		b := &model.Bundle{}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			b.Architecture, err = ReadAll(gctx, ld.Source, mf.Model)
			return
		})
		g.Go(func() (err error) {
			b.Weights, err = ReadAll(gctx, ld.Source, mf.Weights)
			return
		})
		g.Go(func() (err error) {
			b.Metadata, err = ReadAll(gctx, ld.Source, mf.Metadata)
			return
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return model.LoadKeras(b)
	})
}

// LoadGeometry loads one copy of the mesh at uri for the given slot.
// Every call returns a new, independent mesh.
func (ld *Loader) LoadGeometry(ctx context.Context, slot, uri string) (*geom.Mesh, error) {
	return load(ld, slot, uri, func() (*geom.Mesh, error) {
		rc, err := ld.Source.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		ms, err := geom.Read(rc, uriPath(uri))
		if err != nil {
			return nil, err
		}
		return ms, ms.Validate()
	})
}

// LoadLabels loads the label schema at uri.
func (ld *Loader) LoadLabels(ctx context.Context, uri string) (*labels.Schema, error) {
	return load(ld, SlotLabels, uri, func() (*labels.Schema, error) {
		rc, err := ld.Source.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return labels.Read(rc, labels.FormatFor(uriPath(uri)))
	})
}

// LoadTexture loads and decodes one texture image. The image type is
// sniffed from its content, not its name.
func (ld *Loader) LoadTexture(ctx context.Context, uri string) (*Skin, error) {
	return load(ld, SlotTextures, uri, func() (*Skin, error) {
		b, err := ReadAll(ctx, ld.Source, uri)
		if err != nil {
			return nil, err
		}
		kind, err := filetype.Match(b)
		if err != nil {
			return nil, err
		}
		if !filetype.IsImage(b) {
			return nil, fmt.Errorf("not an image (detected %q)", kind.MIME.Value)
		}
		im, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", kind.Extension, err)
		}
		rgba, ok := im.(*image.RGBA)
		if !ok {
			rgba = image.NewRGBA(im.Bounds())
			draw.Draw(rgba, rgba.Bounds(), im, im.Bounds().Min, draw.Src)
		}
		p := uriPath(uri)
		return &Skin{Name: strings.TrimSuffix(path.Base(p), path.Ext(p)), URI: uri, Image: rgba}, nil
	})
}

// LoadTextures loads all of the given textures concurrently.
// Failures are logged and skipped; the successfully loaded skins
// are returned in the given order.
func (ld *Loader) LoadTextures(ctx context.Context, uris []string) []*Skin {
	skins := make([]*Skin, len(uris))
	var wg sync.WaitGroup
	for i, uri := range uris {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sk, err := ld.LoadTexture(ctx, uri)
			if err == nil {
				skins[i] = sk
			}
		}()
	}
	wg.Wait()
	res := make([]*Skin, 0, len(skins))
	for _, sk := range skins {
		if sk != nil {
			res = append(res, sk)
		}
	}
	return res
}

// Loads are the futures of one full asset load.
type Loads struct {
	Barrier  *Barrier
	Textures *Future[[]*Skin]
}

// Start starts loading every asset in the manifest concurrently and
// returns the readiness barrier over the required ones. The geometry
// is loaded twice, into the display and reference slots.
func (ld *Loader) Start(ctx context.Context, mf *Manifest) (*Loads, error) {
	if err := mf.Validate(); err != nil {
		return nil, err
	}
	mdl := Go(ctx, func(ctx context.Context) (model.Model, error) {
		m, err := ld.LoadModel(ctx, mf)
		if err != nil {
			return nil, err
		}
		return m, nil
	})
	disp := Go(ctx, func(ctx context.Context) (*geom.Mesh, error) {
		return ld.LoadGeometry(ctx, SlotDisplay, mf.Geometry)
	})
	ref := Go(ctx, func(ctx context.Context) (*geom.Mesh, error) {
		return ld.LoadGeometry(ctx, SlotReference, mf.Geometry)
	})
	lbls := Go(ctx, func(ctx context.Context) (*labels.Schema, error) {
		return ld.LoadLabels(ctx, mf.Labels)
	})
	tex := Go(ctx, func(ctx context.Context) ([]*Skin, error) {
		return ld.LoadTextures(ctx, mf.Textures), nil
	})
	b := NewBarrier(mdl, disp, ref, lbls)
	b.Start(ctx)
	return &Loads{Barrier: b, Textures: tex}, nil
}

// uriPath returns the path part of uri, without any query.
func uriPath(uri string) string {
	if Scheme(uri) == "" {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return u.Path
}
