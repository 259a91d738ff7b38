// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Bundle is a Keras.js model artifact bundle: the Keras architecture
// JSON, the float32 little-endian weight buffer, and the weight metadata
// JSON describing where each weight lives in the buffer.
type Bundle struct {
	// Architecture is the contents of model.json.
	Architecture []byte

	// Weights is the contents of model_weights.buf.
	Weights []byte

	// Metadata is the contents of model_metadata.json.
	Metadata []byte
}

// WeightInfo is one entry of the weight metadata.
// Offset and Length count float32 values, not bytes.
type WeightInfo struct {
	LayerName  string `json:"layer_name"`
	WeightName string `json:"weight_name"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	Shape      []int  `json:"shape"`
	Type       string `json:"type"`
}

type kerasModel struct {
	ClassName string          `json:"class_name"`
	Config    json.RawMessage `json:"config"`
}

type kerasLayer struct {
	ClassName string          `json:"class_name"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
}

type kerasLayerConfig struct {
	Name            string `json:"name"`
	Units           int    `json:"units"`
	OutputDim       int    `json:"output_dim"`
	Activation      string `json:"activation"`
	UseBias         *bool  `json:"use_bias"`
	Bias            *bool  `json:"bias"`
	BatchInputShape []*int `json:"batch_input_shape"`
	BatchShape      []*int `json:"batch_shape"`
}

// inputWidth returns the last dimension of a declared batch input shape, or 0.
func (lc *kerasLayerConfig) inputWidth() int {
	shp := lc.BatchInputShape
	if len(shp) == 0 {
		shp = lc.BatchShape
	}
	if len(shp) == 0 || shp[len(shp)-1] == nil {
		return 0
	}
	return *shp[len(shp)-1]
}

func (lc *kerasLayerConfig) units() int {
	if lc.Units > 0 {
		return lc.Units
	}
	return lc.OutputDim
}

func (lc *kerasLayerConfig) useBias() bool {
	switch {
	case lc.UseBias != nil:
		return *lc.UseBias
	case lc.Bias != nil:
		return *lc.Bias
	}
	return true
}

// LoadKeras builds a [Sequential] network from a Keras.js bundle.
// Sequential and linear functional models of Dense, Activation,
// Dropout, Flatten and InputLayer layers are supported; Dropout is the
// identity at inference time.
func LoadKeras(b *Bundle) (*Sequential, error) {
	name, layers, err := parseArchitecture(b.Architecture)
	if err != nil {
		return nil, err
	}
	var meta []WeightInfo
	if err := json.Unmarshal(b.Metadata, &meta); err != nil {
		return nil, fmt.Errorf("model: decoding weight metadata: %w", err)
	}
	buf, err := decodeFloats(b.Weights)
	if err != nil {
		return nil, err
	}
	weights := make(map[string][]WeightInfo)
	for _, wi := range meta {
		if wi.Type != "" && wi.Type != "float32" {
			return nil, fmt.Errorf("model: weight %s has unsupported type %q", wi.WeightName, wi.Type)
		}
		if wi.Offset < 0 || wi.Length < 0 || wi.Offset+wi.Length > len(buf) {
			return nil, fmt.Errorf("model: weight %s [%d:+%d] is outside the %d value weight buffer", wi.WeightName, wi.Offset, wi.Length, len(buf))
		}
		weights[wi.LayerName] = append(weights[wi.LayerName], wi)
	}

	in := 0
	var seq []Layer
	for _, kl := range layers {
		var lc kerasLayerConfig
		if len(kl.Config) > 0 {
			if err := json.Unmarshal(kl.Config, &lc); err != nil {
				return nil, fmt.Errorf("model: decoding %s layer config: %w", kl.ClassName, err)
			}
		}
		if lc.Name == "" {
			lc.Name = kl.Name
		}
		if in == 0 {
			in = lc.inputWidth()
		}
		switch kl.ClassName {
		case "InputLayer", "Dropout", "Flatten":
			continue
		case "Activation":
			act := Activation(lc.Activation)
			if err := act.Validate(); err != nil {
				return nil, err
			}
			seq = append(seq, &ActivationLayer{LayerName: lc.Name, Activation: act})
		case "Dense":
			d, err := denseLayer(&lc, weights[lc.Name], buf)
			if err != nil {
				return nil, err
			}
			if in == 0 {
				in = d.In
			}
			seq = append(seq, d)
		default:
			return nil, fmt.Errorf("model: unsupported layer class %q (%s)", kl.ClassName, lc.Name)
		}
	}
	return NewSequential(name, in, seq...)
}

func parseArchitecture(arch []byte) (string, []kerasLayer, error) {
	var km kerasModel
	if err := json.Unmarshal(arch, &km); err != nil {
		return "", nil, fmt.Errorf("model: decoding architecture: %w", err)
	}
	switch km.ClassName {
	case "Sequential", "Model", "Functional":
	default:
		return "", nil, fmt.Errorf("model: unsupported model class %q", km.ClassName)
	}
	// Keras 1 and early Keras 2 store a Sequential config as the layer list.
	var layers []kerasLayer
	if err := json.Unmarshal(km.Config, &layers); err == nil {
		return strings.ToLower(km.ClassName), layers, nil
	}
	var cfg struct {
		Name   string       `json:"name"`
		Layers []kerasLayer `json:"layers"`
	}
	if err := json.Unmarshal(km.Config, &cfg); err != nil {
		return "", nil, fmt.Errorf("model: decoding architecture config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.ToLower(km.ClassName)
	}
	return cfg.Name, cfg.Layers, nil
}

func denseLayer(lc *kerasLayerConfig, ws []WeightInfo, buf []float32) (*Dense, error) {
	var kernel, bias *WeightInfo
	for i := range ws {
		wi := &ws[i]
		switch {
		case isKernel(wi.WeightName):
			kernel = wi
		case isBias(wi.WeightName):
			bias = wi
		}
	}
	if kernel == nil && len(ws) > 0 {
		kernel = &ws[0]
		if len(ws) > 1 {
			bias = &ws[1]
		}
	}
	if kernel == nil {
		return nil, fmt.Errorf("model: dense layer %s has no kernel weights", lc.Name)
	}
	if len(kernel.Shape) != 2 {
		return nil, fmt.Errorf("model: dense layer %s kernel shape %v is not 2D", lc.Name, kernel.Shape)
	}
	d := &Dense{
		LayerName:  lc.Name,
		In:         kernel.Shape[0],
		Out:        kernel.Shape[1],
		Kernel:     buf[kernel.Offset : kernel.Offset+kernel.Length],
		Activation: Activation(lc.Activation),
	}
	if u := lc.units(); u > 0 && u != d.Out {
		return nil, fmt.Errorf("model: dense layer %s declares %d units but kernel has %d", lc.Name, u, d.Out)
	}
	if lc.useBias() {
		if bias == nil {
			return nil, fmt.Errorf("model: dense layer %s has no bias weights", lc.Name)
		}
		d.Bias = buf[bias.Offset : bias.Offset+bias.Length]
	}
	return d, d.validate()
}

func isKernel(name string) bool {
	return strings.Contains(name, "kernel") || strings.HasSuffix(name, "_W") || strings.HasSuffix(name, "_W:0")
}

func isBias(name string) bool {
	return strings.Contains(name, "bias") || strings.HasSuffix(name, "_b") || strings.HasSuffix(name, "_b:0")
}

// decodeFloats decodes a little-endian float32 buffer.
func decodeFloats(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("model: weight buffer length %d is not a multiple of 4", len(b))
	}
	fs := make([]float32, len(b)/4)
	for i := range fs {
		fs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return fs, nil
}

// EncodeFloats encodes values as a little-endian float32 buffer,
// the inverse of the weight buffer decoding.
func EncodeFloats(fs []float32) []byte {
	b := make([]byte, 4*len(fs))
	for i, f := range fs {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}
