// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration structs for morph,
// which are set from `default:` field tags, then overlaid from an
// optional TOML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cogentcore.org/morph/assets"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the configuration.
const (
	EnvAssetsDir  = "MORPH_ASSETS_DIR"
	EnvS3Region   = "MORPH_S3_REGION"
	EnvS3Endpoint = "MORPH_S3_ENDPOINT"
	EnvS3KeyID    = "MORPH_S3_ACCESS_KEY_ID"
	EnvS3Secret   = "MORPH_S3_SECRET_ACCESS_KEY"
)

// Config is the main config struct.
type Config struct {
	Assets    Assets
	S3        S3
	Inference Inference
	Random    Random
	Server    Server
}

// Assets are the locations of the assets. Each is a file path,
// relative to Dir unless absolute, or an http(s):// or s3:// URI.
type Assets struct {

	// Dir is the directory that relative asset paths are resolved against.
	Dir string `default:"."`

	// Model is the Keras model architecture JSON.
	Model string `default:"data/model.json"`

	// Weights is the float32 weight buffer.
	Weights string `default:"data/model_weights.buf"`

	// Metadata is the weight metadata JSON.
	Metadata string `default:"data/model_metadata.json"`

	// Geometry is the reference mesh (three.js JSON or OBJ).
	Geometry string `default:"data/human_base.json"`

	// Labels is the label schema (JSON or YAML).
	Labels string `default:"data/labels.json"`

	// Textures are skin images.
	Textures []string

	// TextureDir, if set, adds every file in it to Textures.
	TextureDir string
}

// S3 configures access to s3:// assets.
type S3 struct {
	Region string `default:"us-east-1"`

	// Endpoint is an optional custom endpoint, e.g. for MinIO.
	Endpoint string

	// PathStyle uses path-style addressing.
	PathStyle bool

	// AccessKeyID and SecretAccessKey are optional static credentials,
	// normally given through the environment.
	AccessKeyID     string
	SecretAccessKey string
}

// Inference configures the model runs.
type Inference struct {

	// Timeout bounds each prediction; 0 means no limit.
	Timeout Duration `default:"0s"`

	// Workers is the number of goroutines used to apply the output
	// to the geometry; 0 means GOMAXPROCS.
	Workers int `default:"0"`
}

// Random is the distribution that randomize draws from.
type Random struct {
	Mean   float64 `default:"0.5"`
	StdDev float64 `default:"0.2"`

	// Seed seeds the generator; 0 means seeded from the clock.
	Seed int64 `default:"0"`
}

// Server configures the serve command.
type Server struct {
	Addr        string `default:":8080"`
	MetricsPath string `default:"/metrics"`
	SocketPath  string `default:"/ws"`
}

// Duration is a [time.Duration] that is read and written as a string
// such as "1.5s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New returns a new config with default values.
func New() *Config {
	c := &Config{}
	if err := SetFromDefaultTags(c); err != nil {
		panic(err)
	}
	return c
}

// Open returns the config read from the given TOML file on top of the
// defaults, with environment overrides and paths expanded. An empty
// filename gives the defaults with environment overrides.
func Open(filename string) (*Config, error) {
	c := New()
	if filename != "" {
		fn, err := homedir.Expand(filename)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(fn)
		if err != nil {
			return nil, err
		}
		if err := c.Decode(b); err != nil {
			return nil, fmt.Errorf("config: %s: %w", filename, err)
		}
	}
	c.ApplyEnv()
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode overlays the given TOML onto the config.
// Unknown keys are an error.
func (c *Config) Decode(b []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Encode returns the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// ApplyEnv applies the environment variable overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAssetsDir); v != "" {
		c.Assets.Dir = v
	}
	if v := os.Getenv(EnvS3Region); v != "" {
		c.S3.Region = v
	}
	if v := os.Getenv(EnvS3Endpoint); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv(EnvS3KeyID); v != "" {
		c.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3Secret); v != "" {
		c.S3.SecretAccessKey = v
	}
}

// Finalize expands home directories, adds the files in TextureDir to
// Textures, and checks the values.
func (c *Config) Finalize() error {
	dir, err := homedir.Expand(c.Assets.Dir)
	if err != nil {
		return err
	}
	c.Assets.Dir = dir
	if c.Assets.TextureDir != "" {
		td := c.Path(c.Assets.TextureDir)
		ents, err := os.ReadDir(td)
		if err != nil {
			return fmt.Errorf("config: texture directory: %w", err)
		}
		for _, e := range ents {
			if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				c.Assets.Textures = append(c.Assets.Textures, filepath.Join(td, e.Name()))
			}
		}
	}
	var errs []error
	if c.Random.StdDev < 0 {
		errs = append(errs, fmt.Errorf("config: Random.StdDev must not be negative, got %g", c.Random.StdDev))
	}
	if c.Random.Mean < 0 || c.Random.Mean > 1 {
		errs = append(errs, fmt.Errorf("config: Random.Mean must be in [0, 1], got %g", c.Random.Mean))
	}
	if c.Inference.Workers < 0 {
		errs = append(errs, fmt.Errorf("config: Inference.Workers must not be negative, got %d", c.Inference.Workers))
	}
	if c.Inference.Timeout < 0 {
		errs = append(errs, errors.New("config: Inference.Timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// Path resolves an asset path: URIs are returned unchanged, ~ is
// expanded, and relative paths are joined to Assets.Dir.
func (c *Config) Path(p string) string {
	if p == "" || assets.Scheme(p) != "" {
		return p
	}
	if ep, err := homedir.Expand(p); err == nil {
		p = ep
	}
	if !filepath.IsAbs(p) && c.Assets.Dir != "" {
		p = filepath.Join(c.Assets.Dir, p)
	}
	return p
}

// Manifest returns the asset manifest with all paths resolved.
func (c *Config) Manifest() *assets.Manifest {
	mf := &assets.Manifest{
		Model:    c.Path(c.Assets.Model),
		Weights:  c.Path(c.Assets.Weights),
		Metadata: c.Path(c.Assets.Metadata),
		Geometry: c.Path(c.Assets.Geometry),
		Labels:   c.Path(c.Assets.Labels),
	}
	for _, t := range c.Assets.Textures {
		mf.Textures = append(mf.Textures, c.Path(t))
	}
	return mf
}

// S3Config returns the S3 source configuration.
func (c *Config) S3Config() assets.S3Config {
	return assets.S3Config{
		Region:          c.S3.Region,
		Endpoint:        c.S3.Endpoint,
		PathStyle:       c.S3.PathStyle,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
	}
}

// UsesS3 returns whether any asset is stored in S3.
func (c *Config) UsesS3() bool {
	mf := c.Manifest()
	for _, u := range append([]string{mf.Model, mf.Weights, mf.Metadata, mf.Geometry, mf.Labels}, mf.Textures...) {
		if assets.Scheme(u) == "s3" {
			return true
		}
	}
	return false
}
