// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source opens the resource at a URI.
type Source interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// ReadAll reads the entire resource at the given URI from src.
func ReadAll(ctx context.Context, src Source, uri string) ([]byte, error) {
	rc, err := src.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileSource reads files from a directory on the local filesystem,
// or from FS if it is set (e.g., for embedded files).
// URIs may carry a file:// scheme.
type FileSource struct {

	// Dir is the directory that relative paths are resolved against.
	Dir string

	// FS, if set, is used instead of the local filesystem.
	FS fs.FS
}

func (fsrc *FileSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	p := strings.TrimPrefix(uri, "file://")
	if fsrc.FS != nil {
		return fsrc.FS.Open(path.Clean(strings.TrimPrefix(p, "/")))
	}
	if !filepath.IsAbs(p) && fsrc.Dir != "" {
		p = filepath.Join(fsrc.Dir, p)
	}
	return os.Open(p)
}

// MemSource serves resources from memory, keyed by URI.
type MemSource map[string][]byte

func (ms MemSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	b, ok := ms[uri]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// HTTPSource fetches http and https URIs.
type HTTPSource struct {

	// Client is used for requests; [http.DefaultClient] if nil.
	Client *http.Client
}

func (hs *HTTPSource) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	cl := hs.Client
	if cl == nil {
		cl = http.DefaultClient
	}
	resp, err := cl.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", uri, resp.Status)
	}
	return resp.Body, nil
}

// S3Config configures an [S3Source].
type S3Config struct {
	Region string

	// Endpoint, if set, overrides the default endpoint (e.g. MinIO).
	Endpoint string

	PathStyle bool

	// AccessKeyID and SecretAccessKey are optional static credentials.
	// When empty the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Source fetches s3://bucket/key URIs from an S3-compatible store.
type S3Source struct {
	client *s3.Client
}

// NewS3Source returns an S3 source using the static credentials in cfg,
// or the default AWS credential chain if there are none.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewS3SourceFromConfig(awsCfg, cfg), nil
}

// NewS3SourceFromConfig returns an S3 source for an already loaded AWS config.
func NewS3SourceFromConfig(awsCfg aws.Config, cfg S3Config, optFns ...func(*s3.Options)) *S3Source {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &S3Source{client: client}
}

func (ss *S3Source) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 URI %q", uri)
	}
	out, err := ss.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Router dispatches each URI to a [Source] based on its scheme.
// URIs without a scheme, or with the file scheme, go to Default.
type Router struct {
	Default Source
	schemes map[string]Source
}

// NewRouter returns a router whose default source reads files relative to dir.
// It handles http and https out of the box.
func NewRouter(dir string) *Router {
	hs := &HTTPSource{}
	return &Router{
		Default: &FileSource{Dir: dir},
		schemes: map[string]Source{"http": hs, "https": hs},
	}
}

// Handle sets the source for the given scheme.
func (rt *Router) Handle(scheme string, src Source) {
	if rt.schemes == nil {
		rt.schemes = map[string]Source{}
	}
	rt.schemes[strings.ToLower(scheme)] = src
}

// Scheme returns the scheme of uri, or "" for plain paths.
func Scheme(uri string) string {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(uri[:i])
}

func (rt *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	sc := Scheme(uri)
	if sc == "" || sc == "file" {
		if rt.Default == nil {
			return nil, fmt.Errorf("no default source for %q", uri)
		}
		return rt.Default.Open(ctx, uri)
	}
	src, ok := rt.schemes[sc]
	if !ok {
		return nil, fmt.Errorf("unsupported URI scheme %q in %q", sc, uri)
	}
	return src.Open(ctx, uri)
}
