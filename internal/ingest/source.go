package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelmondragon/salesdesk-backend/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source yields the raw CSV dataset.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Local reports whether the source is already a file on disk and needs no cache copy.
	Local() bool
	String() string
}

// NewSource picks a source implementation from the configured location:
// http(s) URLs, s3://bucket/key objects, or a local path.
func NewSource(ctx context.Context, cfg config.IngestConfig, s3cfg config.S3Config) (Source, error) {
	location := strings.TrimSpace(cfg.Source)
	if location == "" {
		return nil, errors.New("ingest source is required")
	}

	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return NewHTTPSource(location, &http.Client{Timeout: cfg.HTTPTimeout}), nil
		case "s3":
			client, err := newS3Client(ctx, s3cfg)
			if err != nil {
				return nil, err
			}
			return NewS3Source(client, u.Host, strings.TrimPrefix(u.Path, "/"))
		case "file":
			return NewFileSource(u.Path), nil
		}
	}
	return NewFileSource(location), nil
}

// HTTPSource downloads the dataset over HTTP. Redirects are followed by the client.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(rawURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &HTTPSource{url: rawURL, client: client}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download dataset: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *HTTPSource) Local() bool { return false }

func (s *HTTPSource) String() string { return s.url }

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the dataset from an S3-compatible object store.
type S3Source struct {
	client objectGetter
	bucket string
	key    string
}

func NewS3Source(client objectGetter, bucket, key string) (*S3Source, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 source needs bucket and key, got %q/%q", bucket, key)
	}
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s: %w", s.String(), err)
	}
	return out.Body, nil
}

func (s *S3Source) Local() bool { return false }

func (s *S3Source) String() string { return "s3://" + s.bucket + "/" + s.key }

func newS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// FileSource reads a dataset that is already on disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open(context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return f, nil
}

func (s *FileSource) Local() bool { return true }

func (s *FileSource) String() string { return s.path }

// Materialize returns a path to the dataset on disk, copying remote sources
// into cachePath once. An existing non-empty cache file is reused.
func Materialize(ctx context.Context, src Source, cachePath string) (string, error) {
	if src.Local() {
		return src.String(), nil
	}
	if cachePath == "" {
		return "", errors.New("cache path is required for remote sources")
	}
	if info, err := os.Stat(cachePath); err == nil && info.Size() > 0 {
		return cachePath, nil
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	body, err := src.Open(ctx)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(cachePath), filepath.Base(cachePath)+".*.part")
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, cachePath); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("move cache file: %w", err)
	}
	return cachePath, nil
}
