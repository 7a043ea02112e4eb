// Package s3 implements media.StorageProvider on an S3-compatible bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/memohai/avatar/internal/config"
)

// Provider stores media objects in a single bucket.
type Provider struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// New connects to the endpoint and makes sure the bucket exists.
func New(ctx context.Context, cfg config.S3Config, publicBaseURL string) (*Provider, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &Provider{client: client, bucket: cfg.Bucket, baseURL: publicURL(cfg, publicBaseURL)}, nil
}

func (p *Provider) Put(ctx context.Context, key string, reader io.Reader) error {
	_, err := p.client.PutObject(ctx, p.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType(key),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (p *Provider) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

func (p *Provider) Delete(ctx context.Context, key string) error {
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// Ping checks that the bucket is still reachable.
func (p *Provider) Ping(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", p.bucket)
	}
	return nil
}

func (p *Provider) AccessPath(key string) string {
	return p.baseURL + "/" + strings.TrimLeft(key, "/")
}

// publicURL prefers the configured public base and falls back to
// path-style bucket addressing on the endpoint.
func publicURL(cfg config.S3Config, publicBaseURL string) string {
	if base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
