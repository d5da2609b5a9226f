package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// PublicURL overrides the path-style endpoint URL, e.g. a CDN.
	PublicURL string
}

// S3Bucket stores objects in an S3-compatible bucket.
type S3Bucket struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewS3Bucket(cfg S3Config) (*S3Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + cfg.Bucket
	}
	return &S3Bucket{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// progressHook receives the bytes minio has just sent.
type progressHook struct {
	n        int64
	progress func(int64)
}

func (h *progressHook) Read(p []byte) (int, error) {
	h.n += int64(len(p))
	if h.progress != nil {
		h.progress(h.n)
	}
	return len(p), nil
}

func (b *S3Bucket) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string, progress func(int64)) error {
	if size <= 0 {
		size = -1
	}
	_, err := b.client.PutObject(ctx, b.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
		Progress:    &progressHook{progress: progress},
	})
	return err
}

func (b *S3Bucket) Delete(ctx context.Context, name string) error {
	return b.client.RemoveObject(ctx, b.bucket, name, minio.RemoveObjectOptions{})
}

func (b *S3Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	for info := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, info.Err
		}
		out = append(out, Object{Name: info.Key, Size: info.Size})
	}
	return out, nil
}

func (b *S3Bucket) URL(ctx context.Context, name string) (string, error) {
	if _, err := b.client.StatObject(ctx, b.bucket, name, minio.StatObjectOptions{}); err != nil {
		return "", err
	}
	return b.baseURL + "/" + name, nil
}

func (b *S3Bucket) ObjectName(u string) (string, bool) {
	return trimBase(u, b.baseURL)
}
