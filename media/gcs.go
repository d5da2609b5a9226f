package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket string
	// PublicURL overrides https://storage.googleapis.com/<bucket>.
	PublicURL string
	// CredentialsFile is optional; application default credentials are
	// used otherwise.
	CredentialsFile string
}

// GCSBucket stores objects in Google Cloud Storage.
type GCSBucket struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSBucket(ctx context.Context, cfg GCSConfig) (*GCSBucket, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSBucket{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

func (b *GCSBucket) Close() error {
	return b.client.Close()
}

func (b *GCSBucket) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string, progress func(int64)) error {
	w := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if progress != nil {
		w.ProgressFunc = progress
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (b *GCSBucket) Delete(ctx context.Context, name string) error {
	return b.client.Bucket(b.bucket).Object(name).Delete(ctx)
}

func (b *GCSBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Object{Name: attrs.Name, Size: attrs.Size})
	}
	return out, nil
}

func (b *GCSBucket) URL(ctx context.Context, name string) (string, error) {
	if _, err := b.client.Bucket(b.bucket).Object(name).Attrs(ctx); err != nil {
		return "", err
	}
	return b.baseURL + "/" + name, nil
}

func (b *GCSBucket) ObjectName(u string) (string, bool) {
	return trimBase(u, b.baseURL)
}
