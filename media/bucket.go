package media

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
)

// Object is one stored blob.
type Object struct {
	Name string
	Size int64
}

// Bucket is a blob store with public URLs.
type Bucket interface {
	// Put stores r under name. progress, when non-nil, receives the running
	// count of bytes transferred.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string, progress func(written int64)) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]Object, error)
	// URL resolves the durable public URL of an object.
	URL(ctx context.Context, name string) (string, error)
	// ObjectName maps a URL issued by URL back to its object name.
	ObjectName(url string) (string, bool)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// countingReader reports the running byte count after each read.
type countingReader struct {
	r        io.Reader
	n        int64
	progress func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.progress != nil {
			c.progress(c.n)
		}
	}
	return n, err
}

// trimBase strips base and a following slash from u.
func trimBase(u, base string) (string, bool) {
	base = strings.TrimRight(base, "/") + "/"
	if base == "/" || !strings.HasPrefix(u, base) {
		return "", false
	}
	name := strings.TrimPrefix(u, base)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}
