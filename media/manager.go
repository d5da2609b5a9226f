package media

import (
	"bytes"
	"context"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/artistsite/logging"
)

// Asset is one entry of a media listing.
type Asset struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumbUrl,omitempty"`
}

// Progress receives the upload percentage, 0 to 100, each time it
// changes.
type Progress func(percent int)

type Manager struct {
	bucket Bucket
	log    *logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastMs int64 // newest timestamp issued by objectName
}

func NewManager(bucket Bucket, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{bucket: bucket, log: log.With("component", "media"), now: time.Now}
}

func (m *Manager) Bucket() Bucket { return m.bucket }

// Upload validates name against the allow list for kind, streams r to
// media/<unix_ms>_<sanitized name> and returns the object's public URL.
// Objects are never overwritten.
// An unaccepted name fails with *UnsupportedFileTypeError before the bucket
// is touched; storage failures return *UploadError. Image uploads also get
// a thumbnail, best effort.
func (m *Manager) Upload(ctx context.Context, name string, size int64, r io.Reader, kind Kind, progress Progress) (string, error) {
	if !Accepts(kind, name) {
		return "", &UnsupportedFileTypeError{Name: name, Kind: kind}
	}
	object := m.objectName(name)

	last := -1
	report := func(written int64) {
		if progress == nil || size <= 0 {
			return
		}
		pct := int(min(written*100/size, 100))
		if pct != last {
			last = pct
			progress(pct)
		}
	}
	if progress != nil {
		report(0)
	}

	var img *bytes.Buffer
	if kind == KindImage {
		img = new(bytes.Buffer)
		r = io.TeeReader(r, img)
	}
	if err := m.bucket.Put(ctx, object, r, size, contentTypeFor(object), report); err != nil {
		m.log.Error("upload failed", "object", object, "error", err)
		return "", &UploadError{Name: name, Err: err}
	}
	url, err := m.bucket.URL(ctx, object)
	if err != nil {
		m.log.Error("resolve uploaded object", "object", object, "error", err)
		return "", &UploadError{Name: name, Err: err}
	}
	if progress != nil && last != 100 {
		progress(100)
	}
	if img != nil {
		m.writeThumb(ctx, object, img)
	}
	m.log.Info("uploaded media", "object", object, "bytes", size)
	return url, nil
}

// objectName issues a storage name for an upload. Timestamps strictly
// increase across calls, so two uploads of one file name in the same
// millisecond never share an object.
func (m *Manager) objectName(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := max(m.now().UnixMilli(), m.lastMs+1)
	m.lastMs = ms
	return ObjectName(time.UnixMilli(ms), name)
}

func (m *Manager) writeThumb(ctx context.Context, object string, src *bytes.Buffer) {
	data, err := thumbnail(src, thumbWidth)
	if err != nil {
		m.log.Warn("thumbnail skipped", "object", object, "error", err)
		return
	}
	name := ThumbName(object)
	if err := m.bucket.Put(ctx, name, bytes.NewReader(data), int64(len(data)), "image/jpeg", nil); err != nil {
		m.log.Warn("thumbnail upload failed", "object", name, "error", err)
	}
}

// Remove deletes the object behind url, best effort: URLs that do not map
// to a stored object and storage errors are logged, never returned.
func (m *Manager) Remove(ctx context.Context, url string) {
	object, ok := m.bucket.ObjectName(url)
	if !ok || !strings.HasPrefix(object, Prefix) {
		m.log.Warn("media delete skipped", "url", url, "error", ErrUnresolvableReference)
		return
	}
	if err := m.bucket.Delete(ctx, object); err != nil {
		m.log.Warn("media delete failed", "object", object, "error", err)
		return
	}
	if err := m.bucket.Delete(ctx, ThumbName(object)); err != nil {
		m.log.Debug("no thumbnail removed", "object", object, "error", err)
	}
	m.log.Info("deleted media", "object", object)
}

const resolveConcurrency = 8

// List returns the objects under media/ the picker shows for kind, newest
// name first. Objects whose URL cannot be resolved are left out.
func (m *Manager) List(ctx context.Context, kind Kind) ([]Asset, error) {
	objects, err := m.bucket.List(ctx, Prefix)
	if err != nil {
		return nil, err
	}
	thumbs := map[string]bool{}
	if kind == KindImage {
		if ts, err := m.bucket.List(ctx, ThumbPrefix); err == nil {
			for _, t := range ts {
				thumbs[t.Name] = true
			}
		} else {
			m.log.Debug("list thumbnails", "error", err)
		}
	}

	var names []string
	for _, o := range objects {
		if Lists(kind, o.Name) {
			names = append(names, o.Name)
		}
	}

	resolved := make([]*Asset, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, object := range names {
		g.Go(func() error {
			url, err := m.bucket.URL(gctx, object)
			if err != nil {
				m.log.Debug("skip unresolvable media", "object", object, "error", err)
				return nil
			}
			a := &Asset{Name: path.Base(object), URL: url}
			if t := ThumbName(object); thumbs[t] {
				if tu, err := m.bucket.URL(gctx, t); err == nil {
					a.ThumbURL = tu
				}
			}
			resolved[i] = a
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Asset, 0, len(resolved))
	for _, a := range resolved {
		if a != nil {
			out = append(out, *a)
		}
	}
	slices.SortFunc(out, func(a, b Asset) int { return strings.Compare(b.Name, a.Name) })
	return out, nil
}
