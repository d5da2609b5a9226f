package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/eringen/artistsite/content"
	"github.com/eringen/artistsite/feed"
	"github.com/eringen/artistsite/logging"
)

// The site content lives in a single fixed document.
const (
	Collection = "site"
	DocumentID = "content"
)

// Documents is the document storage the content client needs. *Store
// implements it.
type Documents interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Put(ctx context.Context, collection, id string, body []byte) (int64, error)
	PutIfVersion(ctx context.Context, collection, id string, body []byte, base int64) (int64, error)
	Update(ctx context.Context, collection, id string, fn UpdateFunc) (int64, error)
	Subscribe(collection, id string, h feed.Handler) *feed.Subscription
}

// Client reads and writes the site content document. Every value it hands
// out is fully merged with the defaults.
type Client struct {
	docs Documents
	log  *logging.Logger
}

func NewClient(docs Documents, log *logging.Logger) *Client {
	if log == nil {
		log = logging.Nop()
	}
	return &Client{docs: docs, log: log.With("component", "content-client")}
}

// Fetch reads the document once. A missing document yields the defaults
// and version 0; read and decode failures are returned as
// *ContentReadError.
func (c *Client) Fetch(ctx context.Context) (content.SiteContent, int64, error) {
	doc, err := c.docs.Get(ctx, Collection, DocumentID)
	if errors.Is(err, ErrNotFound) {
		return content.Defaults(), 0, nil
	}
	if err != nil {
		return content.Defaults(), 0, &ContentReadError{Op: "fetch", Err: err}
	}
	sc, err := c.decode(doc.Body, doc.Version)
	if err != nil {
		return content.Defaults(), 0, &ContentReadError{Op: "fetch", Err: err}
	}
	return sc, doc.Version, nil
}

// decode merges a stored body with the defaults. Sections that do not
// decode are logged and replaced by their defaults; only a body that is
// not a JSON object is an error.
func (c *Client) decode(body []byte, version int64) (content.SiteContent, error) {
	sc, err := content.MergeBody(body, content.Defaults())
	var derr *content.DecodeError
	if errors.As(err, &derr) {
		for _, se := range derr.Sections {
			c.log.Warn("stored section unreadable, using defaults", "section", se.Section, "version", version, "error", se.Err)
		}
		return sc, nil
	}
	return sc, err
}

// FetchOnce is Fetch for renderers: failures are logged and the defaults
// returned, so it never fails.
func (c *Client) FetchOnce(ctx context.Context) content.SiteContent {
	sc, _, err := c.Fetch(ctx)
	if err != nil {
		c.log.Error("fetch site content, using defaults", "error", err)
	}
	return sc
}

// Subscribe delivers the current content to onUpdate and then every later
// change, in write order. On a read or feed failure onUpdate receives the
// defaults and onError the *ContentReadError. The subscription ends when
// ctx is done or the returned function is called.
func (c *Client) Subscribe(ctx context.Context, onUpdate func(content.SiteContent), onError func(error)) func() {
	if onError == nil {
		onError = func(error) {}
	}
	sub := c.docs.Subscribe(Collection, DocumentID, func(ch feed.Change) {
		if ch.Err != nil {
			err := &ContentReadError{Op: "subscribe", Err: ch.Err}
			c.log.Error("content subscription failed", "error", err)
			onUpdate(content.Defaults())
			onError(err)
			return
		}
		if !ch.Exists {
			onUpdate(content.Defaults())
			return
		}
		sc, err := c.decode(ch.Body, ch.Version)
		if err != nil {
			rerr := &ContentReadError{Op: "subscribe", Err: err}
			c.log.Error("decode content change", "version", ch.Version, "error", rerr)
			onUpdate(content.Defaults())
			onError(rerr)
			return
		}
		onUpdate(sc)
	})
	stop := context.AfterFunc(ctx, sub.Cancel)

	key := Key(Collection, DocumentID)
	doc, err := c.docs.Get(ctx, Collection, DocumentID)
	switch {
	case errors.Is(err, ErrNotFound):
		sub.Offer(feed.Change{Key: key})
	case err != nil:
		sub.Fail(err)
	default:
		sub.Offer(feed.Change{Key: key, Body: doc.Body, Exists: true, Version: doc.Version})
	}

	return func() {
		stop()
		sub.Cancel()
	}
}

func encode(sc content.SiteContent) ([]byte, error) {
	return json.Marshal(content.Normalize(content.Clone(sc)))
}

// Save overwrites the document with exactly sc.
func (c *Client) Save(ctx context.Context, sc content.SiteContent) error {
	body, err := encode(sc)
	if err != nil {
		return &ContentWriteError{Op: "save", Err: err}
	}
	if _, err := c.docs.Put(ctx, Collection, DocumentID, body); err != nil {
		return &ContentWriteError{Op: "save", Err: err}
	}
	return nil
}

// SaveIfVersion overwrites the document only if it is still at version
// base, failing with ErrStaleVersion otherwise.
func (c *Client) SaveIfVersion(ctx context.Context, sc content.SiteContent, base int64) (int64, error) {
	body, err := encode(sc)
	if err != nil {
		return 0, &ContentWriteError{Op: "save", Err: err}
	}
	v, err := c.docs.PutIfVersion(ctx, Collection, DocumentID, body, base)
	if err != nil {
		return 0, &ContentWriteError{Op: "save", Err: err}
	}
	return v, nil
}

// EnsureSeeded writes the defaults into the document, keeping every field
// already stored. Objects are filled in recursively; stored lists and
// scalars are never replaced. Calling it on a complete document is a
// no-op.
func (c *Client) EnsureSeeded(ctx context.Context) error {
	defaults, err := json.Marshal(content.Defaults())
	if err != nil {
		return &ContentWriteError{Op: "seed", Err: err}
	}
	_, err = c.docs.Update(ctx, Collection, DocumentID, func(current []byte, exists bool) ([]byte, error) {
		if !exists {
			return defaults, nil
		}
		var stored, def map[string]any
		if err := json.Unmarshal(current, &stored); err != nil {
			return nil, fmt.Errorf("decode stored content: %w", err)
		}
		if stored == nil {
			stored = map[string]any{}
		}
		if err := json.Unmarshal(defaults, &def); err != nil {
			return nil, err
		}
		merged := fillMissing(cloneMap(stored), def)
		if reflect.DeepEqual(merged, stored) {
			return nil, nil
		}
		return json.Marshal(merged)
	})
	if err != nil {
		return &ContentWriteError{Op: "seed", Err: err}
	}
	return nil
}

// fillMissing copies keys of def absent (or null) in dst into dst,
// recursing where both sides hold objects.
func fillMissing(dst, def map[string]any) map[string]any {
	for k, dv := range def {
		cur, ok := dst[k]
		if !ok || cur == nil {
			dst[k] = dv
			continue
		}
		cm, cok := cur.(map[string]any)
		dm, dok := dv.(map[string]any)
		if cok && dok {
			dst[k] = fillMissing(cm, dm)
		}
	}
	return dst
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if vm, ok := v.(map[string]any); ok {
			out[k] = cloneMap(vm)
			continue
		}
		out[k] = v
	}
	return out
}
