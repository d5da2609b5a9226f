// Package revalidate carries named cache invalidation signals from the
// admin save path to the page caches that depend on site content.
package revalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/eringen/artistsite/logging"
)

// TagSiteContent marks every page rendered from the site content document.
const TagSiteContent = "site-content"

type Invalidator interface {
	Invalidate(ctx context.Context, tag string) error
}

// Registry runs the handlers registered for a tag in this process.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]func()
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]func())}
}

// On registers fn to run whenever tag is invalidated.
func (r *Registry) On(tag string, fn func()) {
	r.mu.Lock()
	r.handlers[tag] = append(r.handlers[tag], fn)
	r.mu.Unlock()
}

func (r *Registry) Invalidate(_ context.Context, tag string) error {
	r.mu.RLock()
	fns := append([]func(){}, r.handlers[tag]...)
	r.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
	return nil
}

type message struct {
	Tag    string `json:"tag"`
	Source string `json:"source"`
}

// RedisInvalidator runs local handlers and broadcasts the tag so other
// instances drop their caches too. Messages an instance sent itself are
// ignored on receipt.
type RedisInvalidator struct {
	local   *Registry
	rdb     *goredis.Client
	channel string
	id      string
	log     *logging.Logger
	sub     *goredis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
}

const DefaultChannel = "artistsite:revalidate"

func NewRedisInvalidator(ctx context.Context, rdb *goredis.Client, local *Registry, channel string, log *logging.Logger) (*RedisInvalidator, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logging.Nop()
	}
	sub := rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	lctx, cancel := context.WithCancel(context.Background())
	r := &RedisInvalidator{
		local:   local,
		rdb:     rdb,
		channel: channel,
		id:      uuid.NewString(),
		log:     log.With("service", "RedisInvalidator"),
		sub:     sub,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go r.listen(lctx)
	return r, nil
}

func (r *RedisInvalidator) listen(ctx context.Context) {
	defer close(r.done)
	ch := r.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.log.Warn("bad invalidation payload", "error", err)
				continue
			}
			if msg.Source == r.id {
				continue
			}
			_ = r.local.Invalidate(ctx, msg.Tag)
		}
	}
}

// Invalidate drops local caches first; a failed broadcast is returned but
// the local caches are already clean.
func (r *RedisInvalidator) Invalidate(ctx context.Context, tag string) error {
	_ = r.local.Invalidate(ctx, tag)
	raw, err := json.Marshal(message{Tag: tag, Source: r.id})
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("broadcast invalidation: %w", err)
	}
	return nil
}

func (r *RedisInvalidator) Close() error {
	r.cancel()
	err := r.sub.Close()
	<-r.done
	return err
}
