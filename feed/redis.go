package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/eringen/artistsite/logging"
)

const DefaultChannel = "artistsite:content"

var ErrFeedClosed = errors.New("feed: redis subscription closed")

type wireChange struct {
	Key     string          `json:"key"`
	Body    json.RawMessage `json:"body,omitempty"`
	Exists  bool            `json:"exists"`
	Version int64           `json:"version"`
}

// RedisBus shares changes between instances over a redis pub/sub channel.
// Published changes are delivered to local subscribers immediately and
// again when they echo back from redis; the version check in each
// subscription discards the second copy.
type RedisBus struct {
	log     *logging.Logger
	rdb     *goredis.Client
	channel string
	local   *LocalBus
	sub     *goredis.PubSub
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRedisBus subscribes to channel and starts forwarding. The client is
// not closed by Close.
func NewRedisBus(ctx context.Context, rdb *goredis.Client, channel string, log *logging.Logger) (*RedisBus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if log == nil {
		log = logging.Nop()
	}
	if channel == "" {
		channel = DefaultChannel
	}

	sub := rdb.Subscribe(ctx, channel)
	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	fctx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		log:     log.With("service", "RedisFeed", "channel", channel),
		rdb:     rdb,
		channel: channel,
		local:   NewLocalBus(),
		sub:     sub,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go b.forward(fctx)
	return b, nil
}

func (b *RedisBus) forward(ctx context.Context) {
	defer close(b.stopped)
	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok || m == nil {
				if ctx.Err() != nil {
					return
				}
				b.log.Warn("redis feed channel closed")
				b.local.failAll(ErrFeedClosed)
				return
			}
			var w wireChange
			if err := json.Unmarshal([]byte(m.Payload), &w); err != nil {
				b.log.Warn("bad redis feed payload", "error", err)
				continue
			}
			b.local.deliver(Change{Key: w.Key, Body: w.Body, Exists: w.Exists, Version: w.Version})
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, c Change) error {
	b.local.deliver(c)
	raw, err := json.Marshal(wireChange{Key: c.Key, Body: c.Body, Exists: c.Exists, Version: c.Version})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(key string, h Handler) *Subscription {
	return b.local.Subscribe(key, h)
}

func (b *RedisBus) Close() error {
	b.cancel()
	err := b.sub.Close()
	<-b.stopped
	_ = b.local.Close()
	return err
}
