package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pulseboard-backend/internal/platform/logger"
	"github.com/yungbote/pulseboard-backend/internal/realtime"
)

// DefaultPrefix namespaces every topic; a user's events travel on
// "<prefix>:user:<id>".
const DefaultPrefix = "pulseboard:sse"

type redisBus struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisBus publishes through rdb under prefix. The client is shared and
// is not closed by the bus.
func NewRedisBus(log *logger.Logger, rdb goredis.UniversalClient, prefix string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &redisBus{
		log:    log.With("service", "RedisSSEBus"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func topicFor(prefix, channel string) string { return prefix + ":" + channel }

// channelOf undoes topicFor; ok is false for topics outside prefix.
func channelOf(prefix, topic string) (string, bool) {
	ch, ok := strings.CutPrefix(topic, prefix+":")
	return ch, ok && ch != ""
}

// decodeMessage rebuilds a message from a pub/sub delivery. The topic is
// authoritative for the channel so a payload cannot address another user.
func decodeMessage(prefix, topic, payload string) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	ch, ok := channelOf(prefix, topic)
	if !ok {
		return msg, fmt.Errorf("topic %q outside %q", topic, prefix)
	}
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return msg, err
	}
	if msg.Event == "" {
		return msg, fmt.Errorf("message on %q has no event", topic)
	}
	msg.Channel = ch
	return msg, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if strings.TrimSpace(msg.Channel) == "" {
		return fmt.Errorf("SSE message %q has no channel", msg.Event)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, topicFor(b.prefix, msg.Channel), raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.PSubscribe(ctx, topicFor(b.prefix, "*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				msg, err := decodeMessage(b.prefix, m.Channel, m.Payload)
				if err != nil {
					b.log.Warn("Dropping redis SSE payload", "topic", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error { return nil }
