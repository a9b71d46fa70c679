// AngelaMos | 2026
// bus.go

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Bus carries messages to every API instance's hub.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	Start(ctx context.Context, deliver func(Message)) error
}

// LocalBus delivers in process. It suits single-instance deployments.
type LocalBus struct {
	deliver func(Message)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Start(_ context.Context, deliver func(Message)) error {
	b.deliver = deliver
	return nil
}

func (b *LocalBus) Publish(_ context.Context, msg Message) error {
	if b.deliver == nil {
		return fmt.Errorf("local bus not started")
	}
	b.deliver(msg)
	return nil
}

type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisBus(client *redis.Client, channel string, logger *slog.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "redis_bus"),
	}
}

func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode bus message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish bus message: %w", err)
	}
	return nil
}

// Start subscribes and forwards messages to deliver until ctx ends.
func (b *RedisBus) Start(ctx context.Context, deliver func(Message)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close() //nolint:errcheck // subscription never started
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close() //nolint:errcheck // shutting down
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.logger.Warn("bad bus payload", "error", err)
					continue
				}
				deliver(msg)
			}
		}
	}()

	return nil
}
