package snapshot

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel carrying change notifications.
const DefaultChannel = "roomportal:changes"

// LocalNotifier refreshes snapshots in-process.
type LocalNotifier struct {
	publisher *Publisher
}

// NewLocalNotifier creates a notifier for a single instance deployment.
func NewLocalNotifier(publisher *Publisher) *LocalNotifier {
	return &LocalNotifier{publisher: publisher}
}

// Notify refreshes collection immediately.
func (n *LocalNotifier) Notify(ctx context.Context, collection string) error {
	return n.publisher.Refresh(ctx, collection)
}

// RedisBus fans change notifications out to every instance through Redis
// pub/sub. Each instance, including the writer, refreshes when it receives
// a notification.
type RedisBus struct {
	client    *redis.Client
	channel   string
	publisher *Publisher
	logger    *zap.Logger
}

// NewRedisBus creates a bus on channel (DefaultChannel when empty).
func NewRedisBus(client *redis.Client, channel string, publisher *Publisher, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBus{
		client:    client,
		channel:   channel,
		publisher: publisher,
		logger:    logger.Named("redis-bus"),
	}
}

// Notify publishes collection on the bus. If Redis is unreachable the
// local subscribers are still refreshed.
func (b *RedisBus) Notify(ctx context.Context, collection string) error {
	if err := b.client.Publish(ctx, b.channel, collection).Err(); err != nil {
		b.logger.Warn("publishing change notification",
			zap.String("collection", collection), zap.Error(err))
		return b.publisher.Refresh(ctx, collection)
	}
	return nil
}

// Run subscribes to the bus and refreshes on each notification until ctx
// is cancelled. ready, if non-nil, is closed once the subscription is live.
func (b *RedisBus) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no notification is missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	b.logger.Info("subscribed to change notifications", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if !IsCollection(msg.Payload) {
				b.logger.Warn("ignoring unknown collection", zap.String("payload", msg.Payload))
				continue
			}
			if err := b.publisher.Refresh(ctx, msg.Payload); err != nil {
				b.logger.Error("refreshing snapshot",
					zap.String("collection", msg.Payload), zap.Error(err))
			}
		}
	}
}
