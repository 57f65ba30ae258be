// Package relay moves encoded announcements into the broadcast domain.
//
// Local hands them straight to the in-process hub. Redis routes them through
// a Pub/Sub channel so that every instance subscribed to it, this one
// included, broadcasts to its own viewers.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Broadcaster is the part of the hub a relay needs.
type Broadcaster interface {
	Broadcast(msg []byte) int
}

type Local struct {
	hub Broadcaster
}

func NewLocal(hub Broadcaster) *Local {
	return &Local{hub: hub}
}

func (l *Local) Publish(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.hub.Broadcast(msg)
	return nil
}

type Redis struct {
	client  *redis.Client
	channel string
	hub     Broadcaster
	logger  *slog.Logger
}

func NewRedis(client *redis.Client, channel string, hub Broadcaster, logger *slog.Logger) *Redis {
	return &Redis{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
	}
}

func (r *Redis) Publish(ctx context.Context, msg []byte) error {
	if err := r.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the channel and broadcasts every message it receives.
// Blocks until ctx is cancelled.
func (r *Redis) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = pubsub.Close()
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", r.channel, err)
	}
	r.logger.Info("subscribed to announcement channel", "channel", r.channel)

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Redis) deliver(payload string) {
	n := r.hub.Broadcast([]byte(payload))
	r.logger.Debug("relayed announcement", "channel", r.channel, "viewers", n)
}
