// Package events relays engine events to Redis Pub/Sub so out-of-process
// UIs (the web canvas) can follow a session without linking the engine.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	gameevents "github.com/opengaia/gaia-engine/pkg/events"
)

// channelPrefix namespaces per-session event channels.
const channelPrefix = "game-events:"

// Broadcaster republishes bus events to Redis Pub/Sub, one channel per
// session. Outbound event kinds only; inbound player intents stay local.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Relay drains sub and publishes every outbound event until ctx is done or
// the channel closes. Publish failures are logged and skipped; the engine
// never blocks on a broken relay.
func (b *Broadcaster) Relay(ctx context.Context, sub <-chan gameevents.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if !isOutbound(e.Type) {
				continue
			}
			if err := b.publish(ctx, e); err != nil {
				b.logger.Error("Failed to relay event", "error", err, "event_type", e.Type)
			}
		}
	}
}

func isOutbound(t gameevents.Type) bool {
	switch t {
	case gameevents.TypeDialogueTurn, gameevents.TypeDialogueAborted, gameevents.TypeTasksChanged:
		return true
	}
	return false
}

func (b *Broadcaster) publish(ctx context.Context, e gameevents.Event) error {
	channel := channelPrefix + e.SessionID

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event relayed",
		"channel", channel,
		"event_type", e.Type)
	return nil
}
