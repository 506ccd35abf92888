package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// channelName returns the pub/sub channel carrying one board's widget events.
func channelName(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":events"
}

// cacheKey returns the snapshot cache key for one board's widget set.
func cacheKey(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":widgets"
}

// RedisHub publishes widget events through redis pub/sub and fronts the
// widget list with a snapshot cache, so every API replica sees the same
// stream and the same cache.
type RedisHub struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisHub creates a hub backed by the given redis client.
func NewRedisHub(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisHub {
	return &RedisHub{client: client, ttl: ttl, logger: log}
}

// Publish pushes one widget event onto the board's channel.
func (h *RedisHub) Publish(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := h.client.Publish(ctx, channelName(event.BoardID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// Subscribe delivers the board's widget event stream. The cancel function
// tears down the redis subscription; it must be called on board switch.
func (h *RedisHub) Subscribe(ctx context.Context, boardID uuid.UUID) (<-chan Event, func(), error) {
	return h.subscribe(ctx, boardID)
}

// Event aliases the port type so callers outside the package read naturally.
type Event = ports.Event

func (h *RedisHub) subscribe(ctx context.Context, boardID uuid.UUID) (<-chan Event, func(), error) {
	sub := h.client.Subscribe(ctx, channelName(boardID))

	// Force the subscription handshake so a broken connection fails here,
	// not silently inside the pump goroutine.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to board channel: %w", err)
	}

	out := make(chan Event, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		src := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					h.logger.Warn("Dropping undecodable board event", "board_id", boardID, "error", err)
					continue
				}
				select {
				case out <- event:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cancel := func() {
		close(done)
		_ = sub.Close()
	}

	return out, cancel, nil
}

// GetWidgets returns the cached widget snapshot for a board, if present.
func (h *RedisHub) GetWidgets(ctx context.Context, boardID uuid.UUID) ([]*entities.Widget, bool) {
	payload, err := h.client.Get(ctx, cacheKey(boardID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("Board cache read failed", "board_id", boardID, "error", err)
		}
		return nil, false
	}

	var widgets []*entities.Widget
	if err := json.Unmarshal(payload, &widgets); err != nil {
		h.logger.Warn("Board cache entry corrupt, invalidating", "board_id", boardID, "error", err)
		h.Invalidate(ctx, boardID)
		return nil, false
	}

	for _, w := range widgets {
		w.Rotation = w.Settings.Rotation()
	}

	return widgets, true
}

// SetWidgets stores a board's widget snapshot with the configured TTL.
func (h *RedisHub) SetWidgets(ctx context.Context, boardID uuid.UUID, widgets []*entities.Widget) {
	payload, err := json.Marshal(widgets)
	if err != nil {
		h.logger.Warn("Board cache encode failed", "board_id", boardID, "error", err)
		return
	}

	if err := h.client.Set(ctx, cacheKey(boardID), payload, h.ttl).Err(); err != nil {
		h.logger.Warn("Board cache write failed", "board_id", boardID, "error", err)
	}
}

// Invalidate drops a board's cached widget snapshot.
func (h *RedisHub) Invalidate(ctx context.Context, boardID uuid.UUID) {
	if err := h.client.Del(ctx, cacheKey(boardID)).Err(); err != nil {
		h.logger.Warn("Board cache invalidation failed", "board_id", boardID, "error", err)
	}
}
