package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDispatcher hands events off through a redis list so that
// notification side effects never run on the request path. Publish is
// a single LPUSH; a worker drains the list with Run.
type RedisDispatcher struct {
	client   *redis.Client
	queueKey string
	logger   *zap.Logger

	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewRedisDispatcher creates a queue-backed dispatcher.
func NewRedisDispatcher(client *redis.Client, queueKey string, logger *zap.Logger) *RedisDispatcher {
	return &RedisDispatcher{
		client:    client,
		queueKey:  queueKey,
		logger:    logger,
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish enqueues the event. Failures are reported to the caller so it
// can log and continue; they must never fail the triggering operation.
func (d *RedisDispatcher) Publish(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.client.LPush(ctx, d.queueKey, raw).Err()
}

// Subscribe registers a handler for the given event type.
func (d *RedisDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Run drains the queue until the context is cancelled. One bad record
// is logged and skipped; it never stops the loop.
func (d *RedisDispatcher) Run(ctx context.Context) {
	for {
		res, err := d.client.BRPop(ctx, 5*time.Second, d.queueKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				d.logger.Warn("notification queue read failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
			continue
		}
		if len(res) != 2 {
			continue
		}

		var event Event
		if err := json.Unmarshal([]byte(res[1]), &event); err != nil {
			d.logger.Warn("dropping malformed notification event", zap.Error(err))
			continue
		}
		d.dispatch(ctx, event)
	}
}

func (d *RedisDispatcher) dispatch(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("notification handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}
