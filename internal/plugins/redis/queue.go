package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

// StreamQueue backs the per-room message pipeline with one Redis Stream per
// topic. A single consumer per stream reads entries in XADD order, which is
// what gives each room its ordering guarantee.
type StreamQueue struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewStreamQueue(rdb *redis.Client, log *slog.Logger) *StreamQueue {
	return &StreamQueue{rdb: rdb, log: log}
}

func streamKey(topic string) string {
	return "stream:" + topic
}

func (q *StreamQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(topic),
		MaxLen: 1000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"data": payload},
	}).Err()
}

// Subscribe blocks until ctx is cancelled, draining the stream one entry at a
// time so handler invocations never overlap for a topic.
func (q *StreamQueue) Subscribe(
	ctx context.Context,
	topic, group string,
	handler func(ctx context.Context, messageID string, data []byte) error,
) error {
	stream := streamKey(topic)
	err := q.rdb.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	consumer := uuid.NewString()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		res, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.log.ErrorContext(ctx, "queue - stream read failed", logging.Room(topic), logging.Err(err))
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				if err := handler(ctx, msg.ID, []byte(raw)); err != nil {
					q.log.ErrorContext(ctx, "queue - handler failed",
						logging.Room(topic), logging.Err(err))
				}
			}
		}
	}
}

func (q *StreamQueue) Ack(ctx context.Context, topic, group, messageID string) error {
	return q.rdb.XAck(ctx, streamKey(topic), group, messageID).Err()
}

func (q *StreamQueue) Delete(ctx context.Context, topic, messageID string) error {
	return q.rdb.XDel(ctx, streamKey(topic), messageID).Err()
}
