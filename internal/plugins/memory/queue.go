package memory

import (
	"context"
	"strconv"
	"sync"
)

type queueEntry struct {
	id   string
	data []byte
}

type topicState struct {
	mu     sync.Mutex
	buf    []queueEntry
	nextID int64
	notify chan struct{}
}

// Queue is the in-process stand-in for the stream-backed queue. Payloads
// published before a subscriber exists are buffered, and each topic is drained
// by exactly one Subscribe loop, so publish order is delivery order.
type Queue struct {
	mu     sync.Mutex
	topics map[string]*topicState
}

func NewQueue() *Queue {
	return &Queue{topics: make(map[string]*topicState)}
}

func (q *Queue) topic(name string) *topicState {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.topics[name]
	if !ok {
		t = &topicState{notify: make(chan struct{}, 1)}
		q.topics[name] = t
	}
	return t
}

func (q *Queue) Publish(_ context.Context, topic string, payload []byte) error {
	t := q.topic(topic)
	t.mu.Lock()
	t.nextID++
	data := make([]byte, len(payload))
	copy(data, payload)
	t.buf = append(t.buf, queueEntry{
		id:   strconv.FormatInt(t.nextID, 10),
		data: data,
	})
	t.mu.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *Queue) Subscribe(
	ctx context.Context,
	topic, _ string,
	handler func(ctx context.Context, messageID string, data []byte) error,
) error {
	t := q.topic(topic)
	for {
		t.mu.Lock()
		var entry *queueEntry
		if len(t.buf) > 0 {
			e := t.buf[0]
			t.buf = t.buf[1:]
			entry = &e
		}
		t.mu.Unlock()

		if entry == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.notify:
				continue
			}
		}
		// Errors are the handler's concern; delivery keeps going.
		_ = handler(ctx, entry.id, entry.data)
	}
}

// Ack is a no-op: Subscribe removes an entry from the buffer before handing
// it out, so there is no pending set to clear.
func (q *Queue) Ack(context.Context, string, string, string) error { return nil }

// Delete is a no-op for the same reason as Ack.
func (q *Queue) Delete(context.Context, string, string) error { return nil }
