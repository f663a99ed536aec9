package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Queue_Delivers_In_Publish_Order(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewQueue()

	// Published before any subscriber exists; must not be lost.
	req.NoError(q.Publish(ctx, "room-1", []byte("one")))
	req.NoError(q.Publish(ctx, "room-1", []byte("two")))

	got := make(chan string, 3)
	go func() {
		_ = q.Subscribe(ctx, "room-1", "g", func(_ context.Context, _ string, data []byte) error {
			got <- string(data)
			return nil
		})
	}()

	req.NoError(q.Publish(ctx, "room-1", []byte("three")))

	for _, want := range []string{"one", "two", "three"} {
		select {
		case v := <-got:
			req.Equal(want, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func Test_Queue_Topics_Are_Isolated(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewQueue()

	req.NoError(q.Publish(ctx, "room-a", []byte("a")))
	req.NoError(q.Publish(ctx, "room-b", []byte("b")))

	got := make(chan string, 1)
	go func() {
		_ = q.Subscribe(ctx, "room-b", "g", func(_ context.Context, _ string, data []byte) error {
			got <- string(data)
			return nil
		})
	}()

	select {
	case v := <-got:
		req.Equal("b", v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room-b payload")
	}
}

func Test_Queue_Subscribe_Stops_On_Cancel(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue()

	done := make(chan error, 1)
	go func() {
		done <- q.Subscribe(ctx, "room-1", "g", func(context.Context, string, []byte) error {
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not stop after cancel")
	}
}
