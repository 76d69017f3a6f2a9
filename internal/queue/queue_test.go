package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, Message{Type: TypeCheckIn, Body: []byte(`{"id":"r1"}`)}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, TypeCheckIn, msg.Type)
		assert.JSONEq(t, `{"id":"r1"}`, string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	select {
	case _, open := <-msgs:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("consumer channel not closed after cancel")
	}
}

func TestInMemory_Full(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, Message{Type: TypeCheckIn}))
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: TypeCheckIn}), ErrFull)
}
