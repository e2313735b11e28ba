package listener

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/internal/constants"
	"github.com/jhamir14/restaurant/internal/testutil"
	"github.com/jhamir14/restaurant/order/pkg/request"
	"github.com/jhamir14/restaurant/order/pkg/response"
)

func TestStatusListener(t *testing.T) {
	c, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := testutil.RunRedis(t, c)

	received := make(chan response.StatusEvent, 1)
	listener := NewStatusListener(cache, func(c context.Context, event response.StatusEvent) error {
		received <- event
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- listener.Listen(c) }()

	require.Eventually(t, func() bool {
		subscribers, err := cache.PubSubNumSub(c, constants.ChannelOrderStatusUpdated).Result()
		return err == nil && subscribers[constants.ChannelOrderStatusUpdated] == 1
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, cache.Publish(c, constants.ChannelOrderStatusUpdated, "not json").Err())

	expected := response.StatusEvent{
		OrderID:   7,
		Status:    request.StatusDelivered,
		ChangedBy: 1,
		RequestID: "5f0c3c8e-4f5b-4f44-9d55-0c6f3f4c1a2b",
		ChangedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	encoded, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, cache.Publish(c, constants.ChannelOrderStatusUpdated, encoded).Err())

	select {
	case event := <-received:
		assert.Equal(t, expected.OrderID, event.OrderID)
		assert.Equal(t, expected.Status, event.Status)
		assert.Equal(t, expected.RequestID, event.RequestID)
		assert.True(t, expected.ChangedAt.Equal(event.ChangedAt))
	case <-time.After(5 * time.Second):
		t.Fatal("status event was not handled")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}
