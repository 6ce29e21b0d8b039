package events

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherReportsUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	pub := NewRedisPublisher(client, "progress-tracker:events")
	assert.Equal(t, "progress-tracker:events", pub.Channel())

	err := pub.Publish(context.Background(), New(TaskCreated, map[string]string{"id": "t1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event to redis")
}
