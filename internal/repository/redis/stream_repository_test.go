package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	redisRepo "github.com/ecopoint-service/internal/repository/redis"
)

const (
	testSearchStream = "test:stream:ecopoint:search"
	testFoundStream  = "test:stream:ecopoint:found"
)

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testSearchStream, testFoundStream)
	return client
}

func newStreamRepo(client *redis.Client) repository.StreamRepository {
	return redisRepo.NewStreamRepository(client, redisRepo.StreamOptions{BlockTimeout: 200 * time.Millisecond}, zap.NewNop())
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx := context.Background()
	defer client.Del(ctx, testSearchStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-group"))

	groups, err := client.XInfoGroups(ctx, testSearchStream).Result()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "test-group", groups[0].Name)

	// BUSYGROUP игнорируется
	assert.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-group"))
}

func TestStreamRepository_PublishToStream(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx := context.Background()
	defer client.Del(ctx, testFoundStream)

	event := &domain.EcopointFoundEvent{
		RequestID: uuid.New(),
		To:        "whatsapp:+5511999999999",
		Response:  json.RawMessage(`{"mensagem":"ok"}`),
	}
	require.NoError(t, repo.PublishToStream(ctx, testFoundStream, event))

	messages, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{testFoundStream, "0"},
		Count:   1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	dataStr, ok := messages[0].Messages[0].Values["data"].(string)
	require.True(t, ok)

	var received domain.EcopointFoundEvent
	require.NoError(t, json.Unmarshal([]byte(dataStr), &received))
	assert.Equal(t, event.RequestID, received.RequestID)
	assert.JSONEq(t, `{"mensagem":"ok"}`, string(received.Response))
}

func TestStreamRepository_ConsumeStream(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	defer client.Del(context.Background(), testSearchStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-consumer-group"))

	requestID := uuid.New()
	require.NoError(t, repo.PublishToStream(ctx, testSearchStream, map[string]interface{}{
		"request_id": requestID,
		"lat":        "-23.55",
		"lng":        -46.63,
		"filtro":     "papel",
	}))

	msgChan, err := repo.ConsumeStream(ctx, testSearchStream, "test-consumer-group", "test-consumer")
	require.NoError(t, err)

	select {
	case msg := <-msgChan:
		assert.NotEmpty(t, msg.ID)

		var event domain.EcopointSearchEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &event))
		assert.Equal(t, requestID, event.RequestID)
		assert.Equal(t, -23.55, event.Lat.Value)
		assert.Equal(t, -46.63, event.Lng.Value)
		assert.Equal(t, "papel", event.Filter)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestStreamRepository_RedeliversPendingAfterRestart(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx := context.Background()
	defer client.Del(ctx, testSearchStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-pending-group"))
	require.NoError(t, repo.PublishToStream(ctx, testSearchStream, map[string]string{"request_id": uuid.NewString()}))

	// первый consumer читает, но не подтверждает
	firstCtx, firstCancel := context.WithCancel(ctx)
	first, err := repo.ConsumeStream(firstCtx, testSearchStream, "test-pending-group", "consumer-1")
	require.NoError(t, err)

	var firstID string
	select {
	case msg := <-first:
		firstID = msg.ID
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
	firstCancel()

	secondCtx, secondCancel := context.WithTimeout(ctx, 3*time.Second)
	defer secondCancel()
	second, err := repo.ConsumeStream(secondCtx, testSearchStream, "test-pending-group", "consumer-1")
	require.NoError(t, err)

	select {
	case msg := <-second:
		assert.Equal(t, firstID, msg.ID)
		require.NoError(t, repo.AckMessage(ctx, testSearchStream, "test-pending-group", msg.ID))
	case <-time.After(3 * time.Second):
		t.Fatal("Pending message was not redelivered")
	}
}

func TestStreamRepository_AckMessage(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx := context.Background()
	defer client.Del(ctx, testSearchStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-ack-group"))
	require.NoError(t, repo.PublishToStream(ctx, testSearchStream, map[string]string{"request_id": uuid.NewString()}))

	messages, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    "test-ack-group",
		Consumer: "test-consumer",
		Streams:  []string{testSearchStream, ">"},
		Count:    1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	pending, err := client.XPending(ctx, testSearchStream, "test-ack-group").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	require.NoError(t, repo.AckMessage(ctx, testSearchStream, "test-ack-group", messages[0].Messages[0].ID))

	pending, err = client.XPending(ctx, testSearchStream, "test-ack-group").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestStreamRepository_ConsumeStream_ContextCancellation(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newStreamRepo(client)
	ctx, cancel := context.WithCancel(context.Background())
	defer client.Del(context.Background(), testSearchStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testSearchStream, "test-cancel-group"))

	msgChan, err := repo.ConsumeStream(ctx, testSearchStream, "test-cancel-group", "test-consumer")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-msgChan:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Channel not closed after context cancellation")
		}
	}
}
