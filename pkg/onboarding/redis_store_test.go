package onboarding

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvisor/pkg/llm"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	ctx := context.Background()
	sess := Session{
		ID:     uuid.New(),
		UserID: "u1",
		Turns:  []Turn{{Role: llm.RoleAssistant, Content: "What are your goals?", Timestamp: time.Now().UTC()}},
	}
	require.NoError(t, store.Save(ctx, sess, time.Minute))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "What are your goals?", got.Turns[0].Content)

	ttl, err := client.TTL(ctx, redisKeyPrefix+sess.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = store.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
