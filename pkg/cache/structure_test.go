package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestModuleSubTopicsKey(t *testing.T) {
	assert.Equal(t, "certify:structure:module:42:subtopics", moduleSubTopicsKey(42))
}

func TestNewStructureCacheDefaultTTL(t *testing.T) {
	c := NewStructureCache(nil, 0)
	assert.Equal(t, 5*time.Minute, c.ttl)
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewStructureCache(client, time.Minute)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.SetModuleSubTopics(ctx, 1, []uint{1, 2, 3})
	})

	ids, ok := c.ModuleSubTopics(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, ids)
}
