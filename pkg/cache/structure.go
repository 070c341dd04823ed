// Package cache keeps read-mostly curriculum structure in redis so progress
// recomputation does not walk the hierarchy on every completion event.
package cache

import (
	"certify_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "certify:structure"

type StructureCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStructureCache(client *redis.Client, ttl time.Duration) *StructureCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StructureCache{client: client, ttl: ttl}
}

func moduleSubTopicsKey(moduleID uint) string {
	return fmt.Sprintf("%s:module:%d:subtopics", keyPrefix, moduleID)
}

// ModuleSubTopics returns the cached subtopic ids of a module. Any redis
// failure is reported as a miss.
func (c *StructureCache) ModuleSubTopics(ctx context.Context, moduleID uint) ([]uint, bool) {
	raw, err := c.client.Get(ctx, moduleSubTopicsKey(moduleID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Debug("structure cache read failed", zap.Uint("moduleID", moduleID), zap.Error(err))
		}
		return nil, false
	}

	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false
	}
	return ids, true
}

func (c *StructureCache) SetModuleSubTopics(ctx context.Context, moduleID uint, ids []uint) {
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, moduleSubTopicsKey(moduleID), raw, c.ttl).Err(); err != nil {
		logger.Log.Debug("structure cache write failed", zap.Uint("moduleID", moduleID), zap.Error(err))
	}
}

// InvalidateModule drops cached structure after authoring changes a module.
func (c *StructureCache) InvalidateModule(ctx context.Context, moduleID uint) error {
	return c.client.Del(ctx, moduleSubTopicsKey(moduleID)).Err()
}
