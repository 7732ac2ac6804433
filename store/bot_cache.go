package store

import (
	"time"

	"github.com/blackinbot/backend/types"
)

// BotCache caches bot-by-token lookups in Redis so the webhook hot path does
// not hit Postgres for every update. Falls through to the backing store on
// miss; entries are invalidated on bot updates.
type BotCache struct {
	client *RedisClient
	store  types.BotStore
	ttl    time.Duration
}

func NewBotCache(client *RedisClient, store types.BotStore, ttl time.Duration) *BotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &BotCache{client: client, store: store, ttl: ttl}
}

func (c *BotCache) GetBotByToken(token string) (*types.Bot, error) {
	if c.client != nil {
		var b types.Bot
		if err := c.client.Get(c.client.key("bot_token", token), &b); err == nil && b.ID != "" {
			return &b, nil
		}
	}

	b, err := c.store.GetBotByToken(token)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		_ = c.client.Set(c.client.key("bot_token", token), b, c.ttl)
	}
	return b, nil
}

func (c *BotCache) Invalidate(token string) {
	if c.client == nil || token == "" {
		return
	}
	_ = c.client.Del(c.client.key("bot_token", token))
}
