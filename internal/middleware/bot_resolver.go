package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/contextkeys"
	"github.com/blackinbot/backend/store"
	"github.com/blackinbot/backend/types"
)

// ResolveBot looks up the bot that owns the webhook URL's token. Unknown or
// inactive bots get an ok-shaped response so Telegram stops retrying the
// update.
func ResolveBot(cache *store.BotCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("bot_token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		b, err := cache.GetBotByToken(token)
		if err != nil || !b.IsActive {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Printf("webhook: resolving bot: %v", err)
			}
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"ok": true})
			return
		}

		c.Set(contextkeys.Bot, b)
		c.Next()
	}
}

// BotFrom returns the bot resolved by ResolveBot.
func BotFrom(c *gin.Context) *types.Bot {
	v, ok := c.Get(contextkeys.Bot)
	if !ok {
		return nil
	}
	b, _ := v.(*types.Bot)
	return b
}
