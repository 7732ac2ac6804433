package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/apperrors"
	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/types"
)

type createBotRequest struct {
	BotToken    string `json:"bot_token" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createBot(c *gin.Context) {
	account := middleware.AccountFrom(c)

	var req createBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("bot_token is required"))
		return
	}
	token := strings.TrimSpace(req.BotToken)

	client, err := s.clients(token)
	if err != nil {
		respondError(c, apperrors.Validation("malformed bot token"))
		return
	}
	me, err := client.GetMe(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Validation("Telegram rejected the bot token"))
		return
	}

	b := &types.Bot{
		AccountID:   account.ID,
		BotToken:    token,
		BotUsername: me.Username,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if b.Name == "" {
		b.Name = me.Username
	}
	if err := s.store.CreateBot(b); err != nil {
		respondError(c, err)
		return
	}

	if s.publicBaseURL != "" {
		url := fmt.Sprintf("%s/telegram/webhook/%s", s.publicBaseURL, token)
		if err := client.SetWebhook(c.Request.Context(), url); err != nil {
			log.Printf("bot %s: setting webhook: %v", b.ID, err)
		}
	}

	c.JSON(http.StatusCreated, b)
}

func (s *Server) listBots(c *gin.Context) {
	account := middleware.AccountFrom(c)
	bots, err := s.store.ListBots(account.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bots)
}

func (s *Server) getBot(c *gin.Context) {
	account := middleware.AccountFrom(c)
	b, err := s.store.GetBot(c.Param("id"), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateBotRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) updateBot(c *gin.Context) {
	account := middleware.AccountFrom(c)
	b, err := s.store.GetBot(c.Param("id"), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req updateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid payload"))
		return
	}

	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		b.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}
	if err := s.store.UpdateBot(b); err != nil {
		respondError(c, err)
		return
	}
	s.botCache.Invalidate(b.BotToken)

	c.JSON(http.StatusOK, b)
}

type updateMessageRequest struct {
	BotID       string `json:"bot_id" binding:"required"`
	WelcomeText string `json:"welcome_text"`
	MediaURL    string `json:"media_url"`
	MediaType   string `json:"media_type"`
}

// updateMessage edits the welcome message a bot sends on /start, including
// the optional photo or video shown above it.
func (s *Server) updateMessage(c *gin.Context) {
	account := middleware.AccountFrom(c)

	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("bot_id is required"))
		return
	}

	b, err := s.store.GetBot(req.BotID, account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	mediaType := types.MediaKind(strings.TrimSpace(req.MediaType))
	if req.MediaURL != "" && mediaType != types.MediaPhoto && mediaType != types.MediaVideo {
		respondError(c, apperrors.Validation("media_type must be photo or video"))
		return
	}

	b.WelcomeText = strings.TrimSpace(req.WelcomeText)
	b.MediaURL = strings.TrimSpace(req.MediaURL)
	if b.MediaURL == "" {
		b.MediaType = ""
	} else {
		b.MediaType = mediaType
	}
	if err := s.store.UpdateBot(b); err != nil {
		respondError(c, err)
		return
	}
	s.botCache.Invalidate(b.BotToken)

	c.JSON(http.StatusOK, b)
}

type activateGroupRequest struct {
	ChatID string `json:"chat_id" binding:"required"`
}

// activateGroup binds a bot to the VIP chat buyers get added to. The chat
// must exist, be a group or channel, and have the bot as an administrator;
// each failure gets its own error code so the dashboard can explain it.
func (s *Server) activateGroup(c *gin.Context) {
	account := middleware.AccountFrom(c)
	b, err := s.store.GetBot(c.Param("id"), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	var req activateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("chat_id is required"))
		return
	}
	chatID := strings.TrimSpace(req.ChatID)

	ctx := c.Request.Context()
	client, err := s.clients(b.BotToken)
	if err != nil {
		respondError(c, err)
		return
	}

	info, err := client.GetChat(ctx, chatID)
	if err != nil {
		respondError(c, apperrors.ChatInaccessible("could not access the chat, add the bot to it first"))
		return
	}

	var kind types.ChatKind
	switch info.Type {
	case "group", "supergroup":
		kind = types.ChatKindGroup
	case "channel":
		kind = types.ChatKindChannel
	default:
		respondError(c, apperrors.WrongChatKind("the chat must be a group, supergroup or channel"))
		return
	}

	me, err := client.GetMe(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	admins, err := client.GetChatAdministrators(ctx, chatID)
	if err != nil {
		respondError(c, apperrors.BotNotAdmin("could not list the chat administrators, make the bot an admin"))
		return
	}
	isAdmin := false
	for _, admin := range admins {
		if admin.ID == me.ID {
			isAdmin = true
			break
		}
	}
	if !isAdmin {
		respondError(c, apperrors.BotNotAdmin("the bot must be an administrator of the chat"))
		return
	}

	b.VIPChatID = strconv.FormatInt(info.ID, 10)
	b.VIPChatKind = kind
	b.VIPChatTitle = info.Title
	if err := s.store.UpdateBot(b); err != nil {
		respondError(c, err)
		return
	}
	s.botCache.Invalidate(b.BotToken)

	c.JSON(http.StatusOK, b)
}
