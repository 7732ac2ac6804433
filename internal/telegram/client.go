package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ChatInfo struct {
	ID    int64
	Type  string
	Title string
}

type Identity struct {
	ID       int64
	Username string
}

// Client wraps the Telegram Bot API calls the workflows need. Implementations
// are stateless; one client per bot token.
type Client interface {
	SendMessage(ctx context.Context, chatID any, text string, kb *models.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID any, photoURL, caption string, kb *models.InlineKeyboardMarkup) error
	SendVideo(ctx context.Context, chatID any, videoURL, caption string, kb *models.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, queryID, text string) error
	GetMe(ctx context.Context) (*Identity, error)
	GetChat(ctx context.Context, chatID string) (*ChatInfo, error)
	GetChatAdministrators(ctx context.Context, chatID string) ([]Identity, error)
	AddChatMember(ctx context.Context, chatID string, userID int64) error
	BanChatMember(ctx context.Context, chatID string, userID int64) error
	UnbanChatMember(ctx context.Context, chatID string, userID int64) error
	SetWebhook(ctx context.Context, url string) error
}

// Factory builds a Client for a bot token. Workflows hold a Factory because
// every owned bot talks to the platform with its own credential.
type Factory func(token string) (Client, error)

type botClient struct {
	b          *bot.Bot
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewFactory(baseURL string) Factory {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return func(token string) (Client, error) {
		b, err := bot.New(
			token,
			bot.WithSkipGetMe(),
			bot.WithServerURL(baseURL),
			bot.WithHTTPClient(30*time.Second, httpClient),
		)
		if err != nil {
			return nil, err
		}
		return &botClient{b: b, token: token, baseURL: baseURL, httpClient: httpClient}, nil
	}
}

func (c *botClient) SendMessage(ctx context.Context, chatID any, text string, kb *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	_, err := c.b.SendMessage(ctx, params)
	return err
}

func (c *botClient) SendPhoto(ctx context.Context, chatID any, photoURL, caption string, kb *models.InlineKeyboardMarkup) error {
	params := &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileString{Data: photoURL},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	_, err := c.b.SendPhoto(ctx, params)
	return err
}

func (c *botClient) SendVideo(ctx context.Context, chatID any, videoURL, caption string, kb *models.InlineKeyboardMarkup) error {
	params := &bot.SendVideoParams{
		ChatID:    chatID,
		Video:     &models.InputFileString{Data: videoURL},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	_, err := c.b.SendVideo(ctx, params)
	return err
}

func (c *botClient) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	_, err := c.b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	})
	return err
}

func (c *botClient) GetMe(ctx context.Context) (*Identity, error) {
	me, err := c.b.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: me.ID, Username: me.Username}, nil
}

func (c *botClient) GetChat(ctx context.Context, chatID string) (*ChatInfo, error) {
	info, err := c.b.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	return &ChatInfo{
		ID:    info.ID,
		Type:  string(info.Type),
		Title: info.Title,
	}, nil
}

func (c *botClient) GetChatAdministrators(ctx context.Context, chatID string) ([]Identity, error) {
	members, err := c.b.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	admins := make([]Identity, 0, len(members))
	for _, m := range members {
		switch {
		case m.Owner != nil && m.Owner.User != nil:
			admins = append(admins, Identity{ID: m.Owner.User.ID, Username: m.Owner.User.Username})
		case m.Administrator != nil:
			admins = append(admins, Identity{ID: m.Administrator.User.ID, Username: m.Administrator.User.Username})
		}
	}
	return admins, nil
}

// AddChatMember has no typed wrapper in the bot library, so the adapter posts
// the endpoint directly, the same call the payment flow has always made.
func (c *botClient) AddChatMember(ctx context.Context, chatID string, userID int64) error {
	return c.rawCall(ctx, "addChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	})
}

func (c *botClient) BanChatMember(ctx context.Context, chatID string, userID int64) error {
	_, err := c.b.BanChatMember(ctx, &bot.BanChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	return err
}

func (c *botClient) UnbanChatMember(ctx context.Context, chatID string, userID int64) error {
	_, err := c.b.UnbanChatMember(ctx, &bot.UnbanChatMemberParams{
		ChatID:       chatID,
		UserID:       userID,
		OnlyIfBanned: true,
	})
	return err
}

func (c *botClient) SetWebhook(ctx context.Context, url string) error {
	_, err := c.b.SetWebhook(ctx, &bot.SetWebhookParams{URL: url})
	return err
}

func (c *botClient) rawCall(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s failed: %s", method, result.Description)
	}
	return nil
}
