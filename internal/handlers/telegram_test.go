package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackinbot/backend/internal/payments"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/store"
	"github.com/blackinbot/backend/types"
)

type sentMessage struct {
	text  string
	media string
	kb    *models.InlineKeyboardMarkup
}

type fakeClient struct {
	messages []sentMessage
	photos   []sentMessage
	answered []string
}

func (f *fakeClient) SendMessage(ctx context.Context, chatID any, text string, kb *models.InlineKeyboardMarkup) error {
	f.messages = append(f.messages, sentMessage{text: text, kb: kb})
	return nil
}

func (f *fakeClient) SendPhoto(ctx context.Context, chatID any, photoURL, caption string, kb *models.InlineKeyboardMarkup) error {
	f.photos = append(f.photos, sentMessage{text: caption, media: photoURL, kb: kb})
	return nil
}

func (f *fakeClient) SendVideo(ctx context.Context, chatID any, videoURL, caption string, kb *models.InlineKeyboardMarkup) error {
	return nil
}

func (f *fakeClient) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	f.answered = append(f.answered, queryID)
	return nil
}

func (f *fakeClient) GetMe(ctx context.Context) (*telegram.Identity, error) {
	return &telegram.Identity{ID: 999, Username: "vipbot"}, nil
}

func (f *fakeClient) GetChat(ctx context.Context, chatID string) (*telegram.ChatInfo, error) {
	return nil, nil
}

func (f *fakeClient) GetChatAdministrators(ctx context.Context, chatID string) ([]telegram.Identity, error) {
	return nil, nil
}

func (f *fakeClient) AddChatMember(ctx context.Context, chatID string, userID int64) error {
	return nil
}

func (f *fakeClient) BanChatMember(ctx context.Context, chatID string, userID int64) error {
	return nil
}

func (f *fakeClient) UnbanChatMember(ctx context.Context, chatID string, userID int64) error {
	return nil
}

func (f *fakeClient) SetWebhook(ctx context.Context, url string) error {
	return nil
}

func newGateway(t *testing.T) *payments.PushinPay {
	t.Helper()

	counter := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter++
		json.NewEncoder(w).Encode(payments.Link{
			ID:     "pay_" + string(rune('0'+counter)),
			URL:    "https://pay.example/" + string(rune('0'+counter)),
			Status: "pending",
		})
	}))
	t.Cleanup(srv.Close)
	return payments.NewPushinPay(srv.URL, "platform-token")
}

func seed(t *testing.T, s *store.MemoryStore) *types.Bot {
	t.Helper()

	account := &types.Account{Email: "owner@example.com", PasswordHash: "hash", PushinpayToken: "pp"}
	require.NoError(t, s.CreateAccount(account))

	b := &types.Bot{
		AccountID:   account.ID,
		BotToken:    "123:abc",
		BotUsername: "vipbot",
		Name:        "VIP Bot",
		IsActive:    true,
	}
	require.NoError(t, s.CreateBot(b))

	require.NoError(t, s.CreatePlan(&types.Plan{BotID: b.ID, Name: "Monthly", Price: 10.00, DurationDays: 30}))
	require.NoError(t, s.CreatePlan(&types.Plan{BotID: b.ID, Name: "Yearly", Price: 99.90, DurationDays: 365}))
	return b
}

func startUpdate(userID, chatID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Text: "/start",
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: chatID},
		},
	}
}

func TestStartSendsPlansAndRecordsSales(t *testing.T) {
	s := store.NewMemoryStore()
	b := seed(t, s)
	fc := &fakeClient{}
	h := NewBotHandler(s, newGateway(t), func(string) (telegram.Client, error) { return fc, nil })

	h.HandleUpdate(context.Background(), b, startUpdate(42, 42))

	require.Len(t, fc.messages, 1)
	msg := fc.messages[0]
	require.NotNil(t, msg.kb)
	require.Len(t, msg.kb.InlineKeyboard, 2)
	assert.Contains(t, msg.kb.InlineKeyboard[0][0].Text, "R$ ")
	assert.NotEmpty(t, msg.kb.InlineKeyboard[0][0].URL)

	sales, err := s.ListBotSales(b.ID)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	for _, sale := range sales {
		assert.Equal(t, types.SalePending, sale.Status)
		assert.Equal(t, "42", sale.UserTelegramID)
		assert.NotEmpty(t, sale.PaymentID)
	}
}

func TestStartUsesWelcomeMedia(t *testing.T) {
	s := store.NewMemoryStore()
	b := seed(t, s)
	b.WelcomeText = "Welcome to the club"
	b.MediaURL = "https://cdn.example/welcome.jpg"
	b.MediaType = types.MediaPhoto
	require.NoError(t, s.UpdateBot(b))

	fc := &fakeClient{}
	h := NewBotHandler(s, newGateway(t), func(string) (telegram.Client, error) { return fc, nil })

	h.HandleUpdate(context.Background(), b, startUpdate(42, 42))

	assert.Empty(t, fc.messages)
	require.Len(t, fc.photos, 1)
	assert.Equal(t, "https://cdn.example/welcome.jpg", fc.photos[0].media)
	assert.Equal(t, "Welcome to the club", fc.photos[0].text)
}

func TestPlanCallbackAnswersAndReplies(t *testing.T) {
	s := store.NewMemoryStore()
	b := seed(t, s)
	fc := &fakeClient{}
	h := NewBotHandler(s, newGateway(t), func(string) (telegram.Client, error) { return fc, nil })

	h.HandleUpdate(context.Background(), b, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			Data: "plan_abc",
			From: models.User{ID: 42},
		},
	})

	assert.Equal(t, []string{"cb-1"}, fc.answered)
	require.Len(t, fc.messages, 1)
}

func TestUnrelatedUpdateIgnored(t *testing.T) {
	s := store.NewMemoryStore()
	b := seed(t, s)
	fc := &fakeClient{}
	h := NewBotHandler(s, newGateway(t), func(string) (telegram.Client, error) { return fc, nil })

	h.HandleUpdate(context.Background(), b, &models.Update{
		Message: &models.Message{Text: "hello", From: &models.User{ID: 42}, Chat: models.Chat{ID: 42}},
	})

	assert.Empty(t, fc.messages)
	sales, err := s.ListBotSales(b.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}
