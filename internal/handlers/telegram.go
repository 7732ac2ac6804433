package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/blackinbot/backend/internal/messages"
	"github.com/blackinbot/backend/internal/payments"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/types"
)

// BotHandler drives the buyer-facing conversation of every owned bot: the
// /start funnel that offers plans with payment links, and the plan button
// callback.
type BotHandler struct {
	store   types.Store
	gateway *payments.PushinPay
	clients telegram.Factory
}

func NewBotHandler(s types.Store, gateway *payments.PushinPay, clients telegram.Factory) *BotHandler {
	return &BotHandler{store: s, gateway: gateway, clients: clients}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *types.Bot, upd *models.Update) {
	switch {
	case upd.Message != nil && strings.HasPrefix(strings.TrimSpace(upd.Message.Text), "/start"):
		h.handleStart(ctx, b, upd.Message)
	case upd.CallbackQuery != nil && strings.HasPrefix(upd.CallbackQuery.Data, "plan_"):
		h.handlePlanCallback(ctx, b, upd.CallbackQuery)
	}
}

func (h *BotHandler) handleStart(ctx context.Context, b *types.Bot, msg *models.Message) {
	client, err := h.clients(b.BotToken)
	if err != nil {
		log.Printf("bot %s: telegram client: %v", b.ID, err)
		return
	}
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)

	plans, err := h.store.ListBotPlans(b.ID)
	if err != nil {
		log.Printf("bot %s: listing plans: %v", b.ID, err)
		return
	}

	account, err := h.store.GetAccount(b.AccountID)
	if err != nil {
		log.Printf("bot %s: account lookup: %v", b.ID, err)
		return
	}

	var rows [][]models.InlineKeyboardButton
	for _, plan := range plans {
		link, err := h.gateway.CreateLink(ctx, account.PushinpayToken, planDescription(b, plan), plan.Price, payments.Metadata{
			BotID:          b.ID,
			PlanID:         plan.ID,
			UserTelegramID: userID,
		})
		if err != nil {
			log.Printf("bot %s: payment link for plan %s: %v", b.ID, plan.ID, err)
			continue
		}

		sale := &types.Sale{
			BotID:          b.ID,
			PlanID:         plan.ID,
			UserTelegramID: userID,
			Status:         types.SalePending,
			PaymentID:      link.ID,
		}
		if err := h.store.CreateSale(sale); err != nil {
			log.Printf("bot %s: recording sale for plan %s: %v", b.ID, plan.ID, err)
			continue
		}

		rows = append(rows, []models.InlineKeyboardButton{{
			Text: messages.PlanButtonLabel(plan.Name, plan.Price),
			URL:  link.URL,
		}})
	}

	var kb *models.InlineKeyboardMarkup
	if len(rows) > 0 {
		kb = &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	welcome := strings.TrimSpace(b.WelcomeText)
	if welcome == "" {
		welcome = messages.DefaultWelcome()
	}

	switch {
	case b.MediaURL != "" && b.MediaType == types.MediaPhoto:
		err = client.SendPhoto(ctx, chatID, b.MediaURL, welcome, kb)
	case b.MediaURL != "" && b.MediaType == types.MediaVideo:
		err = client.SendVideo(ctx, chatID, b.MediaURL, welcome, kb)
	default:
		err = client.SendMessage(ctx, chatID, welcome, kb)
	}
	if err != nil {
		log.Printf("bot %s: sending welcome: %v", b.ID, err)
	}
}

func (h *BotHandler) handlePlanCallback(ctx context.Context, b *types.Bot, cq *models.CallbackQuery) {
	client, err := h.clients(b.BotToken)
	if err != nil {
		log.Printf("bot %s: telegram client: %v", b.ID, err)
		return
	}

	if err := client.AnswerCallbackQuery(ctx, cq.ID, ""); err != nil {
		log.Printf("bot %s: answering callback: %v", b.ID, err)
	}
	if err := client.SendMessage(ctx, cq.From.ID, messages.PaymentLinkAlreadySent(), nil); err != nil {
		log.Printf("bot %s: callback reply: %v", b.ID, err)
	}
}

func planDescription(b *types.Bot, plan *types.Plan) string {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		name = b.BotUsername
	}
	return name + " - " + strings.TrimSpace(plan.Name)
}
