package access

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/blackinbot/backend/internal/messages"
	"github.com/blackinbot/backend/internal/payments"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/store"
	"github.com/blackinbot/backend/types"
)

// Reconciler applies gateway payment events to sales and grants or denies
// VIP access accordingly. Persistence happens before any Telegram side
// effect; notification failures are logged and never roll the sale back.
type Reconciler struct {
	store   types.Store
	clients telegram.Factory
}

func NewReconciler(s types.Store, clients telegram.Factory) *Reconciler {
	return &Reconciler{store: s, clients: clients}
}

func (r *Reconciler) Process(ctx context.Context, ev payments.WebhookEvent) error {
	sale, err := r.store.GetSaleByPaymentID(ev.PaymentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("payment event for unknown payment %s, ignoring", ev.PaymentID)
			return nil
		}
		return err
	}

	next := payments.MapStatus(ev.Status)
	if next == types.SalePending {
		// Still in flight: keep the buyer posted but change nothing.
		if sale.Status == types.SalePending {
			r.notify(ctx, sale, messages.PaymentPending())
		}
		return nil
	}
	if sale.Status == next {
		return nil
	}
	if !types.CanTransition(sale.Status, next) {
		log.Printf("sale %s: ignoring %s -> %s", sale.ID, sale.Status, next)
		return nil
	}

	switch next {
	case types.SalePaid:
		return r.markPaid(ctx, sale, ev)
	case types.SaleCancelled:
		sale.Status = types.SaleCancelled
		if err := r.store.UpdateSale(sale); err != nil {
			return err
		}
		r.notify(ctx, sale, messages.PaymentCancelled())
		return nil
	}
	return nil
}

func (r *Reconciler) markPaid(ctx context.Context, sale *types.Sale, ev payments.WebhookEvent) error {
	plan, err := r.store.GetPlan(sale.PlanID)
	if err != nil {
		return err
	}

	expiresAt := sale.CreatedAt.AddDate(0, 0, plan.DurationDays)
	sale.Status = types.SalePaid
	sale.AccessExpiresAt = &expiresAt
	sale.AmountReceived = ev.Amount
	if sale.AmountReceived == 0 {
		sale.AmountReceived = plan.Price
	}
	if err := r.store.UpdateSale(sale); err != nil {
		return err
	}

	bot, err := r.store.GetBotByID(sale.BotID)
	if err != nil {
		log.Printf("sale %s: bot lookup failed: %v", sale.ID, err)
		return nil
	}
	client, err := r.clients(bot.BotToken)
	if err != nil {
		log.Printf("sale %s: telegram client: %v", sale.ID, err)
		return nil
	}
	userID, err := strconv.ParseInt(sale.UserTelegramID, 10, 64)
	if err != nil {
		log.Printf("sale %s: bad telegram user id %q", sale.ID, sale.UserTelegramID)
		return nil
	}

	added := false
	if bot.VIPChatID != "" {
		if err := client.AddChatMember(ctx, bot.VIPChatID, userID); err != nil {
			log.Printf("sale %s: add to chat %s failed: %v", sale.ID, bot.VIPChatID, err)
		} else {
			added = true
		}
	}

	kind := string(bot.VIPChatKind)
	var text string
	if added {
		text = messages.PaymentConfirmedAdded(sale.AmountReceived, kind, bot.VIPChatTitle, sale.AccessExpiresAt)
	} else {
		text = messages.PaymentConfirmedAddFailed(sale.AmountReceived, kind)
	}
	if err := client.SendMessage(ctx, userID, text, nil); err != nil {
		log.Printf("sale %s: notify failed: %v", sale.ID, err)
	}
	return nil
}

func (r *Reconciler) notify(ctx context.Context, sale *types.Sale, text string) {
	bot, err := r.store.GetBotByID(sale.BotID)
	if err != nil {
		log.Printf("sale %s: bot lookup failed: %v", sale.ID, err)
		return
	}
	client, err := r.clients(bot.BotToken)
	if err != nil {
		log.Printf("sale %s: telegram client: %v", sale.ID, err)
		return
	}
	userID, err := strconv.ParseInt(sale.UserTelegramID, 10, 64)
	if err != nil {
		return
	}
	if err := client.SendMessage(ctx, userID, text, nil); err != nil {
		log.Printf("sale %s: notify failed: %v", sale.ID, err)
	}
}
