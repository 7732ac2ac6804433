package messages

import (
	"fmt"
	"strings"
	"time"
)

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

func chatKindLabel(kind string) string {
	if kind == "channel" {
		return "channel"
	}
	return "group"
}

func DefaultWelcome() string {
	return "🤖 <b>Hello! Welcome to our bot!</b>\n\nChoose one of our plans:"
}

func PlanButtonLabel(name string, price float64) string {
	return fmt.Sprintf("%s - R$ %.2f", strings.TrimSpace(name), price)
}

func PaymentLinkAlreadySent() string {
	return "💳 The payment link was already sent above! Complete the payment to activate your access."
}

func PaymentConfirmedAdded(amount float64, kind, chatTitle string, expiresAt *time.Time) string {
	until := "indefinite"
	if expiresAt != nil {
		until = expiresAt.Format("02/01/2006")
	}
	label := chatKindLabel(kind)
	if title := Escape(chatTitle); title != "" {
		label = fmt.Sprintf("%s <b>%s</b>", label, title)
	}
	return fmt.Sprintf(
		"✅ <b>Payment confirmed!</b>\n\n"+
			"💰 Amount: R$ %.2f\n"+
			"🎉 <b>You were added to the VIP %s!</b>\n\n"+
			"📅 Access valid until: %s\n"+
			"Thank you for your purchase! 🙏",
		amount, label, until)
}

func PaymentConfirmedAddFailed(amount float64, kind string) string {
	return fmt.Sprintf(
		"✅ <b>Payment confirmed!</b>\n\n"+
			"💰 Amount: R$ %.2f\n"+
			"⚠️ <b>We could not add you to the VIP %s automatically.</b>\n\n"+
			"Contact support to unlock your access.\n"+
			"Thank you for your purchase! 🙏",
		amount, chatKindLabel(kind))
}

func PaymentCancelled() string {
	return "❌ <b>Payment cancelled</b>\n\n" +
		"Your payment was not processed.\n" +
		"💡 To try again, use the /start command.\n\n" +
		"If you need help, get in touch with us."
}

func PaymentPending() string {
	return "⏳ <b>Waiting for payment confirmation...</b>\n\n" +
		"We are processing your payment.\n" +
		"📱 You will be notified as soon as it is confirmed.\n\n" +
		"This can take a few minutes."
}

func AccessExpired(kind string) string {
	label := chatKindLabel(kind)
	return fmt.Sprintf(
		"⏰ <b>Your VIP %s access expired</b>\n\n"+
			"Your plan ended and you were removed from the %s.\n"+
			"💡 To renew your access, use the /start command.\n\n"+
			"Thank you for being our customer! 🙏",
		label, label)
}
