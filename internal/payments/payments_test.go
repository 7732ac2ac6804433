package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackinbot/backend/types"
)

func TestMapStatus(t *testing.T) {
	cases := map[string]types.SaleStatus{
		"paid":       types.SalePaid,
		"approved":   types.SalePaid,
		"completed":  types.SalePaid,
		"PAID":       types.SalePaid,
		"cancelled":  types.SaleCancelled,
		"canceled":   types.SaleCancelled,
		"failed":     types.SaleCancelled,
		"pending":    types.SalePending,
		"processing": types.SalePending,
		"refunded":   types.SalePending,
		"":           types.SalePending,
	}
	for raw, want := range cases {
		assert.Equal(t, want, MapStatus(raw), "status %q", raw)
	}
}

func TestFeeSplit(t *testing.T) {
	assert.InDelta(t, 1.98, PlatformFee(10.00), 0.001)
	assert.InDelta(t, 8.02, CreatorAmount(10.00), 0.001)

	assert.InDelta(t, 1.73, PlatformFee(4.90), 0.001)
	assert.InDelta(t, 3.17, CreatorAmount(4.90), 0.001)

	price := 29.90
	assert.InDelta(t, price, PlatformFee(price)+CreatorAmount(price), 0.001)
}

func TestWebhookEventDecoding(t *testing.T) {
	raw := []byte(`{"payment_id":"pay_7","status":"approved","amount":29.90,"metadata":{"bot_id":"bot-1","plan_id":"plan-1","user_telegram_id":"42"}}`)

	var ev WebhookEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "pay_7", ev.PaymentID)
	assert.Equal(t, "approved", ev.Status)
	assert.InDelta(t, 29.90, ev.Amount, 0.001)
	assert.Equal(t, "bot-1", ev.Metadata.BotID)
	assert.Equal(t, "42", ev.Metadata.UserTelegramID)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"payment_id":"pay_1","status":"paid"}`)
	secret := "topsecret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(body, valid, secret))
	assert.False(t, VerifySignature(body, "deadbeef", secret))
	assert.False(t, VerifySignature(append(body, ' '), valid, secret))
	assert.False(t, VerifySignature(body, valid, ""))
	assert.False(t, VerifySignature(body, "", secret))
}

func TestCreateLink(t *testing.T) {
	var got createLinkRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payment-links", r.URL.Path)
		assert.Equal(t, "Bearer creator-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Link{ID: "pay_1", URL: "https://pay.example/pay_1", Status: "pending"})
	}))
	defer srv.Close()

	gw := NewPushinPay(srv.URL, "platform-token")
	link, err := gw.CreateLink(context.Background(), "creator-token", "VIP - Monthly", 10.00, Metadata{
		BotID:          "bot-1",
		PlanID:         "plan-1",
		UserTelegramID: "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", link.ID)
	assert.Equal(t, "https://pay.example/pay_1", link.URL)

	assert.Equal(t, "creator-token", got.Token)
	assert.InDelta(t, 10.00, got.Valor, 0.001)
	require.Len(t, got.Split, 1)
	assert.Equal(t, "platform-token", got.Split[0].Token)
	assert.InDelta(t, 1.98, got.Split[0].Valor, 0.001)
	assert.Equal(t, "bot-1", got.Metadata.BotID)
}

func TestCreateLinkRequiresToken(t *testing.T) {
	gw := NewPushinPay("https://example.invalid", "platform-token")
	_, err := gw.CreateLink(context.Background(), "", "desc", 10, Metadata{})
	assert.Error(t, err)
}
