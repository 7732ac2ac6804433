package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackinbot/backend/types"
)

func TestMemoryStoreAccounts(t *testing.T) {
	s := NewMemoryStore()

	a := &types.Account{Email: "owner@example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateAccount(a))
	assert.NotEmpty(t, a.ID)

	dup := &types.Account{Email: "owner@example.com", PasswordHash: "hash"}
	assert.Error(t, s.CreateAccount(dup))

	got, err := s.GetAccountByEmail("owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got.PushinpayToken = "pp-token"
	require.NoError(t, s.UpdateAccount(got))
	got2, err := s.GetAccount(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "pp-token", got2.PushinpayToken)

	_, err = s.GetAccount("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreBotOwnership(t *testing.T) {
	s := NewMemoryStore()

	b := &types.Bot{AccountID: "acc-1", BotToken: "123:abc", BotUsername: "vipbot"}
	require.NoError(t, s.CreateBot(b))

	_, err := s.GetBot(b.ID, "acc-1")
	require.NoError(t, err)

	_, err = s.GetBot(b.ID, "acc-2")
	assert.ErrorIs(t, err, ErrNotFound)

	byToken, err := s.GetBotByToken("123:abc")
	require.NoError(t, err)
	assert.Equal(t, b.ID, byToken.ID)

	_, err = s.GetBotByToken("other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSales(t *testing.T) {
	s := NewMemoryStore()

	sale := &types.Sale{BotID: "bot-1", PlanID: "plan-1", UserTelegramID: "42", PaymentID: "pay_1"}
	require.NoError(t, s.CreateSale(sale))
	assert.Equal(t, types.SalePending, sale.Status)
	assert.False(t, sale.CreatedAt.IsZero())

	got, err := s.GetSaleByPaymentID("pay_1")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, got.ID)

	_, err = s.GetSaleByPaymentID("")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	got.Status = types.SalePaid
	got.AccessExpiresAt = &past
	require.NoError(t, s.UpdateSale(got))

	active := &types.Sale{BotID: "bot-1", PlanID: "plan-1", UserTelegramID: "43", Status: types.SalePaid, AccessExpiresAt: &future}
	require.NoError(t, s.CreateSale(active))

	pendingOld := &types.Sale{BotID: "bot-1", PlanID: "plan-1", UserTelegramID: "44", AccessExpiresAt: &past}
	require.NoError(t, s.CreateSale(pendingOld))

	expired, err := s.ListExpiredSales(now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, got.ID, expired[0].ID)
}
