package types

import "time"

type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	PushinpayToken string    `json:"pushinpay_token,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Bot struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	BotToken     string    `json:"bot_token"`
	BotUsername  string    `json:"bot_username"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	WelcomeText  string    `json:"welcome_text,omitempty"`
	MediaURL     string    `json:"media_url,omitempty"`
	MediaType    MediaKind `json:"media_type,omitempty"`
	VIPChatID    string    `json:"vip_chat_id,omitempty"`
	VIPChatKind  ChatKind  `json:"vip_chat_kind,omitempty"`
	VIPChatTitle string    `json:"vip_chat_title,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Plan struct {
	ID           string    `json:"id"`
	BotID        string    `json:"bot_id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Sale struct {
	ID              string     `json:"id"`
	BotID           string     `json:"bot_id"`
	PlanID          string     `json:"plan_id"`
	UserTelegramID  string     `json:"user_telegram_id"`
	Status          SaleStatus `json:"status"`
	PaymentID       string     `json:"payment_id,omitempty"`
	AmountReceived  float64    `json:"amount_received,omitempty"`
	AccessExpiresAt *time.Time `json:"access_expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type AccountStore interface {
	CreateAccount(a *Account) error
	GetAccount(id string) (*Account, error)
	GetAccountByEmail(email string) (*Account, error)
	UpdateAccount(a *Account) error
}

type BotStore interface {
	CreateBot(b *Bot) error
	GetBot(id, accountID string) (*Bot, error)
	GetBotByID(id string) (*Bot, error)
	GetBotByToken(token string) (*Bot, error)
	ListBots(accountID string) ([]*Bot, error)
	UpdateBot(b *Bot) error
}

type PlanStore interface {
	CreatePlan(p *Plan) error
	GetPlan(id string) (*Plan, error)
	ListBotPlans(botID string) ([]*Plan, error)
}

type SaleStore interface {
	CreateSale(s *Sale) error
	GetSale(id string) (*Sale, error)
	GetSaleByPaymentID(paymentID string) (*Sale, error)
	ListBotSales(botID string) ([]*Sale, error)
	UpdateSale(s *Sale) error
	ListExpiredSales(now time.Time) ([]*Sale, error)
}

type Store interface {
	AccountStore
	BotStore
	PlanStore
	SaleStore
}
