package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blackinbot/backend/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "blackinbot"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "blackinbot"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func mapRowErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStore) CreateAccount(a *types.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
INSERT INTO accounts (id, email, password_hash, pushinpay_token, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
`, a.ID, strings.TrimSpace(strings.ToLower(a.Email)), a.PasswordHash, strings.TrimSpace(a.PushinpayToken), a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *PostgresStore) scanAccount(row pgx.Row) (*types.Account, error) {
	var a types.Account
	var ppToken *string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &ppToken, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if ppToken != nil {
		a.PushinpayToken = *ppToken
	}
	return &a, nil
}

func (s *PostgresStore) GetAccount(id string) (*types.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.scanAccount(s.pool.QueryRow(ctx, `
SELECT id, email, password_hash, pushinpay_token, created_at, updated_at
FROM accounts
WHERE id = $1
`, id))
}

func (s *PostgresStore) GetAccountByEmail(email string) (*types.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.scanAccount(s.pool.QueryRow(ctx, `
SELECT id, email, password_hash, pushinpay_token, created_at, updated_at
FROM accounts
WHERE email = $1
`, strings.TrimSpace(strings.ToLower(email))))
}

func (s *PostgresStore) UpdateAccount(a *types.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE accounts
SET pushinpay_token = NULLIF($2, ''), password_hash = $3, updated_at = NOW()
WHERE id = $1
`, a.ID, strings.TrimSpace(a.PushinpayToken), a.PasswordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateBot(b *types.Bot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
INSERT INTO bots (id, account_id, bot_token, bot_username, name, description, welcome_text,
                  media_url, media_type, vip_chat_id, vip_chat_kind, vip_chat_title, is_active,
                  created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
        NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13,
        $14, $15)
`, b.ID, b.AccountID, strings.TrimSpace(b.BotToken), strings.TrimSpace(b.BotUsername), b.Name, b.Description, b.WelcomeText,
		b.MediaURL, string(b.MediaType), b.VIPChatID, string(b.VIPChatKind), b.VIPChatTitle, b.IsActive,
		b.CreatedAt, b.UpdatedAt)
	return err
}

const botColumns = `id, account_id, bot_token, bot_username, name, description, welcome_text,
media_url, media_type, vip_chat_id, vip_chat_kind, vip_chat_title, is_active, created_at, updated_at`

func scanBot(row pgx.Row) (*types.Bot, error) {
	var b types.Bot
	var name, description, welcomeText, mediaURL, mediaType, vipChatID, vipChatKind, vipChatTitle *string
	err := row.Scan(&b.ID, &b.AccountID, &b.BotToken, &b.BotUsername, &name, &description, &welcomeText,
		&mediaURL, &mediaType, &vipChatID, &vipChatKind, &vipChatTitle, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if name != nil {
		b.Name = *name
	}
	if description != nil {
		b.Description = *description
	}
	if welcomeText != nil {
		b.WelcomeText = *welcomeText
	}
	if mediaURL != nil {
		b.MediaURL = *mediaURL
	}
	if mediaType != nil {
		b.MediaType = types.MediaKind(*mediaType)
	}
	if vipChatID != nil {
		b.VIPChatID = *vipChatID
	}
	if vipChatKind != nil {
		b.VIPChatKind = types.ChatKind(*vipChatKind)
	}
	if vipChatTitle != nil {
		b.VIPChatTitle = *vipChatTitle
	}
	return &b, nil
}

func (s *PostgresStore) GetBot(id, accountID string) (*types.Bot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return scanBot(s.pool.QueryRow(ctx, `
SELECT `+botColumns+`
FROM bots
WHERE id = $1 AND account_id = $2
`, id, accountID))
}

func (s *PostgresStore) GetBotByID(id string) (*types.Bot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return scanBot(s.pool.QueryRow(ctx, `
SELECT `+botColumns+`
FROM bots
WHERE id = $1
`, id))
}

func (s *PostgresStore) GetBotByToken(token string) (*types.Bot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return scanBot(s.pool.QueryRow(ctx, `
SELECT `+botColumns+`
FROM bots
WHERE bot_token = $1
`, strings.TrimSpace(token)))
}

func (s *PostgresStore) ListBots(accountID string) ([]*types.Bot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+botColumns+`
FROM bots
WHERE account_id = $1
ORDER BY created_at
`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*types.Bot, 0)
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateBot(b *types.Bot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE bots
SET bot_username = $2,
    name = NULLIF($3, ''),
    description = NULLIF($4, ''),
    welcome_text = NULLIF($5, ''),
    media_url = NULLIF($6, ''),
    media_type = NULLIF($7, ''),
    vip_chat_id = NULLIF($8, ''),
    vip_chat_kind = NULLIF($9, ''),
    vip_chat_title = NULLIF($10, ''),
    is_active = $11,
    updated_at = NOW()
WHERE id = $1
`, b.ID, strings.TrimSpace(b.BotUsername), b.Name, b.Description, b.WelcomeText,
		b.MediaURL, string(b.MediaType), b.VIPChatID, string(b.VIPChatKind), b.VIPChatTitle, b.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreatePlan(p *types.Plan) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
INSERT INTO plans (id, bot_id, name, price, duration_days, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, p.ID, p.BotID, strings.TrimSpace(p.Name), p.Price, p.DurationDays, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PostgresStore) GetPlan(id string) (*types.Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var p types.Plan
	err := s.pool.QueryRow(ctx, `
SELECT id, bot_id, name, price, duration_days, created_at, updated_at
FROM plans
WHERE id = $1
`, id).Scan(&p.ID, &p.BotID, &p.Name, &p.Price, &p.DurationDays, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &p, nil
}

func (s *PostgresStore) ListBotPlans(botID string) ([]*types.Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT id, bot_id, name, price, duration_days, created_at, updated_at
FROM plans
WHERE bot_id = $1
ORDER BY price
`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*types.Plan, 0)
	for rows.Next() {
		var p types.Plan
		if err := rows.Scan(&p.ID, &p.BotID, &p.Name, &p.Price, &p.DurationDays, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

const saleColumns = `id, bot_id, plan_id, user_telegram_id, status, payment_id, amount_received,
access_expires_at, created_at, updated_at`

func scanSale(row pgx.Row) (*types.Sale, error) {
	var sale types.Sale
	var paymentID *string
	var amount *float64
	err := row.Scan(&sale.ID, &sale.BotID, &sale.PlanID, &sale.UserTelegramID, &sale.Status,
		&paymentID, &amount, &sale.AccessExpiresAt, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	if paymentID != nil {
		sale.PaymentID = *paymentID
	}
	if amount != nil {
		sale.AmountReceived = *amount
	}
	return &sale, nil
}

func (s *PostgresStore) CreateSale(sale *types.Sale) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	if sale.Status == "" {
		sale.Status = types.SalePending
	}
	now := time.Now().UTC()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.UpdatedAt = now
	_, err := s.pool.Exec(ctx, `
INSERT INTO sales (id, bot_id, plan_id, user_telegram_id, status, payment_id, amount_received,
                   access_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0), $8, $9, $10)
`, sale.ID, sale.BotID, sale.PlanID, strings.TrimSpace(sale.UserTelegramID), string(sale.Status),
		strings.TrimSpace(sale.PaymentID), sale.AmountReceived, sale.AccessExpiresAt, sale.CreatedAt, sale.UpdatedAt)
	return err
}

func (s *PostgresStore) GetSale(id string) (*types.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return scanSale(s.pool.QueryRow(ctx, `
SELECT `+saleColumns+`
FROM sales
WHERE id = $1
`, id))
}

func (s *PostgresStore) GetSaleByPaymentID(paymentID string) (*types.Sale, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return scanSale(s.pool.QueryRow(ctx, `
SELECT `+saleColumns+`
FROM sales
WHERE payment_id = $1
`, strings.TrimSpace(paymentID)))
}

func (s *PostgresStore) ListBotSales(botID string) ([]*types.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+saleColumns+`
FROM sales
WHERE bot_id = $1
ORDER BY created_at DESC
`, botID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*types.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateSale(sale *types.Sale) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
UPDATE sales
SET status = $2,
    payment_id = NULLIF($3, ''),
    amount_received = NULLIF($4, 0),
    access_expires_at = $5,
    updated_at = NOW()
WHERE id = $1
`, sale.ID, string(sale.Status), strings.TrimSpace(sale.PaymentID), sale.AmountReceived, sale.AccessExpiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListExpiredSales(now time.Time) ([]*types.Sale, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT `+saleColumns+`
FROM sales
WHERE status = 'paid' AND access_expires_at IS NOT NULL AND access_expires_at < $1
`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*types.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	return out, rows.Err()
}
