package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// PlatformFee is the platform's cut of a sale: a fixed base fee plus five
// percent of the plan price, rounded to centavos.
func PlatformFee(price float64) float64 {
	return round2(1.48 + price*0.05)
}

// CreatorAmount is what the bot owner receives after the platform fee.
func CreatorAmount(price float64) float64 {
	return round2(price - PlatformFee(price))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type Metadata struct {
	BotID          string `json:"bot_id"`
	PlanID         string `json:"plan_id"`
	UserTelegramID string `json:"user_telegram_id"`
}

type Link struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// WebhookEvent is the payment notification the gateway posts back to us.
type WebhookEvent struct {
	PaymentID string   `json:"payment_id"`
	Status    string   `json:"status"`
	Amount    float64  `json:"amount"`
	Metadata  Metadata `json:"metadata"`
}

type split struct {
	Token string  `json:"token"`
	Valor float64 `json:"valor"`
}

type createLinkRequest struct {
	Token     string   `json:"token"`
	Valor     float64  `json:"valor"`
	Descricao string   `json:"descricao"`
	Split     []split  `json:"split,omitempty"`
	Metadata  Metadata `json:"metadata"`
}

// PushinPay creates PIX payment links. Each link is charged against the bot
// owner's gateway token with the platform fee split off to the platform token.
type PushinPay struct {
	baseURL       string
	platformToken string
	httpClient    *http.Client
}

func NewPushinPay(baseURL, platformToken string) *PushinPay {
	return &PushinPay{
		baseURL:       strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		platformToken: platformToken,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *PushinPay) CreateLink(ctx context.Context, creatorToken, description string, price float64, meta Metadata) (*Link, error) {
	if creatorToken == "" {
		return nil, fmt.Errorf("pushinpay: missing creator token")
	}

	reqBody := createLinkRequest{
		Token:     creatorToken,
		Valor:     round2(price),
		Descricao: description,
		Metadata:  meta,
	}
	if p.platformToken != "" {
		reqBody.Split = []split{{Token: p.platformToken, Valor: PlatformFee(price)}}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creatorToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return nil, fmt.Errorf("pushinpay: create link: %s", apiErr.Message)
	}

	var link Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, err
	}
	if link.ID == "" || link.URL == "" {
		return nil, fmt.Errorf("pushinpay: create link: incomplete response")
	}
	return &link, nil
}
