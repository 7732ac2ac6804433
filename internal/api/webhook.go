package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot/models"

	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/internal/payments"
)

const signatureHeader = "X-Signature"

// telegramWebhook receives one update for the bot resolved from the URL
// token. Telegram only needs an ok response; processing errors are logged.
func (s *Server) telegramWebhook(c *gin.Context) {
	b := middleware.BotFrom(c)
	if b == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	var upd models.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Printf("webhook bot %s: bad update payload: %v", b.ID, err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	s.botHandler.HandleUpdate(c.Request.Context(), b, &upd)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// pushinpayWebhook receives payment status events from the gateway. The
// signature covers the raw body and is checked before anything is parsed.
func (s *Server) pushinpayWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if !payments.VerifySignature(body, c.GetHeader(signatureHeader), s.pushinpaySecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var ev payments.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := s.reconciler.Process(c.Request.Context(), ev); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// paymentStatus lets the checkout page poll whether its payment landed.
func (s *Server) paymentStatus(c *gin.Context) {
	sale, err := s.store.GetSaleByPaymentID(c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_id": sale.PaymentID, "status": sale.Status})
}

// expireAccess triggers one sweep over expired paid sales.
func (s *Server) expireAccess(c *gin.Context) {
	res := s.sweeper.Run(c.Request.Context())
	c.JSON(http.StatusOK, res)
}
