package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackinbot/backend/internal/apperrors"
	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/types"
)

type registerRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	PushinpayToken string `json:"pushinpay_token"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("email and a password of at least 8 characters are required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.store.GetAccountByEmail(email); err == nil {
		respondError(c, apperrors.Validation("email already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	account := &types.Account{
		Email:          email,
		PasswordHash:   string(hash),
		PushinpayToken: strings.TrimSpace(req.PushinpayToken),
	}
	if err := s.store.CreateAccount(account); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("email and password are required"))
		return
	}

	account, err := s.store.GetAccountByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondError(c, apperrors.Unauthorized("invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, apperrors.Unauthorized("invalid email or password"))
		return
	}

	token, err := s.auth.GenerateToken(account.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) me(c *gin.Context) {
	account := middleware.AccountFrom(c)
	if account == nil {
		respondError(c, apperrors.Unauthorized("not authenticated"))
		return
	}
	c.JSON(http.StatusOK, account)
}

type updateMeRequest struct {
	PushinpayToken *string `json:"pushinpay_token"`
}

func (s *Server) updateMe(c *gin.Context) {
	account := middleware.AccountFrom(c)
	if account == nil {
		respondError(c, apperrors.Unauthorized("not authenticated"))
		return
	}

	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("invalid payload"))
		return
	}

	if req.PushinpayToken != nil {
		account.PushinpayToken = strings.TrimSpace(*req.PushinpayToken)
	}
	if err := s.store.UpdateAccount(account); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
