package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/apperrors"
	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/types"
)

type createPlanRequest struct {
	BotID        string  `json:"bot_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"required"`
	DurationDays int     `json:"duration_days" binding:"required"`
}

func (s *Server) createPlan(c *gin.Context) {
	account := middleware.AccountFrom(c)

	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("bot_id, name, price and duration_days are required"))
		return
	}
	if req.Price < types.MinPlanPrice {
		respondError(c, apperrors.Validation(fmt.Sprintf("price must be at least R$ %.2f", types.MinPlanPrice)))
		return
	}
	if req.DurationDays < 1 {
		respondError(c, apperrors.Validation("duration_days must be at least 1"))
		return
	}

	b, err := s.store.GetBot(req.BotID, account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	plan := &types.Plan{
		BotID:        b.ID,
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		DurationDays: req.DurationDays,
	}
	if err := s.store.CreatePlan(plan); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (s *Server) listBotPlans(c *gin.Context) {
	account := middleware.AccountFrom(c)
	b, err := s.store.GetBot(c.Param("id"), account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	plans, err := s.store.ListBotPlans(b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}
