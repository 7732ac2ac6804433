package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/types"
)

// listSales returns the caller's sales, scoped to one bot when bot_id is
// given and merged across all of the caller's bots otherwise.
func (s *Server) listSales(c *gin.Context) {
	if botID := c.Query("bot_id"); botID != "" {
		s.listSalesForBot(c, botID)
		return
	}

	account := middleware.AccountFrom(c)
	bots, err := s.store.ListBots(account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	all := make([]*types.Sale, 0)
	for _, b := range bots {
		sales, err := s.store.ListBotSales(b.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		all = append(all, sales...)
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) listBotSales(c *gin.Context) {
	s.listSalesForBot(c, c.Param("id"))
}

func (s *Server) listSalesForBot(c *gin.Context, botID string) {
	account := middleware.AccountFrom(c)
	b, err := s.store.GetBot(botID, account.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	sales, err := s.store.ListBotSales(b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}
