package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/blackinbot/backend/internal/access"
	"github.com/blackinbot/backend/internal/handlers"
	"github.com/blackinbot/backend/internal/middleware"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/store"
	"github.com/blackinbot/backend/types"
)

type Server struct {
	store           types.Store
	botCache        *store.BotCache
	clients         telegram.Factory
	auth            *middleware.Auth
	botHandler      *handlers.BotHandler
	reconciler      *access.Reconciler
	sweeper         *access.Sweeper
	pushinpaySecret string
	publicBaseURL   string
}

type Deps struct {
	Store           types.Store
	BotCache        *store.BotCache
	Clients         telegram.Factory
	Auth            *middleware.Auth
	BotHandler      *handlers.BotHandler
	Reconciler      *access.Reconciler
	Sweeper         *access.Sweeper
	PushinpaySecret string
	PublicBaseURL   string
}

func NewServer(d Deps) *Server {
	return &Server{
		store:           d.Store,
		botCache:        d.BotCache,
		clients:         d.Clients,
		auth:            d.Auth,
		botHandler:      d.BotHandler,
		reconciler:      d.Reconciler,
		sweeper:         d.Sweeper,
		pushinpaySecret: d.PushinpaySecret,
		publicBaseURL:   d.PublicBaseURL,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/register", s.register)
	r.POST("/login", s.login)

	authorized := r.Group("/", s.auth.RequireAccount())
	{
		authorized.GET("/me", s.me)
		authorized.PUT("/me", s.updateMe)

		authorized.POST("/bots", s.createBot)
		authorized.GET("/bots", s.listBots)
		authorized.GET("/bots/:id", s.getBot)
		authorized.PUT("/bots/:id", s.updateBot)
		authorized.POST("/bots/:id/activate-group", s.activateGroup)
		authorized.GET("/bots/:id/plans", s.listBotPlans)
		authorized.GET("/bots/:id/sales", s.listBotSales)

		authorized.POST("/message", s.updateMessage)
		authorized.POST("/plans", s.createPlan)
		authorized.GET("/sales", s.listSales)
	}

	r.POST("/telegram/webhook/:bot_token", middleware.ResolveBot(s.botCache), s.telegramWebhook)

	r.POST("/pushinpay/webhook", s.pushinpayWebhook)
	r.GET("/pushinpay/status/:payment_id", s.paymentStatus)
	r.POST("/pushinpay/expire-access", s.expireAccess)

	return r
}
