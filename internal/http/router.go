package http

import (
	"context"
	"net/http"
	"time"

	"tictactoe_server/internal/http/handlers"
	"tictactoe_server/internal/http/middleware"
	"tictactoe_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Handler       *handlers.Handler
	Tokens        middleware.TokenParser
	RateLimiter   *middleware.RateLimiter
	WS            *ws.WSHandler
	AllowedOrigin string
	// Health reports whether storage answers; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(d.AllowedOrigin))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.WS != nil {
		r.GET("/ws", d.WS.HandleWS())
	}

	h := d.Handler
	api := r.Group("/api", d.RateLimiter.Handler())
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", middleware.JWTAuth(d.Tokens))
	authed.GET("/profile", h.Profile)
	authed.GET("/activity", h.MyActivity)
	authed.GET("/history", h.GameHistory)
	authed.GET("/history/:sessionId", h.GameSession)
	authed.GET("/leaderboard", h.Leaderboard)
	authed.GET("/achievements", h.ListAchievements)
	authed.GET("/store", h.StoreItems)
	authed.POST("/store/purchase", h.Purchase)

	return r
}
