// Package api serves health, metrics, status and read-only leaderboards over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sniper-bowl-bot/internal/leaderboard"
	"sniper-bowl-bot/internal/observability"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewRouter builds the HTTP router.
func NewRouter(boards *leaderboard.Builder, status *Status, logger *zap.Logger) *gin.Engine {
	logger = logger.Named("API")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	router.Use(cors.New(corsConfig))
	router.Use(zapLogger(logger))
	router.Use(gin.Recovery())

	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(observability.Handler()))
	router.GET("/status", status.handle)

	h := &leaderboardHandler{boards: boards, logger: logger}
	v1 := router.Group("/api/v1")
	{
		v1.GET("/chats/:chat/wallets/leaderboard", h.wallets)
		v1.GET("/chats/:chat/users/:user/picks/leaderboard", h.picks)
	}

	return router
}

func health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func zapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
