package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiikun-cn/tarot-mcp/internal/config"
	"github.com/shiikun-cn/tarot-mcp/internal/deck"
	"github.com/shiikun-cn/tarot-mcp/internal/draw"
	"github.com/shiikun-cn/tarot-mcp/internal/handler"
	"github.com/shiikun-cn/tarot-mcp/internal/middleware"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra := setupInfra(ctx, cfg)

	// ----------------------------
	// Dependencies
	// ----------------------------

	cards := deck.Load(cfg.DeckPaths)
	engine := draw.NewEngine(cards, infra.Store)
	drawHandler := handler.NewHandler(engine)
	apiKey := middleware.NewAPIKey(cfg.APIKey, cfg.APIKeyHash)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"code":   0,
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// ----------------------------
	// Key-protected Routes
	// ----------------------------

	api := router.Group("/")
	api.Use(apiKey.Require())
	drawHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, infra.cleanup, nil
}
