package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openagora/agora-backend/internal/handlers"
)

type RouterConfig struct {
	SamplingHandler *handlers.SamplingHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5174"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-ID", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/proposals/next-batch", cfg.SamplingHandler.NextBatch)
		api.GET("/proposals/:id/score", cfg.SamplingHandler.ScoreProposal)
		api.GET("/sampling/config", cfg.SamplingHandler.GetConfig)
		api.PATCH("/sampling/config", cfg.SamplingHandler.UpdateConfig)
	}

	return router
}
