package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/openagora/agora-backend/internal/handlers"
	"github.com/openagora/agora-backend/internal/logger"
	"github.com/openagora/agora-backend/internal/platform/envutil"
	"github.com/openagora/agora-backend/internal/sampling"
	"github.com/openagora/agora-backend/internal/server"
	"github.com/openagora/agora-backend/internal/services"
	"github.com/openagora/agora-backend/internal/store"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Sampling config
	log.Info("Loading sampling config from main...")
	cfg, err := sampling.LoadConfig(log)
	if err != nil {
		log.Error("Invalid sampling config", "error", err)
		os.Exit(1)
	}

	sampler, err := sampling.NewSampler(log, cfg)
	if err != nil {
		log.Error("Could not init Sampler", "error", err)
		os.Exit(1)
	}

	// Stores
	// The production deployment fronts the platform's document database; the
	// in-memory store stands in until those adapters are linked in.
	log.Info("Setting up stores from main...")
	memStore := store.NewMemStore()

	// Services
	log.Info("Setting up services from main...")
	samplingService := services.NewSamplingService(log, sampler, memStore, memStore)

	// Handlers
	log.Info("Setting up handlers from main...")
	samplingHandler := handlers.NewSamplingHandler(log, samplingService)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if raw := envutil.String("CORS_ALLOW_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	router := server.NewRouter(server.RouterConfig{
		SamplingHandler: samplingHandler,
		AllowOrigins:    origins,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
