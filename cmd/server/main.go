package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"mousebot/internal/config"
	"mousebot/internal/handler"
	"mousebot/internal/llm"
	"mousebot/internal/metrics"
	"mousebot/internal/middleware"
	"mousebot/internal/repository/postgres"
	"mousebot/internal/service/admin"
	"mousebot/internal/service/flow"
	"mousebot/internal/service/platform"
	"mousebot/internal/service/webhook"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	botRepo := postgres.NewBotRepository(repoConfig)
	modelRepo := postgres.NewModelRepository(repoConfig)
	flowRepo := postgres.NewFlowRepository(repoConfig)
	recordRepo := postgres.NewRequestRecordRepository(repoConfig)

	// Shared process-wide state
	m := metrics.New()
	clients := llm.NewRegistry(modelRepo)
	tokens := platform.NewTokenCache(cfg.PlatformTokenURL, logger)
	sequencer := platform.NewReplySequencer()
	dispatcher := platform.NewDispatcher(cfg.PlatformAPIBase, tokens, sequencer, logger)

	// Webhook pipeline
	router := flow.NewRouter(flowRepo)
	history := flow.NewHistoryLoader(recordRepo)
	roles := flow.NewRoleExecutor(recordRepo, history, clients, cfg.DataDir, logger)
	functions := flow.NewFunctionExecutor(cfg.DataDir, logger)
	pipeline := webhook.NewPipeline(botRepo, router, roles, functions, dispatcher, m, logger)

	// Admin services
	botService := admin.NewBotService(botRepo, logger)
	modelService := admin.NewModelService(modelRepo, clients, logger)
	flowService := admin.NewFlowService(flowRepo, logger)
	recordService := admin.NewRecordService(recordRepo, logger)
	assetService := admin.NewAssetService(cfg.DataDir)
	authService := admin.NewAuthService(cfg.AdminPassword, []byte(cfg.SessionSecret), 12*time.Hour, logger)

	// Handlers
	webhookHandler := handler.NewWebhookHandler(pipeline, logger)
	botHandler := handler.NewBotHandler(botService, logger)
	modelHandler := handler.NewModelHandler(modelService, logger)
	flowHandler := handler.NewFlowHandler(flowService, logger)
	recordHandler := handler.NewRecordHandler(recordService, logger)
	assetHandler := handler.NewAssetHandler(assetService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	logger.Info("services initialized")

	// Admin API routes (session-guarded)
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("POST /api/bots", botHandler.SaveBot)
	adminMux.HandleFunc("GET /api/bots", botHandler.ListBots)
	adminMux.HandleFunc("DELETE /api/bots/{id}", botHandler.DeleteBot)

	adminMux.HandleFunc("POST /api/models", modelHandler.SaveModel)
	adminMux.HandleFunc("GET /api/models", modelHandler.ListModels)
	adminMux.HandleFunc("DELETE /api/models/{id}", modelHandler.DeleteModel)
	adminMux.HandleFunc("GET /api/models/{id}/models", modelHandler.AvailableModels)

	adminMux.HandleFunc("POST /api/flows", flowHandler.SaveFlow)
	adminMux.HandleFunc("GET /api/flows", flowHandler.ListFlows)
	adminMux.HandleFunc("DELETE /api/flows/{id}", flowHandler.DeleteFlow)
	adminMux.HandleFunc("DELETE /api/flows/{id}/records", recordHandler.ClearFlowRecords)

	adminMux.HandleFunc("GET /api/records", recordHandler.ListRecords)
	adminMux.HandleFunc("GET /api/assets/roles", assetHandler.ListRoleTemplates)
	adminMux.HandleFunc("GET /api/assets/functions", assetHandler.ListFunctionScripts)

	// Top-level routes: webhook, login and metrics stay outside the
	// session guard
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/{botID}", webhookHandler.HandleEvent)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/api/", middleware.AdminAuth(authService)(adminMux))

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
