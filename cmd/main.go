package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docuchat-backend/internal/ai"
	"docuchat-backend/internal/config"
	"docuchat-backend/internal/extract"
	"docuchat-backend/internal/ingest"
	"docuchat-backend/internal/logger"
	"docuchat-backend/internal/orchestrator"
	"docuchat-backend/internal/retrieve"
	"docuchat-backend/internal/store"
	"docuchat-backend/internal/telemetry"
	"docuchat-backend/internal/tools"
	"docuchat-backend/middleware"
	"docuchat-backend/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Connect to Redis (token revocation + rate limiting)
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Telemetry
	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("docuchat-backend", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// Storage layer
	db := mongoClient.Database(cfg.DBName)

	embedder, err := ai.NewEmbedder(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	chunkStore := store.NewMongoChunkStore(db, embedder)
	documentLog := store.NewMongoDocumentLog(db)

	// Ingestion + retrieval
	pipeline := ingest.NewPipeline(chunkStore, documentLog, extract.NewFileExtractor(), cfg.FileStorageDir)
	retriever := retrieve.NewRetriever(chunkStore, cfg.RetrieveLimit)

	// Tool registry
	toolTimeout := time.Duration(cfg.ToolTimeout) * time.Second
	registry := tools.NewRegistry()
	registry.MustRegister(tools.NewWeatherTool(toolTimeout))
	registry.MustRegister(tools.NewCurrencyTool(cfg.CurrencyAPIKey, toolTimeout))
	registry.MustRegister(tools.NewNewsTool(cfg.NewsAPIKey, toolTimeout))
	registry.MustRegister(tools.NewWikipediaTool(toolTimeout))
	registry.MustRegister(tools.NewWebSearchTool(toolTimeout))

	// Model client + orchestrator
	modelClient := ai.NewModelClient(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel,
		cfg.ModelTier, time.Duration(cfg.ModelTimeout)*time.Second)
	orch := orchestrator.New(retriever, registry, modelClient)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	authMiddleware := middleware.NewAuthMiddleware(cfg, rdb)
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb)
	routes.SetupFileRoutes(router, cfg, authMiddleware, pipeline, documentLog, metrics)
	routes.SetupChatRoutes(router, authMiddleware, orch)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
