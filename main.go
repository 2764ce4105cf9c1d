package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Aashish23092/kyc-document-verification/config"
	"github.com/Aashish23092/kyc-document-verification/handler"
	"github.com/Aashish23092/kyc-document-verification/metrics"
	"github.com/Aashish23092/kyc-document-verification/service"
	"github.com/Aashish23092/kyc-document-verification/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx := context.Background()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Verification policy: %+v", cfg.Rules)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize OCR engines, field parser and extraction cache
	extractor, cleanup, err := service.NewExtractorFromConfig(ctx, cfg, m)
	if err != nil {
		log.Fatalf("Failed to initialize extraction pipeline: %v", err)
	}
	defer cleanup()

	// Results are persisted only when a database is configured
	var resultStore store.ResultStore
	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		resultStore = store.NewPostgresStore(db)
	}

	// Initialize service layer
	kycService := service.NewKYCService(service.NewValidator(cfg.Rules), extractor, resultStore, m, cfg.Workers)

	// Initialize handler layer
	kycHandler := handler.NewKYCHandler(kycService, cfg.MaxFileSize, cfg.MaxDocuments)

	// Setup Gin router
	router := gin.Default()
	router.Use(handler.RequestID())

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "KYC Document Verification",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		kyc := api.Group("/kyc")
		{
			kyc.POST("/verify", kycHandler.Verify)
			kyc.POST("/extract", kycHandler.Extract)
		}
	}

	// Start server
	log.Printf("Starting KYC Document Verification Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
