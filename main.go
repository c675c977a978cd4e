package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sevispass/sevispass-backend/config"
	"github.com/sevispass/sevispass-backend/routes"
	"github.com/sevispass/sevispass-backend/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.NewConfig()
	if cfg.AllowInsecureBypass {
		log.Println("Warning: DEV_AUTH_BYPASS is active; 2FA code invalidation is relaxed")
	}

	// Initialize Supabase client
	supabaseClient := config.NewSupabaseClient(cfg)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// Setup CORS middleware
	router.Use(config.CORSMiddleware(cfg))

	// Setup routes
	codeService := routes.SetupRoutes(router, supabaseClient, cfg)

	// Periodic sweep of used/expired verification codes
	go sweepCodes(codeService, cfg.CodeSweepInterval)

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func sweepCodes(codes *services.CodeService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := codes.Sweep(); err != nil {
			log.Printf("Code sweep failed: %v", err)
		}
	}
}
