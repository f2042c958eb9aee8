package main

import (
	"log"

	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/controllers"
	"github.com/harborline/CruiseLink/routes"
	"github.com/harborline/CruiseLink/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Create sample admin
	if err := controllers.CreateSampleAdmin(); err != nil {
		utils.LogError("Failed to create sample admin: %v", err)
		log.Fatal("Failed to create sample admin:", err)
	}

	// Wire stores, cache and domain services
	controllers.InitServices(cfg)

	// Set up router
	router := routes.SetupRouter()

	// Add middleware
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	utils.LogInfo("Server starting on port %s", port)
	// Start server
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
