package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/numan98khan/igflow-simulator/database"
	"github.com/numan98khan/igflow-simulator/internal/engine"
	"github.com/numan98khan/igflow-simulator/internal/handlers"
	"github.com/numan98khan/igflow-simulator/internal/models"
	"github.com/numan98khan/igflow-simulator/internal/routes"
	"github.com/numan98khan/igflow-simulator/internal/services"
	"github.com/numan98khan/igflow-simulator/internal/simulator"
	"github.com/numan98khan/igflow-simulator/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.PreviewProfile{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Initialize the automation-engine client
	engineClient, err := engine.NewHTTPClient()
	if err != nil {
		log.Fatal("Failed to initialize engine client:", err)
	}
	log.Println("✅ Engine client initialized")

	// Initialize simulator services
	simConfig := simulator.ConfigFromEnv()
	registry := simulator.NewRegistry(engineClient, simConfig)
	profileService := services.NewProfileService(store, registry)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "IGFlow Simulator API v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Dashboard-Key",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Service banner
	app.Get("/", func(c *fiber.Ctx) error {
		profileCount, _ := store.CountProfiles()
		return c.JSON(fiber.Map{
			"service":     "IGFlow Simulator API",
			"version":     version,
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"simulator": fiber.Map{
				"active_sessions":  registry.ActiveCount(),
				"poll_interval_ms": simConfig.PollInterval.Milliseconds(),
				"poll_attempts":    simConfig.PollAttempts,
			},
			"profiles": profileCount,
		})
	})

	// Health check endpoint for monitoring
	healthHandler := handlers.NewHealthHandler(version, store, registry, os.Getenv("ENGINE_BASE_URL") != "")
	app.Get("/health", healthHandler.Check)

	// API routes
	routes.SetupRoutes(app, registry, profileService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping simulator sessions...")
		registry.Shutdown()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 IGFlow Simulator starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("🔌 Engine: %s", getEngineStatus())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getEngineStatus() string {
	if os.Getenv("ENGINE_BASE_URL") == "" {
		return "Not configured"
	}
	return os.Getenv("ENGINE_BASE_URL")
}
