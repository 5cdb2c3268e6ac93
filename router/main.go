package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/concours-mef/api/config"
	"github.com/concours-mef/api/handlers"
	application_handlers "github.com/concours-mef/api/handlers/application"
	auth_handlers "github.com/concours-mef/api/handlers/auth"
	center_handlers "github.com/concours-mef/api/handlers/center"
	city_handlers "github.com/concours-mef/api/handlers/city"
	contest_handlers "github.com/concours-mef/api/handlers/contest"
	specialty_handlers "github.com/concours-mef/api/handlers/specialty"
	statistics_handlers "github.com/concours-mef/api/handlers/statistics"
	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/services"
	"github.com/concours-mef/api/services/storage"
	"github.com/concours-mef/api/utils/auth"
	"github.com/concours-mef/api/utils/cache"
	"github.com/concours-mef/api/utils/middleware"
)

// SetupRoutes wires every service and handler onto the Fiber app
func SetupRoutes(app *fiber.App, db *gorm.DB, getEnv *config.EnvironmentVariables) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "concours-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	// Redis backs the statistics cache; the API degrades gracefully without it
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Statistics caching disabled.", err)
		redisCache = nil
	}

	// Blob store for uploaded documents, also optional in development
	var blobs *storage.BlobStore
	blobConfig := storage.ConfigFromEnv()
	if blobConfig.Bucket == "" || blobConfig.AccessKey == "" {
		log.Println("Warning: Blob storage not configured. Document bytes will not be persisted.")
	} else if blobs, err = storage.NewBlobStore(blobConfig); err != nil {
		log.Printf("Warning: Failed to initialize blob storage: %v", err)
		blobs = nil
	}

	emailService := services.NewEmailService()
	if !emailService.IsConfigured() {
		log.Println("Warning: SMTP not configured. Outbound emails will be skipped.")
	}

	applicationService := services.NewApplicationService(db, emailService)
	notificationService := services.NewNotificationService(db)
	statisticsService := services.NewStatisticsService(db, redisCache)
	contestService := services.NewContestService(db)
	centerService := services.NewCenterService(db)
	capacityService := services.NewCapacityService(db)
	documentService := services.NewDocumentService(db, blobs)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	healthHandler := handlers.NewHealthHandler(db)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager)
	applicationHandler := application_handlers.NewApplicationHandler(applicationService, notificationService, statisticsService)
	documentHandler := application_handlers.NewDocumentHandler(documentService)
	contestHandler := contest_handlers.NewContestHandler(contestService)
	centerHandler := center_handlers.NewCenterHandler(centerService, capacityService)
	cityHandler := city_handlers.NewCityHandler(db)
	specialtyHandler := specialty_handlers.NewSpecialtyHandler(db)
	statisticsHandler := statistics_handlers.NewStatisticsHandler(statisticsService)

	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Check)

	// API v1 group
	api := app.Group("/api/v1")

	staff := authMiddleware.Required()
	adminOnly := authMiddleware.RequireRole(model.RoleAdmin)
	managers := authMiddleware.RequireRole(model.RoleAdmin, model.RoleGlobalManager, model.RoleLocalManager)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/me", staff, authHandler.GetProfile)

	// Referential data (public reads, admin writes)
	cities := api.Group("/cities")
	cities.Get("/", cityHandler.List)
	cities.Post("/", staff, adminOnly, cityHandler.Create)

	specialties := api.Group("/specialties")
	specialties.Get("/", specialtyHandler.List)
	specialties.Post("/", staff, adminOnly, specialtyHandler.Create)

	// Contest catalogue
	contests := api.Group("/contests")
	contests.Get("/open", contestHandler.ListOpen)                          // Public: contests accepting applications
	contests.Get("/", staff, contestHandler.List)                           // Staff: full catalogue
	contests.Get("/:id", contestHandler.Get)                                // Public: contest details
	contests.Post("/", staff, adminOnly, contestHandler.Create)             // Admin: create contest
	contests.Post("/:id/publish", staff, adminOnly, contestHandler.Publish) // Admin: publish contest

	// Exam centers
	centers := api.Group("/centers")
	centers.Get("/", centerHandler.List)                        // Public: active centers, optionally by city
	centers.Get("/:id", centerHandler.Get)                      // Public: center details
	centers.Get("/:id/capacity", staff, centerHandler.Capacity) // Staff: per-specialty seat usage
	centers.Post("/", staff, adminOnly, centerHandler.Create)   // Admin: create center

	// Applications
	applications := api.Group("/applications")
	applications.Post("/", applicationHandler.Submit)     // Public: candidate submission
	applications.Get("/", staff, applicationHandler.List) // Staff: filtered listing
	applications.Get("/:number", applicationHandler.Get)  // Public: consult by number
	applications.Post("/:number/validate", staff, managers, applicationHandler.Validate)
	applications.Post("/:number/reject", staff, managers, applicationHandler.Reject)
	applications.Delete("/:number", staff, adminOnly, applicationHandler.Delete)
	applications.Get("/:number/notifications", staff, applicationHandler.ListNotifications)

	// Application documents
	applications.Post("/:number/documents", documentHandler.Upload)
	applications.Get("/:number/documents", documentHandler.List)
	api.Get("/documents/:id/download", staff, documentHandler.Download)

	// Statistics (staff only)
	statistics := api.Group("/statistics", staff)
	statistics.Get("/", statisticsHandler.Aggregate)
	statistics.Get("/dashboard", statisticsHandler.Dashboard)
	statistics.Get("/centers/:id", statisticsHandler.CenterBreakdown)
}
