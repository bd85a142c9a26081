// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exportplatform/export-api/internal/chat"
	"github.com/exportplatform/export-api/internal/config"
	"github.com/exportplatform/export-api/internal/handlers"
	"github.com/exportplatform/export-api/internal/middleware"
	"github.com/exportplatform/export-api/internal/services"
)

// Initialize wires the services with their production drivers.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Mail:    services.NewMailService(services.NewEmailSender(cfg.Email), cfg),
		SMS:     services.NewSMSSender(cfg.SMS),
		Storage: storageService,
		Search:  services.NewSearchService(cfg.Search),
	}
	return New(db, cfg, deps), nil
}

// Dependencies are the external drivers; tests swap in fakes.
type Dependencies struct {
	Mail    *services.MailService
	SMS     services.SMSSender
	Storage *services.StorageService
	Search  *services.SearchService
}

func New(db *gorm.DB, cfg *config.Config, deps Dependencies) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, deps.Mail)
	companyService := services.NewCompanyService(db, deps.Storage, deps.Search)

	authService := services.NewAuthService(db, cfg, deps.Mail, deps.SMS)
	userService := services.NewUserService(db, deps.Storage)
	employeeService := services.NewEmployeeService(db, deps.Mail, notificationService)
	categoryService := services.NewCategoryService(db, companyService)
	documentService := services.NewDocumentService(db, deps.Storage)
	galleryService := services.NewGalleryService(db, deps.Storage)
	reviewService := services.NewReviewService(db, notificationService)
	chatService := services.NewChatService(db, notificationService)
	analyticsService := services.NewAnalyticsService(db)
	catalogService := services.NewCatalogService(db, deps.Search)
	exportRequestService := services.NewExportRequestService(db, notificationService)
	adminService := services.NewAdminService(db, notificationService, companyService)

	hub := chat.NewHub(chatService, cfg.CORS.AllowedOrigins)
	chatService.SetBroadcaster(hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, categoryService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	mediaHandler := handlers.NewMediaHandler(documentService, galleryService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	chatHandler := handlers.NewChatHandler(chatService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	exportRequestHandler := handlers.NewExportRequestHandler(exportRequestService)
	adminHandler := handlers.NewAdminHandler(adminService)
	spaHandler := handlers.NewSPAHandler(cfg.Frontend.StaticDir)

	limits := middleware.NewRateLimits(
		cfg.RateLimit.Enabled,
		cfg.RateLimit.GeneralPerSecond,
		cfg.RateLimit.GeneralBurst,
		cfg.RateLimit.AuthPerMinute,
		cfg.RateLimit.UploadPerMinute,
	)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())

	r.GET("/health", handlers.Health)

	if cfg.Storage.Driver == "local" {
		r.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir)
	}

	api := r.Group("/api")
	api.Use(limits.General)
	{
		api.GET("", handlers.APIStatus)

		// Authentication routes
		auth := api.Group("/auth")
		auth.Use(limits.Auth)
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/session", middleware.AuthRequired(), authHandler.Session)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.GET("/verify-reset-code", authHandler.VerifyResetCode)
			auth.POST("/reset-password", authHandler.ResetPassword)
		}

		// Public routes, the session is optional
		public := api.Group("")
		public.Use(middleware.OptionalAuth(), middleware.LoadOptionalUser(db))
		{
			public.GET("/catalog", catalogHandler.SearchCompanies)
			public.GET("/categories", catalogHandler.ListCategories)
			public.GET("/exporters/:id", companyHandler.GetExporter)
			public.GET("/exporters/:id/reviews", reviewHandler.ListPublic)
			public.POST("/export-requests", exportRequestHandler.Create)
		}

		// Authenticated actions on public pages
		member := api.Group("/exporters/:id")
		member.Use(middleware.AuthRequired(), middleware.LoadUser(db))
		{
			member.POST("/reviews", reviewHandler.Create)
			member.POST("/chat", chatHandler.OpenChat)
		}

		// Real-time relay, the token may come as ?token= since browsers
		// cannot set headers on websocket requests
		api.GET("/socket", middleware.SocketToken(), middleware.AuthRequired(), middleware.LoadUser(db), hub.ServeWS)

		// Personal cabinet
		cabinet := api.Group("/cabinet")
		cabinet.Use(middleware.AuthRequired(), middleware.LoadUser(db), middleware.AuditLogMiddleware(db))
		{
			cabinet.GET("/profile", userHandler.GetProfile)
			cabinet.PUT("/profile", userHandler.UpdateProfile)
			cabinet.POST("/profile/avatar", limits.Upload, userHandler.UploadAvatar)
			cabinet.PUT("/profile/password", userHandler.ChangePassword)

			cabinet.GET("/company", companyHandler.GetCompany)
			cabinet.POST("/company", limits.Upload, companyHandler.SaveCompany)

			cabinet.GET("/employees", employeeHandler.ListEmployees)
			cabinet.POST("/employees", employeeHandler.AddEmployee)
			cabinet.DELETE("/employees/:id", employeeHandler.RemoveEmployee)

			cabinet.GET("/categories", categoryHandler.ListCategories)
			cabinet.POST("/categories", categoryHandler.CreateCategory)
			cabinet.PUT("/categories/:id", categoryHandler.UpdateCategory)
			cabinet.DELETE("/categories/:id", categoryHandler.DeleteCategory)

			cabinet.GET("/documents", mediaHandler.ListDocuments)
			cabinet.POST("/documents", limits.Upload, mediaHandler.UploadDocument)
			cabinet.DELETE("/documents/:id", mediaHandler.DeleteDocument)

			cabinet.GET("/gallery", mediaHandler.ListImages)
			cabinet.POST("/gallery", limits.Upload, mediaHandler.UploadImages)
			cabinet.DELETE("/gallery/:id", mediaHandler.DeleteImage)

			cabinet.GET("/reviews", reviewHandler.ListCompanyReviews)
			cabinet.POST("/reviews/:id/response", reviewHandler.Respond)

			cabinet.GET("/notifications", notificationHandler.ListNotifications)
			cabinet.PUT("/notifications/read", notificationHandler.MarkRead)
			cabinet.DELETE("/notifications", notificationHandler.DeleteNotifications)

			cabinet.GET("/chats", chatHandler.ListChats)
			cabinet.GET("/chats/:id/messages", chatHandler.ListMessages)
			cabinet.POST("/chats/:id/messages", chatHandler.SendMessage)

			cabinet.GET("/analytics", analyticsHandler.GetAnalytics)

			cabinet.GET("/export-requests", exportRequestHandler.ListForCompany)
			cabinet.PUT("/export-requests/:id/status", exportRequestHandler.UpdateStatus)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.LoadUser(db), middleware.AdminRequired(), middleware.AuditLogMiddleware(db))
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/companies", adminHandler.GetCompanies)
			admin.PUT("/companies/:id/status", adminHandler.UpdateCompanyStatus)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.GET("/export/companies", adminHandler.ExportCompanies)
			admin.GET("/export/users", adminHandler.ExportUsers)
			admin.POST("/notifications", notificationHandler.CreateNotification)
		}
	}

	// Browser pages
	r.NoRoute(middleware.PageGuard(), spaHandler.Serve)

	return r
}
