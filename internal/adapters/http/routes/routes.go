package routes

import (
	"time"

	"alfa-sacco/internal/adapters/http/handlers"
	"alfa-sacco/internal/adapters/http/middleware"
	"alfa-sacco/internal/adapters/persistence/repositories"
	"alfa-sacco/internal/config"
	"alfa-sacco/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	savingsRepo := repositories.NewSavingsRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	paymentRepo := repositories.NewLoanPaymentRepository(db)

	// Initialize services
	aggregation := services.NewAggregationService()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	memberService := services.NewMemberService(db, memberRepo, userRepo)
	savingsService := services.NewSavingsService(db, savingsRepo, memberRepo, aggregation)
	loanService := services.NewLoanService(db, loanRepo, paymentRepo, memberRepo, aggregation)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	memberHandler := handlers.NewMemberHandler(memberService)
	savingsHandler := handlers.NewSavingsHandler(savingsService)
	loanHandler := handlers.NewLoanHandler(loanService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, memberService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (rate limited, never cached)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// User management routes (admin only except own password)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Put("/me/password", userHandler.ChangePassword)
	userRoutes.Get("/", middleware.AdminOnly(), userHandler.List)
	userRoutes.Get("/:id", middleware.AdminOnly(), userHandler.Get)
	userRoutes.Put("/:id/role", middleware.AdminOnly(), userHandler.SetRole)
	userRoutes.Put("/:id/active", middleware.AdminOnly(), userHandler.SetActive)
	userRoutes.Delete("/:id", middleware.AdminOnly(), userHandler.Delete)

	// Member routes
	memberRoutes := apiV1.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg))
	memberRoutes.Post("/", memberHandler.Register)
	memberRoutes.Get("/", memberHandler.List)
	memberRoutes.Get("/me", memberHandler.GetMe)
	memberRoutes.Get("/:id", memberHandler.Get)
	memberRoutes.Put("/:id", middleware.StaffOnly(), memberHandler.Update)
	memberRoutes.Delete("/:id", middleware.StaffOnly(), memberHandler.Delete)
	memberRoutes.Get("/:id/statement", savingsHandler.Statement)
	memberRoutes.Get("/:id/loans", loanHandler.ListByMember)

	// Savings routes
	savingsRoutes := apiV1.Group("/savings")
	savingsRoutes.Use(middleware.AuthMiddleware(cfg))
	savingsRoutes.Post("/", savingsHandler.Record)
	savingsRoutes.Get("/", middleware.StaffOnly(), savingsHandler.List)
	savingsRoutes.Put("/:id", middleware.StaffOnly(), savingsHandler.Update)
	savingsRoutes.Delete("/:id", middleware.StaffOnly(), savingsHandler.Delete)

	// Loan routes
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Post("/", loanHandler.Apply)
	loanRoutes.Get("/", middleware.StaffOnly(), loanHandler.List)
	loanRoutes.Get("/:id", loanHandler.Get)
	loanRoutes.Post("/:id/approve", middleware.StaffOnly(), loanHandler.Approve)
	loanRoutes.Post("/:id/disburse", middleware.StaffOnly(), loanHandler.Disburse)
	loanRoutes.Post("/:id/reject", middleware.StaffOnly(), loanHandler.Reject)
	loanRoutes.Delete("/:id", middleware.StaffOnly(), loanHandler.Delete)
	loanRoutes.Get("/:id/payments", loanHandler.ListPayments)
	loanRoutes.Post("/:id/payments", middleware.StaffOnly(), loanHandler.RecordPayment)
	loanRoutes.Delete("/:id/payments/:paymentID", middleware.StaffOnly(), loanHandler.DeletePayment)

	// Dashboard routes
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.PrivateCacheHeaders(30 * time.Second))
	dashboardRoutes.Get("/admin", middleware.StaffOnly(), dashboardHandler.Admin)
	dashboardRoutes.Get("/me", dashboardHandler.Me)
}
