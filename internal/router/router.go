package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/projectk/projectk-backend/internal/config"
	"github.com/projectk/projectk-backend/internal/handler"
	"github.com/projectk/projectk-backend/internal/logger"
	"github.com/projectk/projectk-backend/internal/metrics"
	"github.com/projectk/projectk-backend/internal/middleware"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/response"
	"github.com/projectk/projectk-backend/internal/service"
	"github.com/projectk/projectk-backend/internal/tracing"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Chat      *handler.ChatHandler
	Class     *handler.ClassHandler
	Dashboard *handler.DashboardHandler
	Practice  *handler.PracticeHandler
	WS        *handler.WSHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil, which leaves the auth routes unlimited.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
	authLimiter *middleware.RateLimiter,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Metrics())
	if cfg.TracingEnabled {
		router.Use(tracing.GinMiddleware())
	}

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Probes and scraping.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api")
	{
		publicAPI.GET("/", handlers.System.Banner)
		publicAPI.GET("/health", middleware.NoStore(), handlers.System.Health)
		publicAPI.GET("/welcome", middleware.CacheControl(5*time.Minute), handlers.System.Welcome)
	}

	requireAuth := middleware.RequireAuth(authService)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/auth")
	if authLimiter != nil {
		auth.Use(authLimiter.Middleware())
	}
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", requireAuth, handlers.Auth.Logout)
		auth.GET("/me", requireAuth, handlers.Auth.Me)
	}

	// ─── 2. Authenticated Group (Any Role) ─────────────────────────────
	api := router.Group("/api")
	api.Use(requireAuth)
	{
		api.PUT("/users/me", handlers.Auth.UpdateProfile)
		api.GET("/dashboard", handlers.Dashboard.GetDashboard)

		chat := api.Group("/chat")
		{
			chat.POST("/session", handlers.Chat.CreateSession)
			chat.GET("/session/:id", handlers.Chat.GetSession)
			chat.GET("/session/:id/history", handlers.Chat.SessionHistory)
			chat.GET("/sessions", handlers.Chat.ListSessions)
			chat.GET("/history", handlers.Chat.History)
			chat.POST("/message", handlers.Chat.SendMessage)
		}

		practice := api.Group("/practice")
		{
			practice.POST("/generate", handlers.Practice.Generate)
			practice.POST("/submit", handlers.Practice.Submit)
			practice.GET("/tests/:id", handlers.Practice.GetTest)
		}
	}

	// ─── 3. Teacher Group (JWT + Role) ─────────────────────────────────
	teacherAPI := router.Group("/api/teacher")
	teacherAPI.Use(requireAuth, middleware.RequireRole(model.UserTypeTeacher))
	{
		teacherAPI.GET("/dashboard", handlers.Dashboard.TeacherDashboard)
		teacherAPI.GET("/classes", handlers.Class.ListClasses)
		teacherAPI.POST("/classes", handlers.Class.CreateClass)
		teacherAPI.GET("/classes/:id", handlers.Class.GetClass)
		teacherAPI.GET("/classes/:id/students", handlers.Class.ListStudents)
	}

	// ─── 4. Student Group (JWT + Role) ─────────────────────────────────
	studentAPI := router.Group("/api/student")
	studentAPI.Use(requireAuth, middleware.RequireRole(model.UserTypeStudent))
	{
		studentAPI.GET("/classes", handlers.Class.StudentClasses)
		studentAPI.POST("/classes/join", handlers.Class.JoinClass)
	}

	// ─── 5. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/chat/:session_id", handlers.WS.ChatStream)
	}

	return router
}
