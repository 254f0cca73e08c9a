package api

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/postoffice/internal/api/handlers"
	"github.com/welldanyogia/postoffice/internal/api/middleware"
	"github.com/welldanyogia/postoffice/internal/logger"
	"github.com/welldanyogia/postoffice/internal/services"
	"github.com/welldanyogia/postoffice/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	Store     handlers.Pinger
	Messenger services.Messenger
	Folders   services.FolderService
	// Hub enables the /ws endpoint when set
	Hub      *websocket.Hub
	Logger   *slog.Logger
	Security *logger.SecurityLogger
	// Limiter is shared with the caller so it can run cleanup; when nil one
	// is built from RateLimit and RateBurst
	Limiter        *middleware.IPRateLimiter
	RateLimit      float64
	RateBurst      int
	AllowedOrigins []string
	AppEnv         string
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(cfg.Logger)

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover(cfg.Logger))

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv))

	// 4. Rate limiting
	if cfg.Limiter != nil {
		e.Use(middleware.RateLimiter(cfg.Limiter, cfg.Security))
	} else {
		e.Use(middleware.RateLimiterWithConfig(cfg.RateLimit, cfg.RateBurst, cfg.Security))
	}

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	healthHandler := handlers.NewHealthHandler(cfg.Store)
	folderHandler := handlers.NewFolderHandler(cfg.Folders, cfg.Security)
	messagingHandler := handlers.NewMessagingHandler(cfg.Messenger, cfg.Security, cfg.Logger)

	e.GET("/", handlers.Index)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// The original endpoints take their arguments from the query string or
	// a form body, so both methods are routed
	methods := []string{echo.GET, echo.POST}
	e.Match(methods, "/folder", folderHandler.Page)
	e.Match(methods, "/new", messagingHandler.New)
	e.Match(methods, "/reply", messagingHandler.Reply)
	e.GET("/conversation", folderHandler.Conversation)
	e.POST("/folder/compact", folderHandler.Compact)

	if cfg.Hub != nil {
		e.GET("/ws", handlers.NewWebSocketHandler(cfg.Hub, upgrader(cfg), cfg.Logger).Serve)
	}

	return e
}

// upgrader accepts any origin only in development with no allow list
func upgrader(cfg *RouterConfig) gorillaws.Upgrader {
	if len(cfg.AllowedOrigins) == 0 && cfg.AppEnv != "production" {
		return websocket.DefaultUpgrader()
	}
	return websocket.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Security)
}
