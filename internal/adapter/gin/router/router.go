package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-pref-service/api/swagger"
	"user-pref-service/internal/adapter/gin/handler"
	"user-pref-service/internal/adapter/gin/middleware"
	"user-pref-service/internal/auth"
	"user-pref-service/pkg/logger"
	"user-pref-service/pkg/metrics"
)

// Config holds the router settings.
type Config struct {
	Environment      string
	ExposeErrorStack bool
	AllowedOrigins   []string
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	User       *handler.UserHandler
	Preference *handler.PreferenceHandler
	Session    *handler.SessionHandler
	System     *handler.SystemHandler
	Realtime   *handler.RealtimeHandler
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	cfg Config,
	h Handlers,
	verifier auth.Verifier,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// ErrorHandler must wrap Recovery so recovered panics are serialized
	router.Use(logger.RequestID())
	router.Use(logger.Gin(log))
	router.Use(middleware.Metrics())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.ErrorHandler(cfg.ExposeErrorStack, log))
	router.Use(middleware.Recovery(log))

	router.GET("/health", h.System.Health)
	router.Any("/check", h.System.Check)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", swaggerHandler())

	v1 := router.Group("/v1")
	v1.Use(middleware.Authenticate(verifier))
	if rateLimiter != nil {
		v1.Use(rateLimiter.Handler())
	}
	{
		v1.POST("/auth/login", h.Session.Login)

		users := v1.Group("/users")
		{
			users.POST("", h.User.CreateUser)
			users.GET("", h.User.ListUsers)
			users.GET("/:id", h.User.GetUser)
			users.PUT("/:id", h.User.UpdateUser)
			users.DELETE("/:id", h.User.DeleteUser)
		}

		prefs := v1.Group("/preferences")
		{
			prefs.POST("", h.Preference.CreatePreference)
			prefs.GET("", h.Preference.ListPreferences)
			prefs.GET("/:userId", h.Preference.GetPreference)
			prefs.PUT("/:userId", h.Preference.UpdatePreference)
			prefs.DELETE("/:userId", h.Preference.DeletePreference)
		}

		if h.Realtime != nil {
			v1.GET("/ws", h.Realtime.Connect)
			v1.GET("/ws/connections/:clientId", h.Realtime.GetConnection)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowWebSockets:  true,
		MaxAge:           12 * time.Hour,
		AllowCredentials: true,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// swaggerHandler serves the embedded document at /swagger/doc.json and the UI elsewhere.
func swaggerHandler() gin.HandlerFunc {
	ui := httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
	return func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", swagger.Doc)
			return
		}
		ui(c.Writer, c.Request)
	}
}
