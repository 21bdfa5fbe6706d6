package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/handler"
	"github.com/campushub/classroom-api/internal/middleware"
	"github.com/campushub/classroom-api/internal/models"
	"github.com/campushub/classroom-api/internal/service"
	"github.com/campushub/classroom-api/pkg/config"
	"github.com/campushub/classroom-api/pkg/logger"
	corsmiddleware "github.com/campushub/classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/classroom-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Availability *handler.AvailabilityHandler
	Rooms        *handler.RoomHandler
	Bookings     *handler.BookingHandler
	Incidents    *handler.IncidentHandler
	Dashboard    *handler.DashboardHandler
	Reports      *handler.ReportHandler
	QR           *handler.QRHandler
}

// New assembles the gin engine with all routes and middleware.
//
// The public surface needs no credentials: room directory, availability,
// dashboard, incident reporting, QR codes, and signed report downloads.
// Everything that mutates the schedule or triages incidents sits behind
// JWT with role checks.
func New(cfg *config.Config, logr *zap.Logger, handlers Handlers, auth *service.AuthService, metrics *service.MetricsService) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public routes.
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/refresh", handlers.Auth.Refresh)

	api.GET("/availability", handlers.Availability.Get)
	api.GET("/dashboard", handlers.Dashboard.Stats)

	api.GET("/rooms", handlers.Rooms.List)
	api.GET("/rooms/:id", handlers.Rooms.Get)
	api.GET("/rooms/:id/qr", handlers.QR.RoomCode)

	api.POST("/incidents", handlers.Incidents.Create)

	// Download links carry their own HMAC token.
	api.GET("/reports/:id/download", handlers.Reports.Download)

	// Session management for logged-in users.
	session := api.Group("", middleware.JWT(auth))
	session.GET("/auth/me", handlers.Auth.Me)
	session.POST("/auth/logout", handlers.Auth.Logout)
	session.POST("/auth/change-password", handlers.Auth.ChangePassword)

	// Staff can manage the schedule, triage incidents, and run reports.
	staff := api.Group("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	staff.GET("/bookings", handlers.Bookings.List)
	staff.POST("/bookings", handlers.Bookings.Create)
	staff.POST("/bookings/batch", handlers.Bookings.CreateBatch)
	staff.DELETE("/bookings/:id", handlers.Bookings.Deactivate)

	staff.GET("/incidents", handlers.Incidents.List)
	staff.POST("/incidents/:id/respond", handlers.Incidents.Respond)
	staff.PATCH("/incidents/:id/resolve", handlers.Incidents.SetResolved)
	staff.PATCH("/incidents/:id/hide", handlers.Incidents.SetHidden)

	staff.POST("/reports", handlers.Reports.Create)
	staff.GET("/reports/:id", handlers.Reports.Status)

	// Only administrators may change the room directory or delete data.
	admin := api.Group("", middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/rooms", handlers.Rooms.Create)
	admin.PUT("/rooms/:id", handlers.Rooms.Update)
	admin.DELETE("/rooms/:id", handlers.Rooms.Delete)
	admin.DELETE("/incidents/:id", handlers.Incidents.Delete)

	return r
}
