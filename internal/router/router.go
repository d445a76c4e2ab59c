package router

import (
	"path"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/marketplace/internal/handler"
	"github.com/suteetoe/marketplace/internal/middleware"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/stats"
	"github.com/suteetoe/marketplace/internal/store"
	"github.com/suteetoe/marketplace/pkg/jwtutil"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/pkg/storage"
	"github.com/suteetoe/marketplace/prometheus"
)

// Deps holds everything the route table needs
type Deps struct {
	Store   *store.Store
	JWT     *jwtutil.JWTUtil
	Objects storage.ObjectStore
	// Limiter guards the credential endpoints; nil disables rate limiting
	Limiter *middleware.RateLimiter
	// MaxUploadSize is an echo body limit such as "20M"; empty means no limit
	MaxUploadSize string
}

// New builds the echo instance with global middleware and every route registered
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = response.HTTPErrorHandler

	// "/api/need/" and "/api/need" resolve to the same route
	e.Pre(echomiddleware.RemoveTrailingSlash())

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(prometheus.HTTPMiddleware())
	e.Use(logger.Middleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler()))

	// Stored uploads: served from disk, or redirected to a fresh presigned link
	switch objects := d.Objects.(type) {
	case *storage.FileStore:
		e.Static(objects.PublicPath(), objects.Dir())
	case *storage.MinioStore:
		e.GET(path.Join("/", objects.PublicPath(), ":key"), handler.Redirect(objects))
	}

	requireAuth := middleware.JWTAuthMiddleware(d.JWT, d.Store)
	var limited []echo.MiddlewareFunc
	if d.Limiter != nil {
		limited = append(limited, d.Limiter.Middleware())
	}

	authHandler := handler.NewAuthHandler(d.Store, d.JWT)
	userHandler := handler.NewUserHandler(d.Store)
	needHandler := handler.NewNeedHandler(d.Store)
	serviceHandler := handler.NewServiceHandler(d.Store)
	uploadHandler := handler.NewUploadHandler(d.Objects)
	statsHandler := handler.NewStatsHandler(stats.NewEngine(d.Store))

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register, limited...)
	auth.GET("/check-username", authHandler.CheckUsername)
	auth.POST("/token", authHandler.Token, limited...)

	user := api.Group("/user")
	user.GET("/me", userHandler.Me, requireAuth)
	user.PUT("/me", userHandler.UpdateMe, requireAuth)
	user.GET("/detail/:id", userHandler.Detail)

	need := api.Group("/need")
	need.POST("", needHandler.Create, requireAuth)
	need.GET("", needHandler.List)
	need.GET("/my-list", needHandler.MyList, requireAuth)
	need.GET("/detail/:id", needHandler.Detail)
	need.PUT("/cancel/:id", needHandler.Cancel, requireAuth)
	need.PUT("/:id", needHandler.Update, requireAuth)
	need.DELETE("/:id", needHandler.Delete, requireAuth)

	service := api.Group("/service")
	service.POST("", serviceHandler.Create, requireAuth)
	service.GET("/list", serviceHandler.List)
	service.GET("/my-list", serviceHandler.MyList, requireAuth)
	service.GET("/detail/:id", serviceHandler.Detail)
	service.GET("/by-need/:needId", serviceHandler.ByNeed, requireAuth)
	service.PUT("/confirm/:id", serviceHandler.Confirm, requireAuth)
	service.PUT("/reject/:id", serviceHandler.Reject, requireAuth)
	service.PUT("/:id", serviceHandler.Update, requireAuth)

	api.GET("/service-self/my-list", serviceHandler.MyList, requireAuth)

	var uploadLimit []echo.MiddlewareFunc
	if d.MaxUploadSize != "" {
		uploadLimit = append(uploadLimit, echomiddleware.BodyLimit(d.MaxUploadSize))
	}
	api.POST("/upload", uploadHandler.Upload, uploadLimit...)

	api.POST("/admin/stats", statsHandler.Stats)

	return e
}
