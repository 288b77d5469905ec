package server

import (
	"context"
	"log/slog"
	"net/http"

	"course-marketplace/internal/config"
	"course-marketplace/internal/handler"
	"course-marketplace/internal/metrics"
	authmw "course-marketplace/internal/middleware"
	"course-marketplace/internal/model"
	"course-marketplace/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Services are the application services the HTTP layer exposes.
type Services struct {
	Tokens    service.TokenService
	Users     service.AccountService
	Admins    service.AccountService
	Catalog   service.CatalogService
	Purchases service.PurchaseService
	Orders    service.OrderService
}

type Server struct {
	echo          *echo.Echo
	cfg           *config.Config
	tokens        service.TokenService
	gatherer      prometheus.Gatherer
	courseHandler *handler.CourseHandler
	userHandler   *handler.UserHandler
	userAuth      *handler.AccountHandler
	adminAuth     *handler.AccountHandler
	orderHandler  *handler.OrderHandler
}

func NewServer(cfg *config.Config, services Services, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("10M"))

	secureCookie := cfg.Environment.IsProduction()

	s := &Server{
		echo:          e,
		cfg:           cfg,
		tokens:        services.Tokens,
		gatherer:      gatherer,
		courseHandler: handler.NewCourseHandler(services.Catalog, services.Purchases),
		userHandler:   handler.NewUserHandler(services.Purchases),
		userAuth:      handler.NewAccountHandler(services.Users, cfg.Auth.TokenTTL, secureCookie),
		adminAuth:     handler.NewAccountHandler(services.Admins, cfg.Auth.TokenTTL, secureCookie),
		orderHandler:  handler.NewOrderHandler(services.Orders, cfg.Order.RequireAuth, log),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.cfg.RateLimit.PerSecond)))
	requireUser := authmw.RequireRole(s.tokens, model.RoleUser)
	requireAdmin := authmw.RequireRole(s.tokens, model.RoleAdmin)
	optionalUser := authmw.OptionalRole(s.tokens, model.RoleUser)

	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.gatherer)))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := api.Group("/v1")

	// -------- course --------
	course := v1.Group("/course")
	course.POST("/create", s.courseHandler.CreateCourse, requireAdmin)
	course.PUT("/update/:courseId", s.courseHandler.UpdateCourse, requireAdmin)
	course.DELETE("/delete/:courseId", s.courseHandler.DeleteCourse, requireAdmin)
	course.GET("/courses", s.courseHandler.GetCourses)
	course.GET("/:courseId", s.courseHandler.CourseDetails)
	course.POST("/buy/:courseId", s.courseHandler.BuyCourse, limiter, requireUser)

	// -------- user --------
	user := v1.Group("/user")
	user.POST("/signup", s.userAuth.Signup, limiter)
	user.POST("/login", s.userAuth.Login, limiter)
	user.GET("/logout", s.userAuth.Logout)
	user.GET("/purchases", s.userHandler.Purchases, requireUser)

	// -------- admin --------
	admin := v1.Group("/admin")
	admin.POST("/signup", s.adminAuth.Signup, limiter)
	admin.POST("/login", s.adminAuth.Login, limiter)
	admin.GET("/logout", s.adminAuth.Logout)

	// -------- order --------
	v1.POST("/order", s.orderHandler.CreateOrder, optionalUser)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
