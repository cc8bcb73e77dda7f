package http

import (
	"context"
	"fmt"
	"log/slog"

	"department-service/internal/app"
	"department-service/internal/auth"
	"department-service/internal/config"
	"department-service/internal/http/handler"
	"department-service/internal/http/middleware"
	"department-service/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// formOverhead leaves room for the non-file fields of a multipart form.
const formOverhead = int64(1 << 20)

type ServerDependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Service    *app.Service
	DB         handler.Pinger
	JWTService *auth.JWTService
	Metrics    *metrics.Recorder
}

type csrfProtector interface {
	handler.CSRFTokens
	Middleware() echo.MiddlewareFunc
}

type Server struct {
	echo     *echo.Echo
	deps     *ServerDependencies
	stopCSRF func()

	// stopBackground ends the limiter cleanup loops.
	stopBackground context.CancelFunc
}

func NewServer(deps *ServerDependencies) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	cfg := deps.Config
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Request ID first, so every later log line carries it.
	e.Use(middleware.RequestID(deps.Logger))
	e.Use(middleware.SecurityHeaders(cfg.JWT.CookieSecure))
	e.Use(middleware.AccessLog())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(bodyLimit(cfg.App.MaxUploadSize)))
	e.Use(deps.Metrics.Middleware())

	background, stopBackground := context.WithCancel(context.Background())
	globalRateLimiter := middleware.NewGlobalRateLimiter()
	go globalRateLimiter.RunCleanup(background)
	e.Use(globalRateLimiter.Middleware())

	var csrf csrfProtector = middleware.NoCSRF{}
	stopCSRF := func() {}
	if cfg.App.CSRFEnabled {
		m := middleware.NewCSRFMiddleware(context.Background())
		csrf, stopCSRF = m, m.Stop
	}

	svc := deps.Service
	authMiddleware := auth.NewMiddleware(deps.JWTService, svc, cfg.JWT.CookieSecure)
	strictRateLimiter := middleware.NewStrictRateLimiter()
	go strictRateLimiter.RunCleanup(background)
	userRateLimiter := middleware.NewUserRateLimiter()
	go userRateLimiter.RunCleanup(background)

	flashes := handler.NewFlashes(cfg.JWT.Secret)
	authHandler := handler.NewAuthHandler(svc, deps.JWTService, svc, csrf, middleware.CSRFFormField, flashes, cfg.JWT.CookieSecure)
	departmentHandler := handler.NewDepartmentHandler(svc, csrf, middleware.CSRFFormField, flashes)
	taskAPIHandler := handler.NewTaskAPIHandler(svc)
	systemHandler := handler.NewSystemHandler(deps.DB)

	e.GET("/health", systemHandler.Health)
	e.GET(auth.LoginPath, authHandler.LoginForm)
	e.POST(auth.LoginPath, authHandler.Login, strictRateLimiter.Middleware())

	page := []echo.MiddlewareFunc{authMiddleware.RequirePage(), userRateLimiter.Middleware(), csrf.Middleware()}
	e.Match([]string{echo.GET, echo.POST}, "/logout/", authHandler.Logout, page...)
	e.GET("/", departmentHandler.EmployeeList, page...)
	e.GET("/profile/", departmentHandler.MyProfile, page...)
	e.POST("/profile/", departmentHandler.UpdateMyProgress, page...)
	e.GET("/assign/", departmentHandler.AssignForm, page...)
	e.POST("/assign/", departmentHandler.Assign, page...)
	e.GET("/profile/:user_id/edit/", departmentHandler.EditProfileForm, page...)
	e.POST("/profile/:user_id/edit/", departmentHandler.EditProfile, page...)
	e.GET("/task/:id/report/", departmentHandler.ReportForm, page...)
	e.POST("/task/:id/report/", departmentHandler.Report, page...)
	e.GET("/task/:id/attachment/", departmentHandler.Attachment, page...)

	api := []echo.MiddlewareFunc{authMiddleware.RequireAPI(), userRateLimiter.Middleware()}
	e.GET("/tasks/:profile_id/", taskAPIHandler.ListTasks, api...)
	e.GET("/metrics/requests", deps.Metrics.Handler,
		append(api, auth.RequireCapability(svc.Policy().CanViewMetrics))...)

	return &Server{
		echo:           e,
		deps:           deps,
		stopCSRF:       stopCSRF,
		stopBackground: stopBackground,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer s.stopBackground()
	defer s.stopCSRF()
	return s.echo.Shutdown(ctx)
}

func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dK", (maxUpload+formOverhead)/1024)
}
