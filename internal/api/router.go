package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/quillpress/blog-system/docs"
	"github.com/quillpress/blog-system/internal/api/handler"
	"github.com/quillpress/blog-system/internal/api/middleware"
	"github.com/quillpress/blog-system/internal/core/policy"
	"github.com/quillpress/blog-system/internal/core/ports"
)

// Options carries the HTTP-level settings of the router.
type Options struct {
	FrontendOrigin string
	UploadDir      string
	MaxUploadSize  string
	SecureCookies  bool

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// Dependencies are the services the routes delegate to.
type Dependencies struct {
	Auth     ports.AuthService
	Articles ports.ArticleService
	Users    ports.UserService
	Checks   map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	enforcer, err := middleware.NewPageEnforcer(middleware.DashboardRules)
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	cors := middleware.DefaultCORSConfig
	if opts.FrontendOrigin != "" {
		cors.AllowOrigin = opts.FrontendOrigin
	}
	e.Use(middleware.CORS(cors))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(opts.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "blog",
		Subsystem:                 "http",
		Registerer:                opts.Registerer,
		DoNotUseRequestPathFor404: true,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, opts.SecureCookies)
	articleHandler := handler.NewArticleHandler(deps.Articles)
	userHandler := handler.NewUserHandler(deps.Users)
	pageHandler := handler.NewPageHandler(deps.Articles, deps.Users)
	authn := middleware.Authenticate(deps.Auth)

	maxUpload := opts.MaxUploadSize
	if maxUpload == "" {
		maxUpload = "10M"
	}
	bodyLimit := echomiddleware.BodyLimit(maxUpload)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authn)

	// --- Article routes ---
	articles := api.Group("/articles")
	articles.GET("", articleHandler.List)
	articles.GET("/mine", articleHandler.Mine, authn, middleware.Require(policy.ListOwnArticles))
	articles.GET("/:id", articleHandler.Get)
	articles.POST("", articleHandler.Create, bodyLimit, authn, middleware.Require(policy.CreateArticle))
	articles.PUT("/:id", articleHandler.Update, bodyLimit, authn)
	articles.PATCH("/:id", articleHandler.Update, bodyLimit, authn)
	articles.DELETE("/:id", articleHandler.Delete, authn)

	// --- User management routes ---
	users := api.Group("/users", authn)
	users.GET("", userHandler.List, middleware.Require(policy.ListUsers))
	users.PUT("/:id", userHandler.ChangeRole, middleware.Require(policy.ChangeUserRole))
	users.PATCH("/:id", userHandler.ChangeRole, middleware.Require(policy.ChangeUserRole))
	users.DELETE("/:id", userHandler.Delete, middleware.Require(policy.DeleteUser))

	// --- Pages ---
	e.GET("/", pageHandler.Home)
	e.GET(middleware.LoginPath, pageHandler.Login)
	dashboard := e.Group("/dashboard", middleware.PageGate(deps.Auth, enforcer))
	dashboard.GET("", pageHandler.Dashboard)
	dashboard.GET("/manage-articles", pageHandler.ManageArticles)
	dashboard.GET("/manage-users", pageHandler.ManageUsers)

	if opts.UploadDir != "" {
		e.Static("/uploads", opts.UploadDir)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
