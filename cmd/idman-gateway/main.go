package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idman-gateway/internal/adapter/gateway"
	adapterhandler "idman-gateway/internal/adapter/handler"
	"idman-gateway/internal/domain"
	"idman-gateway/internal/driver/memory"
	"idman-gateway/internal/driver/postgres"
	infracache "idman-gateway/internal/infrastructure/cache"
	infratoken "idman-gateway/internal/infrastructure/token"
	"idman-gateway/internal/provider"
	"idman-gateway/internal/usecase"

	"idman-gateway/config"
	appmiddleware "idman-gateway/middleware"
	"idman-gateway/utils/logger"
	"idman-gateway/utils/otel"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"service_id", cfg.ServiceID,
		"auth_provider", cfg.AuthProvider)

	// Stores
	var (
		users       domain.UserStore
		passwords   domain.PasswordStore
		sessions    domain.SessionStore
		roles       domain.UserRoleStore
		services    domain.ServiceStore
		dbHealth    adapterhandler.Pinger
		sessionRepo *postgres.SessionRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL, slog.Default())
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		dbHealth = db

		userRepo := postgres.NewUserRepository(db.Pool(), slog.Default())
		users = userRepo
		passwords = userRepo
		roles = userRepo
		sessionRepo = postgres.NewSessionRepository(db.Pool(), slog.Default())
		sessions = sessionRepo
		services = postgres.NewServiceRepository(db.Pool(), slog.Default())
	} else {
		slog.WarnContext(ctx, "DATABASE_URL not set, using volatile in-memory stores")
		store := memory.New()
		users = store
		passwords = store
		roles = store
		sessions = store.Sessions()
		services = store.Services()
	}

	// Caches. Specs were validated during config load.
	tokenSpec, _ := infracache.ParseSpec(cfg.TokenCacheSpec)
	authzSpec, _ := infracache.ParseSpec(cfg.AuthzCacheSpec)
	principalCache := infracache.New[domain.Principal](tokenSpec)
	defer principalCache.Close()
	decisionCache := infracache.New[bool](authzSpec)
	defer decisionCache.Close()

	// Token infrastructure
	issuer, err := infratoken.NewIssuer(infratoken.IssuerConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build token issuer", "error", err)
		os.Exit(1)
	}
	verifier, err := infratoken.NewVerifier(cfg.JWTSecret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build token verifier", "error", err)
		os.Exit(1)
	}

	// Credential provider
	credProvider, err := provider.New(provider.Config{
		Mode: cfg.AuthProvider,
		Google: provider.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			LoginDomain:  cfg.GoogleLoginDomain,
			Proxy:        cfg.GoogleProxy,
		},
	}, provider.Deps{
		Users:      users,
		Passwords:  passwords,
		Sessions:   sessions,
		Roles:      roles,
		Services:   services,
		SessionTTL: cfg.SessionTTL,
		BaseURL:    cfg.BaseURL,
		Logger:     slog.Default(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to build credential provider", "error", err)
		os.Exit(1)
	}

	// Usecases
	loginUC := usecase.NewLogin(credProvider, issuer, slog.Default())
	checkUC := usecase.NewCheckToken(verifier, sessions, users, services, slog.Default())
	authorizeUC := usecase.NewAuthorize(decisionCache, nil, cfg.AuthzNegativeTTL, slog.Default())

	// Handlers
	loginHandler := adapterhandler.NewLoginHandler(loginUC)
	checkHandler := adapterhandler.NewCheckHandler(checkUC)
	healthHandler := adapterhandler.NewHealthHandler(dbHealth)

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Rate limiters per endpoint group
	loginRL := appmiddleware.NewRateLimiter(10.0/60.0, 3)   // 10 req/min
	checkRL := appmiddleware.NewRateLimiter(100.0/60.0, 10) // 100 req/min
	defer loginRL.Close()
	defer checkRL.Close()

	// Login surface
	e.POST("/login", loginHandler.HandleLogin, loginRL.Middleware())
	e.GET("/login/redirect", loginHandler.HandleRedirect, loginRL.Middleware())
	e.GET("/health", healthHandler.Handle)

	// Authority routes (protected by the shared service secret)
	authGroup := e.Group("/apis/auth", checkRL.Middleware())
	if cfg.ServiceAuthSecret != "" {
		authGroup.Use(appmiddleware.ServiceAuth(cfg.ServiceAuthSecret))
	}
	authGroup.POST("/check/v1/:service_id", checkHandler.HandleCheck)
	authGroup.GET("/userinfo/v1/:service_id/:user_id", checkHandler.HandleUserInfo)

	// Gate-protected routes, validated against the remote authority.
	if cfg.AuthEndpoint != "" {
		authority := gateway.NewAuthorityGateway(cfg.AuthEndpoint, cfg.ServiceAuthSecret, gateway.TransportConfig{
			ConnectTimeout:      cfg.ConnectTimeout,
			RequestTimeout:      cfg.RequestTimeout,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		})
		validateUC := usecase.NewValidateToken(authority, principalCache, slog.Default())

		gate := appmiddleware.NewGate(appmiddleware.GateConfig{
			AllowedPrefixes: cfg.AllowedPrefixes,
			ResourcePrefix:  cfg.ResourcePrefix,
			LoginPath:       cfg.LoginPath,
			ServiceID:       cfg.ServiceID,
			RequiredRole:    cfg.RequiredRole,
		}, validateUC, authorizeUC)

		e.GET("/me", adapterhandler.HandleMe, gate.Middleware())
	}

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting idman-gateway server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if sessionRepo != nil {
		g.Go(func() error {
			return sessionRepo.CleanupLoop(gCtx, time.Hour)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
