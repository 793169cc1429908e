package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/Zeethx/NebulaView/internal/config"
	"github.com/Zeethx/NebulaView/internal/handler"
	"github.com/Zeethx/NebulaView/internal/repository"
	"github.com/Zeethx/NebulaView/internal/service"
	"github.com/Zeethx/NebulaView/internal/utils"
	"github.com/Zeethx/NebulaView/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres(), cfg.Security.BCryptCost)

	jwtManager := utils.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(repos.User, jwtManager, infra.Uploader())
	userService := service.NewUserService(repos.User, repos.Subscription, infra.Uploader())

	cookies := handler.NewCookieWriter(cfg.Cookie, jwtManager.AccessTokenExpiry(), jwtManager.RefreshTokenExpiry())
	authHandler := handler.NewAuthHandler(authService, cookies)
	userHandler := handler.NewUserHandler(userService)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	router.Use(otelgin.Middleware("nebulaview"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, userHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	authRequired := handler.AuthMiddleware(authService)
	authOptional := handler.OptionalAuthMiddleware(authService)
	limited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", limited, authHandler.Register)
			users.POST("/login", limited, authHandler.Login)
			users.POST("/refresh-token", authHandler.Refresh)
			users.POST("/logout", authRequired, authHandler.Logout)
			users.POST("/change-password", authRequired, authHandler.ChangePassword)

			users.GET("/me", authRequired, userHandler.GetMe)
			users.PATCH("/me", authRequired, userHandler.UpdateProfile)
			users.PATCH("/avatar", authRequired, userHandler.UpdateAvatar)
			users.PATCH("/cover-image", authRequired, userHandler.UpdateCoverImage)

			users.GET("/c/:username", authOptional, userHandler.GetChannelProfile)
			users.POST("/c/:username/subscribe", authRequired, userHandler.Subscribe)
			users.DELETE("/c/:username/subscribe", authRequired, userHandler.Unsubscribe)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
