package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"dmrelay/internal/api"
	"dmrelay/internal/command"
	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/cooldown"
	"dmrelay/internal/discord"
	"dmrelay/internal/logger"
	"dmrelay/internal/relay"
	"dmrelay/pkg/bootstrap"
	"dmrelay/pkg/health"
	"dmrelay/pkg/logging"
	"dmrelay/pkg/metrics"
	"dmrelay/pkg/middleware"
	"dmrelay/pkg/ratelimit"
	"dmrelay/pkg/tracing"
)

const cooldownMetricsInterval = 30 * time.Second

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	redis          *redis.Client
	discord        *discord.Client
	service        *relay.Service
	tracerProvider *tracing.TracerProvider
	router         *gin.Engine
	server         *http.Server

	// bgCtx bounds the middleware janitors; cancelled on shutdown.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	shutdownOnce sync.Once
	shutdownErr  error
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceName)
	}
	bgCtx, bgCancel := context.WithCancel(context.Background())
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		bgCtx:       bgCtx,
		bgCancel:    bgCancel,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, constants.ServiceName)

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterRelayMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	a.redis = rdb

	if err := a.InitBroker(); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initRelay(ctx); err != nil {
		return fmt.Errorf("failed to initialize relay: %w", err)
	}

	a.initRouter()

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	return nil
}

func (a *App) initRelay(ctx context.Context) error {
	tracker, err := cooldown.New(a.Config, a.redis, a.Logger)
	if err != nil {
		return err
	}

	client, err := discord.New(a.Config.Discord, a.Logger)
	if err != nil {
		return err
	}
	a.discord = client

	a.service = relay.NewService(
		client.Directory(a.Config.CircuitBreaker),
		client.Messenger(),
		tracker,
		a.ReportSink(),
		a.Config.Relay,
		a.Logger,
	)

	handler := command.NewHandler(a.service, a.Config.Discord.AuthorizedRoleID, a.Logger)
	client.HandleInteractions(handler)

	if err := client.Open(ctx); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	a.Logger.InfowCtx(ctx, "Discord gateway connected", "guild_id", a.Config.Discord.GuildID)

	if a.Config.Discord.RegisterCommands {
		if err := client.RegisterCommands(ctx); err != nil {
			return fmt.Errorf("failed to register commands: %w", err)
		}
	}

	return nil
}

func (a *App) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
		router.Use(tracing.TraceIDMiddleware())
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: a.Config.RateLimit.CleanupInterval,
			MaxAge:          a.Config.RateLimit.MaxAge,
		}
		router.Use(ratelimit.RateLimitMiddleware(a.bgCtx, rateLimitConfig))
		a.Logger.Infow("Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	api.NewHandler(a.service, a.Logger).RegisterRoutes(router)

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(a.discord.HealthChecker())
	if a.redis != nil {
		// the circuit breaker fallback keeps sends going while redis is down
		healthRegistry.RegisterOptional(health.NewRedisChecker(a.redis))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "Server listening", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.service.RunCooldownMetrics(gCtx, cooldownMetricsInterval)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown stops accepting requests, waits for in-flight broadcasts and
// then releases the gateway, broker and store. Safe to call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		ctx = logging.WithServiceName(ctx, constants.ServiceName)

		additionalShutdown := func(ctx context.Context) []error {
			var errs []error

			shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
			defer cancel()

			if a.server != nil {
				if err := a.server.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
				}
			}

			if a.service != nil {
				if err := a.service.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, fmt.Errorf("deliveries cancelled at shutdown: %w", err))
				}
			}

			if a.discord != nil {
				if err := a.discord.Close(); err != nil {
					errs = append(errs, fmt.Errorf("discord close error: %w", err))
				}
			}

			a.bgCancel()

			errs = append(errs, a.dbConnector.ShutdownDatabases(a.redis)...)

			if a.tracerProvider != nil {
				if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
				}
			}

			return errs
		}

		a.shutdownErr = a.Base.Shutdown(ctx, additionalShutdown)
	})
	return a.shutdownErr
}
