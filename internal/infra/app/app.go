package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ZiyamSanthosh/identity-governance/internal/core/domain"
	"github.com/ZiyamSanthosh/identity-governance/internal/epoch"
	"github.com/ZiyamSanthosh/identity-governance/internal/infra/config"
	"github.com/ZiyamSanthosh/identity-governance/internal/infra/database"
	kafkainfra "github.com/ZiyamSanthosh/identity-governance/internal/infra/kafka"
	"github.com/ZiyamSanthosh/identity-governance/internal/infra/logger"
	redisinfra "github.com/ZiyamSanthosh/identity-governance/internal/infra/redis"
	"github.com/ZiyamSanthosh/identity-governance/internal/infra/telemetry"
	postgresrepo "github.com/ZiyamSanthosh/identity-governance/internal/repository/postgres"
	redisrepo "github.com/ZiyamSanthosh/identity-governance/internal/repository/redis"
	"github.com/ZiyamSanthosh/identity-governance/internal/transport/http/routes"
	"github.com/ZiyamSanthosh/identity-governance/internal/usecase"
)

// Application bundles the governance service runtime: the HTTP query
// surface and the Kafka lifecycle consumer feeding the activity recorder.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	consumer *kafkainfra.GroupRunner
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics := telemetry.Attach()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	metadataRepo := postgresrepo.NewMetadataRepository(pool)
	tenantRepo := postgresrepo.NewTenantRepository(pool)
	directoryRepo := postgresrepo.NewDirectoryRepository(pool)
	claimCache := redisrepo.NewClaimCache(redisClient.Client(), cfg.Redis.ClaimCachePrefix)

	dateLayout := cfg.Query.DateLayout
	if dateLayout == "" {
		dateLayout = epoch.DefaultLayout
	}
	converter := epoch.NewConverter(dateLayout)

	directoryResolver := usecase.NewDirectoryResolver(directoryRepo, log)

	inactiveUsers := usecase.NewInactiveUserService(metadataRepo, tenantRepo, directoryResolver, converter, log)
	if cfg.Query.ResolverWorkers > 1 {
		inactiveUsers = inactiveUsers.WithResolverWorkers(cfg.Query.ResolverWorkers)
	}

	recorder := usecase.NewUserMetadataRecorder(usecase.RecorderSettings{
		Enabled:       cfg.Recorder.Enabled,
		DurableWrites: cfg.Recorder.DurableWrites,
	}, metadataRepo, claimCache, directoryRepo, converter, log)

	var consumer *kafkainfra.GroupRunner
	if len(cfg.Kafka.Brokers) > 0 {
		lifecycleConsumer := kafkainfra.NewLifecycleConsumer(instrumentHandler(recorder, metrics), log)
		consumer, err = kafkainfra.NewGroupRunner(cfg.Kafka, lifecycleConsumer, log)
		if err != nil {
			_ = redisClient.Close()
			pool.Close()
			return nil, fmt.Errorf("init kafka consumer: %w", err)
		}
	} else {
		log.Info("kafka brokers not configured, lifecycle consumer disabled")
	}

	engine := routes.Register(routes.Dependencies{
		Config:        cfg,
		Logger:        log,
		InactiveUsers: inactiveUsers,
		Telemetry:     metrics,
		Database:      pool,
		Cache:         redisClient,
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		consumer: consumer,
	}, nil
}

// Run serves HTTP traffic and the lifecycle consumer until the context is
// cancelled, then drains both.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	consumerErrCh := make(chan error, 1)
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(ctx); err != nil {
				consumerErrCh <- fmt.Errorf("run lifecycle consumer: %w", err)
			}
		}()
	}
	defer func() {
		if a.consumer != nil {
			_ = a.consumer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting identity governance API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	case err := <-consumerErrCh:
		return err
	}
}

// instrumentedHandler counts durable metadata writes driven by lifecycle
// events. Counting happens only after the recorder accepts the event.
type instrumentedHandler struct {
	next    kafkainfra.LifecycleEventHandler
	metrics *telemetry.Provider
}

func instrumentHandler(next kafkainfra.LifecycleEventHandler, metrics *telemetry.Provider) kafkainfra.LifecycleEventHandler {
	if metrics == nil {
		return next
	}
	return &instrumentedHandler{next: next, metrics: metrics}
}

func (h *instrumentedHandler) HandleEvent(ctx context.Context, event domain.UserLifecycleEvent) error {
	if err := h.next.HandleEvent(ctx, event); err != nil {
		return err
	}

	switch event.Name {
	case domain.EventPostAuthentication:
		if event.OperationSuccess {
			h.metrics.CountMetadataWrite(domain.ClaimLastLoginTime)
		}
	case domain.EventPostUpdateCredential, domain.EventPostUpdateCredentialByAdmin:
		h.metrics.CountMetadataWrite(domain.ClaimLastPasswordUpdateTime)
	}

	return nil
}
