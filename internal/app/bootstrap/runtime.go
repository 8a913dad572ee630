package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/gradlink/accounts-service/internal/adapters/cache"
	emailadapter "github.com/gradlink/accounts-service/internal/adapters/email"
	eventadapter "github.com/gradlink/accounts-service/internal/adapters/events"
	grpcadapter "github.com/gradlink/accounts-service/internal/adapters/grpc"
	httpadapter "github.com/gradlink/accounts-service/internal/adapters/http"
	identityadapter "github.com/gradlink/accounts-service/internal/adapters/identity"
	paymentadapter "github.com/gradlink/accounts-service/internal/adapters/payment"
	"github.com/gradlink/accounts-service/internal/adapters/postgres"
	"github.com/gradlink/accounts-service/internal/adapters/security"
	"github.com/gradlink/accounts-service/internal/application"
	"github.com/gradlink/accounts-service/internal/ports"
)

type Runtime struct {
	cfg         Config
	logger      *slog.Logger
	httpServer  *http.Server
	grpcServer  *grpc.Server
	grpcLis     net.Listener
	outbox      *eventadapter.OutboxWorker
	activations *eventadapter.ActivationRetryWorker
	expiry      *eventadapter.ExpiryWorker
	cleanupFn   func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping accounts service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init redis client: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	tokenSigner, err := security.NewJWTSigner(cfg.JWTKeyID, cfg.JWTPrivateKeyPEM, cfg.JWTPublicKeyPEM)
	if err != nil {
		if !cfg.AllowEphemeralJWT {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init jwt signer: %w", err)
		}
		logger.Warn("using ephemeral JWT keys for local/dev runtime")
		tokenSigner, err = security.NewEphemeralJWTSigner(cfg.JWTKeyID)
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init ephemeral jwt signer: %w", err)
		}
	}

	var identities ports.IdentityProvider
	if cfg.IdentityStoreURL != "" {
		identities, err = identityadapter.NewHTTPClient(identityadapter.HTTPClientConfig{
			BaseURL:    cfg.IdentityStoreURL,
			ServiceKey: cfg.IdentityStoreServiceKey,
		})
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init identity client: %w", err)
		}
	} else {
		logger.Warn("no identity store configured, using local identity table")
		identities = identityadapter.NewLocalStore(pool, hasher)
	}

	var mailer ports.Mailer
	if cfg.SMTPHost != "" {
		mailer, err = emailadapter.NewSMTPMailer(emailadapter.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init smtp mailer: %w", err)
		}
	} else {
		mailer = emailadapter.NewLogMailer()
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			DefaultCurrency:       cfg.DefaultCurrency,
			TokenTTL:              cfg.TokenTTL,
			VerificationCacheTTL:  cfg.VerificationCacheTTL,
			ActivationMaxAttempts: cfg.ActivationMaxAttempts,
		},
		Identities:    identities,
		Profiles:      repos.Profiles,
		RoleRecords:   repos.RoleRecords,
		Organizations: repos.Organizations,
		Subscriptions: repos.Subscriptions,
		Payments:      repos.Payments,
		Outbox:        repos.Outbox,
		Gateway:       paymentadapter.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
		Verifications: cacheadapter.NewRedisVerificationCache(redisClient),
		Activations:   cacheadapter.NewRedisActivationQueue(redisClient),
		TokenSigner:   tokenSigner,
		Logger:        logger,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewAccountsInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		mailer,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxMaxRetries,
	)
	activations := eventadapter.NewActivationRetryWorker(logger, svc, cfg.ActivationRetryInterval)
	expiry := eventadapter.NewExpiryWorker(logger, svc, cfg.ExpirySweepInterval, cfg.ExpirySweepBatchSize)

	return &Runtime{
		cfg:         cfg,
		logger:      logger,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
		grpcLis:     lis,
		outbox:      outbox,
		activations: activations,
		expiry:      expiry,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("background workers started")
	errCh := make(chan error, 3)
	go func() { errCh <- r.outbox.Run(ctx) }()
	go func() { errCh <- r.activations.Run(ctx) }()
	go func() { errCh <- r.expiry.Run(ctx) }()

	err := <-errCh
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
