// Command jokes-server serves the joke board over HTTP and, optionally, a
// gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/and161185/jokes/internal/auth"
	"github.com/and161185/jokes/internal/config"
	"github.com/and161185/jokes/internal/limiter"
	"github.com/and161185/jokes/internal/migrate"
	"github.com/and161185/jokes/internal/repository"
	"github.com/and161185/jokes/internal/repository/memory"
	"github.com/and161185/jokes/internal/repository/postgres"
	grpcserver "github.com/and161185/jokes/internal/server/grpc"
	httpserver "github.com/and161185/jokes/internal/server/http"
	"github.com/and161185/jokes/internal/service"
	"github.com/and161185/jokes/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

func newLogger(dev bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// main loads configuration, prepares storage and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, config.DefaultEnvFile)
	if err != nil {
		boot := newLogger(false)
		boot.Fatal("config", zap.Error(err))
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	codec, err := session.NewCodec([]byte(cfg.SessionSecret), session.Options{
		Path:   cfg.CookiePath,
		MaxAge: cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Fatal("session codec", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy := limiter.Policy{Window: cfg.LoginWindow, MaxFails: cfg.LoginMaxFails, BlockFor: cfg.LoginBlockFor}

	var (
		users  repository.UserRepository
		jokes  repository.JokeRepository
		lim    limiter.Limiter = limiter.Nop{}
		health []grpcserver.Checker
	)
	if cfg.DatabaseDSN == "" {
		logger.Warn("DATABASE_DSN not set, using in-memory storage")
		st := memory.New()
		users, jokes = st.Users(), st.Jokes()
		if policy.Enabled() {
			lim = limiter.NewMemory(policy)
		}
	} else {
		v, err := migrate.Up(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		logger.Info("schema ready", zap.Int64("version", v))
		db, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		defer db.Close()
		users, jokes = postgres.NewUserRepo(db), postgres.NewJokeRepo(db)
		if policy.Enabled() {
			lim = limiter.NewPG(db.Pool, policy)
		}
		health = append(health, db.Ping)
	}

	authSvc := service.NewAuthService(users, lim)
	jokeSvc := service.NewJokeService(jokes)
	gate := auth.NewGate(codec, users, auth.DefaultLoginPath)

	var healthFn func(context.Context) error
	if len(health) > 0 {
		healthFn = health[0]
	}
	site, err := httpserver.New(httpserver.Deps{
		Log:    logger,
		Gate:   gate,
		Auth:   authSvc,
		Jokes:  jokeSvc,
		Health: healthFn,
	})
	if err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPCAddr != "" {
		var opts []grpc.ServerOption
		if cfg.GRPCCert != "" {
			creds, err := credentials.NewServerTLSFromFile(cfg.GRPCCert, cfg.GRPCKey)
			if err != nil {
				logger.Fatal("failed to load TLS cert/key", zap.Error(err))
			}
			opts = append(opts, grpc.Creds(creds))
		}
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Fatal("listen", zap.Error(err))
		}
		grpcSrv = grpcserver.New(logger, grpcserver.NewHealth(logger, health...), cfg.Dev, opts...)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if grpcSrv != nil {
		grpcSrv.Stop(shutCtx)
	}
	logger.Info("shutdown complete")
}
