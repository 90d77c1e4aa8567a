package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/mylist-service/internal/config"
	api "github.com/tazhibayda/mylist-service/internal/http"
	"github.com/tazhibayda/mylist-service/internal/log"
	"github.com/tazhibayda/mylist-service/internal/oauth"
	"github.com/tazhibayda/mylist-service/internal/queue"
	"github.com/tazhibayda/mylist-service/internal/repo"
	"github.com/tazhibayda/mylist-service/internal/repo/memory"
	"github.com/tazhibayda/mylist-service/internal/security"
	"github.com/tazhibayda/mylist-service/internal/service"
	"github.com/tazhibayda/mylist-service/internal/session"
)

type store interface {
	service.UserStore
	service.ProfileStore
	Ping(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Production)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(cfg.DDService), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}

	tokens, err := security.NewTokenManager(cfg.Tokens())
	if err != nil {
		logger.Fatal("token config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		st = memory.NewStore()
	default:
		ms, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer ms.Close(context.Background()) //nolint:errcheck
		if err := ms.EnsureUserIndexes(ctx); err != nil {
			logger.Fatal("mongo indexes", zap.Error(err))
		}
		st = ms
	}
	health := []api.Pinger{st}

	var limiter api.RateLimiter = api.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	if cfg.RedisAddr != "" {
		rds := repo.NewRedis(cfg.RedisAddr)
		defer rds.Close() //nolint:errcheck
		if err := rds.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, limiter fails open until it recovers", zap.Error(err))
		}
		limiter = repo.NewRedisLimiter(rds, cfg.RateLimitPerMin, time.Minute)
		health = append(health, rds)
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		rp, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			pub = rp
		}
	}
	defer pub.Close() //nolint:errcheck

	auth := service.NewAuthService(st, security.NewPasswordHasher(cfg.BcryptCost), tokens, logger)
	profiles := service.NewProfileService(st, cfg.MaxProfiles, logger)
	lists := service.NewListToggler(st, service.DefaultToggleAttempts, logger)

	h := api.NewHandler(auth, profiles, lists, session.NewPropagator(cfg.Production), pub, cfg.RabbitExchange, logger)
	h.Health = health
	if cfg.GoogleEnabled() {
		h.Google = oauth.NewGoogle(context.Background(), cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, cfg.OAuthStateSecret)
	}
	r := api.NewRouter(h, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	logger.Info("mylist-service listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
