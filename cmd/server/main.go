// @title Journaly API
// @version 1.0
// @description 日记、评论串与邮件通知
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/journaly/config"
	"github.com/d60-Lab/journaly/internal/api/router"
	"github.com/d60-Lab/journaly/internal/cache"
	"github.com/d60-Lab/journaly/internal/mailer"
	"github.com/d60-Lab/journaly/internal/repository"
	"github.com/d60-Lab/journaly/internal/service"
	"github.com/d60-Lab/journaly/pkg/database"
	"github.com/d60-Lab/journaly/pkg/jwt"
	"github.com/d60-Lab/journaly/pkg/logger"
	"github.com/d60-Lab/journaly/pkg/monitor"
	"github.com/d60-Lab/journaly/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := monitor.Init(cfg.Sentry); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer monitor.Flush(2 * time.Second)

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	// Redis 未配置时 profilePosts 直接查库
	var rdb *redis.Client
	deps := service.Deps{
		Tokens:     jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		BcryptCost: bcrypt.DefaultCost,
	}
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, post index will fall back to the database", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		deps.PostIndex = cache.NewPostIndex(rdb, cfg.Redis.PostTTL)
	}

	var transport mailer.Transport = mailer.LogTransport{}
	smtpTransport := mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
	})
	if smtpTransport.IsConfigured() {
		transport = smtpTransport
	} else {
		logger.Warn("smtp not configured, emails are only logged")
	}

	notifier := service.NewNotifier(transport, repository.NewDeliveryRepository(db), service.NotifierConfig{
		From:           cfg.Mail.From,
		SiteDomain:     cfg.Server.SiteDomain,
		MaxConcurrency: cfg.Notify.MaxConcurrency,
		Retry:          mailer.RetryPolicy{Attempts: cfg.Notify.Attempts, Delay: cfg.Notify.RetryDelay},
		SendTimeout:    cfg.Notify.SendTimeout,
	})
	deps.Notifier = notifier
	svc := service.NewServices(db, deps)

	stopDigest := func(context.Context) error { return nil }
	if cfg.Digest.Enabled {
		worker := service.NewDigestWorker(
			repository.NewUserRepository(db),
			repository.NewSubscriptionRepository(db),
			repository.NewCommentRepository(db),
			notifier,
			cfg.Digest.PollInterval,
			cfg.Digest.BatchSize,
		)
		stopDigest = worker.Start()
	}

	engine := router.Setup(cfg, router.Deps{Services: svc, Tokens: deps.Tokens, DB: db, Redis: rdb})
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := stopDigest(shutdownCtx); err != nil {
		logger.Error("digest worker shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
}
