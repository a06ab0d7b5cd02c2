package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"moderator_bot/internal/config"
	"moderator_bot/internal/infra/lock"
	"moderator_bot/internal/infra/media"
	s3infra "moderator_bot/internal/infra/s3"
	"moderator_bot/internal/infra/telegram"
	pgrepo "moderator_bot/internal/repo/postgres"
	redrepo "moderator_bot/internal/repo/redis"
	"moderator_bot/internal/services/access"
	"moderator_bot/internal/services/audit"
	"moderator_bot/internal/services/complaints"
	"moderator_bot/internal/services/lookup"
	"moderator_bot/internal/services/notify"
	"moderator_bot/internal/services/payments"
	"moderator_bot/internal/services/pricing"
	"moderator_bot/internal/services/reserve"
)

const shutdownTimeout = 10 * time.Second

// Messenger is the part of the moderator bot client the handlers talk to.
type Messenger interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) error
	SendMediaGroup(tgbotapi.MediaGroupConfig) error
}

type App struct {
	cfg    config.Config
	logger *zap.Logger
	gw     *pgrepo.Gateway
	redis  *goredis.Client
	bot    *telegram.Client
	tg     Messenger
	router *Router
	server *http.Server

	media             *media.Resolver
	accessService     *access.Service
	complaintsService *complaints.Service
	reserveService    *reserve.Service
	lookupService     *lookup.Service
	paymentsService   *payments.Service
	notifyService     *notify.Service
	auditService      *audit.Service

	lookupInputMu     sync.Mutex
	lookupInputByChat map[int64]telegram.State
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgrepo.NewPool(ctx, cfg.DatabaseDSN(), cfg.DBConnectTimeout())
	if err != nil {
		logger.Warn("postgres pool unavailable, continuing in degraded mode", zap.Error(err))
		pool = nil
	}
	gw := pgrepo.NewGateway(pool, pgrepo.DefaultConnectAttempts, logger)

	usersRepo := pgrepo.NewUsersRepo(gw)
	complaintsRepo := pgrepo.NewComplaintsRepo(gw)
	generationsRepo := pgrepo.NewGenerationsRepo(gw)
	paymentsRepo := pgrepo.NewPaymentsRepo(gw)
	botsRepo := pgrepo.NewBotsRepo(gw)
	adminsRepo := pgrepo.NewAdminsRepo(gw)
	auditRepo := pgrepo.NewAuditRepo(gw)

	var redisClient *goredis.Client
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = redrepo.NewLockRepo(redisClient, cfg.LockTTL())
	} else {
		logger.Info("redis is not configured, using in-process entity locks")
	}

	var signer media.URLSigner
	if cfg.S3Enabled() {
		s3Signer, err := s3infra.NewSigner(s3infra.Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			logger.Warn("s3 signer unavailable, s3:// media will not resolve", zap.Error(err))
		} else {
			signer = s3Signer
		}
	}
	resolver := media.NewResolver(cfg.ProjectRoot, cfg.OutputDir, signer, cfg.S3URLTTL())

	httpClient, err := telegram.NewHTTPClient(cfg.ProxyURL(), cfg.Bot.SessionLimit)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("build telegram http client: %w", err)
	}
	clientOpts := telegram.Options{HTTPClient: httpClient, Logger: logger}

	bot, err := telegram.NewClient(cfg.Bot.Token, clientOpts)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("create moderator bot client: %w", err)
	}
	botPool := telegram.NewBotPool(clientOpts)

	complaintOpts := complaints.Options{
		AllowRedecide: cfg.Complaints.AllowRedecide,
		PageSize:      cfg.Complaints.PageSize,
	}

	a := &App{
		cfg:               cfg,
		logger:            logger,
		gw:                gw,
		redis:             redisClient,
		bot:               bot,
		tg:                bot,
		media:             resolver,
		accessService:     access.NewService(adminsRepo, logger),
		complaintsService: complaints.NewService(complaintsRepo, pricing.NewService(generationsRepo, logger), locker, complaintOpts),
		reserveService:    reserve.NewService(usersRepo, locker, logger),
		lookupService:     lookup.NewService(usersRepo, generationsRepo, resolver),
		paymentsService:   payments.NewService(paymentsRepo),
		notifyService:     notify.NewService(botsRepo, botPool, logger),
		auditService:      audit.NewService(auditRepo, cfg.Audit.Enabled, logger),
		lookupInputByChat: make(map[int64]telegram.State),
	}
	a.router = NewRouter(a)
	a.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Run registers the webhook, serves until ctx is done and removes the
// webhook again on the way out.
func (a *App) Run(ctx context.Context) error {
	if err := a.gw.Ping(ctx); err != nil {
		a.logger.Warn("postgres ping failed at startup", zap.Error(err))
	}

	if err := a.registerWebhook(); err != nil {
		_ = a.close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("moderator webhook server started",
			zap.String("addr", a.server.Addr),
			zap.String("environment", a.cfg.Environment),
			zap.String("bot", a.bot.Username()),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown moderator app", zap.Error(err))
	}
	return serveErr
}

func (a *App) registerWebhook() error {
	if err := a.bot.DeleteWebhook(); err != nil {
		a.logger.Warn("delete previous webhook", zap.Error(err))
	}

	endpoint := a.cfg.WebhookEndpoint()
	if err := a.bot.SetWebhook(endpoint); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := a.bot.WebhookInfo()
	if err != nil {
		a.logger.Warn("read webhook info", zap.Error(err))
		return nil
	}
	if info.URL != endpoint {
		a.logger.Error("webhook url mismatch", zap.String("expected", endpoint), zap.String("actual", info.URL))
		return nil
	}
	a.logger.Info("webhook registered", zap.String("url", endpoint), zap.Int("pending_updates", info.PendingUpdateCount))
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
	}
	if a.bot != nil {
		if err := a.bot.DeleteWebhook(); err != nil {
			a.logger.Warn("delete webhook on shutdown", zap.Error(err))
		}
	}
	if err := a.close(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	return shutdownErr
}

func (a *App) close() error {
	a.gw.Close()
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
