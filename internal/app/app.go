package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/api"
	"nutriplan/internal/catalog"
	"nutriplan/internal/config"
	"nutriplan/internal/database"
	"nutriplan/internal/fetcher"
	"nutriplan/internal/glycemic"
	"nutriplan/internal/history"
	"nutriplan/internal/llm"
	"nutriplan/internal/logger"
	"nutriplan/internal/metrics"
	"nutriplan/internal/notification"
	"nutriplan/internal/planner"
	"nutriplan/internal/serving"
	"nutriplan/internal/telegram"
	"nutriplan/internal/users"
)

// App holds the application's dependencies.
type App struct {
	cfg *config.Config
	log *logger.Logger

	db    *database.DB
	llm   llm.Client
	cache *catalog.RedisCache

	History       *history.Repository
	Metrics       *metrics.Store
	Users         *users.Repository
	Notifications *notification.Service
	Plans         *planner.Service
}

// New wires the database, external clients and services from cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a := &App{cfg: cfg, log: log, db: db}

	a.llm, err = llm.NewClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}

	var pageCache catalog.Cache
	if cfg.RedisAddr != "" {
		a.cache, err = catalog.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("Catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			pageCache = a.cache
		}
	}

	var pusher notification.Pusher
	if cfg.TelegramBotToken != "" && cfg.TelegramAlertChatID != 0 {
		p, err := telegram.NewPusher(cfg.TelegramBotToken, cfg.TelegramAlertChatID)
		if err != nil {
			log.Warn("Telegram alerts disabled", "error", err)
		} else {
			log.Info("Telegram alerts enabled", "bot", p.BotName())
			pusher = p
		}
	}

	a.History = history.NewRepository(db.SQL)
	a.Metrics = metrics.NewStore(db.SQL)
	a.Users = users.NewRepository(db.SQL)
	a.Notifications = notification.NewService(notification.NewRepository(db.SQL), pusher, log)

	slotFetcher := fetcher.New(
		catalog.NewClient(cfg, pageCache),
		glycemic.NewClient(cfg.PredictorURL),
		cfg.CatalogCredentials,
		fetcher.DefaultPolicy(),
		log,
	)
	assembler := planner.NewAssembler(
		serving.NewLineScaler(a.llm),
		planner.NewLabelSimplifier(a.llm),
		a.Metrics,
		log,
	)
	generator := planner.NewGenerator(slotFetcher, a.History, planner.NewPlanRepository(db.SQL), assembler, log)
	a.Plans = planner.NewService(generator, a.Users, a.Notifications, log)

	return a, nil
}

// Close releases the clients and the database.
func (a *App) Close() error {
	var errs []error
	if a.llm != nil {
		errs = append(errs, a.llm.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(api.RouterConfig{
		Log:            a.log,
		AllowedOrigins: a.cfg.CORSAllowedOrigins,
		Auth:           api.NewAuthMiddleware(a.cfg.JWTSecret, a.log),
		Plans:          api.NewPlanHandler(a.Plans, a.log),
		Notifications:  api.NewNotificationHandler(a.Notifications, a.log),
		Admin:          api.NewAdminHandler(a.Metrics, filepath.Dir(a.cfg.DatabasePath), a.log),
		Health:         api.NewHealthHandler(),
	})
}

// CleanupHistory removes served recipes older than days.
func (a *App) CleanupHistory(ctx context.Context, days int) (int64, error) {
	return a.History.Cleanup(ctx, time.Now().AddDate(0, 0, -days))
}

// CleanupMetrics removes usage records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.Metrics.Cleanup(ctx, time.Now().AddDate(0, 0, -days))
}

// ImportUsers upserts the users in the JSON file at path.
func (a *App) ImportUsers(ctx context.Context, path string) (users.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return users.ImportResult{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return a.Users.Import(ctx, f)
}

// RunRetention applies the configured retention windows once and then every
// RetentionInterval until ctx is done.
func (a *App) RunRetention(ctx context.Context) {
	interval := a.cfg.RetentionInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.retain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *App) retain(ctx context.Context) {
	if n, err := a.CleanupHistory(ctx, a.cfg.HistoryRetentionDays); err != nil {
		a.log.Error("History cleanup failed", "error", err)
	} else if n > 0 {
		a.log.Info("Removed old recipe history", "rows", n, "retention_days", a.cfg.HistoryRetentionDays)
	}
	if n, err := a.CleanupMetrics(ctx, a.cfg.MetricsRetentionDays); err != nil {
		a.log.Error("Metrics cleanup failed", "error", err)
	} else if n > 0 {
		a.log.Info("Removed old usage metrics", "rows", n, "retention_days", a.cfg.MetricsRetentionDays)
	}
}
