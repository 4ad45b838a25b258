// Package app инициализирует все компоненты приложения.
// app.go собирает приложение: создаёт пулы БД и Redis, репозитории, сервисы, обработчики,
// и собирает из них бота, HTTP API и планировщик.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"serotonyl.ru/ecobot/internal/bot"
	"serotonyl.ru/ecobot/internal/config"
	"serotonyl.ru/ecobot/internal/db/postgres"
	"serotonyl.ru/ecobot/internal/db/redis"
	"serotonyl.ru/ecobot/internal/features/admin"
	"serotonyl.ru/ecobot/internal/features/badges"
	"serotonyl.ru/ecobot/internal/features/companion"
	"serotonyl.ru/ecobot/internal/features/dashboard"
	"serotonyl.ru/ecobot/internal/features/impact"
	"serotonyl.ru/ecobot/internal/features/leaderboard"
	"serotonyl.ru/ecobot/internal/features/members"
	"serotonyl.ru/ecobot/internal/features/recycling"
	"serotonyl.ru/ecobot/internal/features/streak"
	"serotonyl.ru/ecobot/internal/httpapi"
	"serotonyl.ru/ecobot/internal/jobs"
	"serotonyl.ru/ecobot/internal/metrics"
)

// сколько ждём завершения HTTP-запросов при остановке
const shutdownTimeout = 10 * time.Second

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *http.Server // nil, если FEATURE_HTTP_ENABLED=false
	DB        *pgxpool.Pool
	Redis     *goredis.Client // nil, если Redis недоступен
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен: компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := cfg.Location()

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	if err := postgres.RunMigrations(ctx, pool, postgres.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Redis (только кэш рейтинга, без него работаем напрямую с БД) ===
	var (
		rdb   *goredis.Client
		cache leaderboard.Cache
	)
	if rdb, err = redis.NewClient(ctx, cfg); err != nil {
		log.WithError(err).Warn("Redis недоступен, рейтинг будет читаться из БД")
		rdb = nil
	} else {
		cache = leaderboard.NewRedisCache(rdb)
	}

	// === 3. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken, telego.WithLogger(log.WithField("component", "telego")))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	me, err := api.GetMe(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка авторизации в Telegram: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)
	sender := bot.NewSender(api)

	// === 4. Метрики ===
	m := metrics.New(prometheus.DefaultRegisterer)

	// === 5. Репозитории ===
	memberRepo := members.NewRepository(pool)
	badgeRepo := badges.NewRepository(pool)
	companionRepo := companion.NewRepository(pool)
	ledgerRepo := recycling.NewRepository(pool, badgeRepo, companionRepo)
	streakRepo := streak.NewRepository(pool)
	impactRepo := impact.NewRepository(pool)
	leaderboardRepo := leaderboard.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 6. Сервисы ===
	memberService := members.NewService(memberRepo)
	badgeService := badges.NewService(badgeRepo)
	companionService := companion.NewService(companionRepo)
	ledgerService := recycling.NewService(ledgerRepo, m, loc)
	streakService := streak.NewService(streakRepo, cfg)
	impactService := impact.NewService(impactRepo, loc)
	leaderboardService := leaderboard.NewService(leaderboardRepo, cache, m, leaderboard.Options{
		Size:     cfg.LeaderboardSize,
		CacheTTL: cfg.LeaderboardCacheTTL,
		Location: loc,
	})
	ledgerService.WithInvalidators(leaderboardService)
	dashboardService := dashboard.NewService(memberService, ledgerRepo, companionService, loc)
	adminService := admin.NewService(adminRepo, memberService, companionService, admin.Options{
		PasswordHash: cfg.AdminPasswordHash,
		AdminIDs:     cfg.AdminIDs,
	})

	// === 7. Бот ===
	b := bot.New(api, sender, cfg, memberService, bot.Handlers{
		Recycling:   recycling.NewHandler(ledgerService, sender, loc),
		Dashboard:   dashboard.NewHandler(dashboardService, sender, loc),
		Leaderboard: leaderboard.NewHandler(leaderboardService, sender),
		Badges:      badges.NewHandler(badgeService, sender, loc),
		Companion:   companion.NewHandler(companionService, sender),
		Members:     members.NewHandler(memberService, sender),
		Streak:      streak.NewHandler(streakService, sender),
		Admin:       admin.NewHandler(adminService, sender),
	})

	// === 8. HTTP API ===
	var srv *http.Server
	if cfg.FeatureHTTPEnabled {
		router := httpapi.NewRouter(httpapi.Deps{
			Ledger:        ledgerService,
			Dashboard:     dashboardService,
			Leaderboard:   leaderboardService,
			Badges:        badgeService,
			Companions:    companionService,
			Impact:        impactService,
			Members:       memberService,
			Metrics:       m,
			InternalToken: cfg.InternalAPIToken,
			Health:        pool.Ping,
		})
		srv = httpapi.NewServer(cfg.HTTPAddr, router, cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout)
	}

	// === 9. Планировщик задач ===
	var warmer jobs.Warmer
	if cache != nil {
		warmer = leaderboardService
	}
	scheduler := jobs.NewScheduler(streakService, warmer, adminService, sender, jobs.Options{
		Location:         loc,
		RemindersEnabled: cfg.FeatureRemindersEnabled,
		WarmEvery:        cfg.LeaderboardCacheTTL,
	})

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		HTTP:      srv,
		DB:        pool,
		Redis:     rdb,
	}, nil
}

// Run запускает бота, HTTP API и планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("ошибка запуска планировщика: %w", err)
	}
	defer a.Scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Bot.Start(ctx)
	})

	if a.HTTP != nil {
		g.Go(func() error {
			log.WithField("addr", a.HTTP.Addr).Info("HTTP API запущен")
			if err := a.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP сервер: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.HTTP.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Close освобождает соединения.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия Redis")
		}
	}
	a.DB.Close()
}
