// Package main - точка входа бота учебного сообщества 공듀.
//
// Бот отмечает ежедневную посещаемость (출석) и подъёмы (기상), засчитывает
// учебное время по голосовым сессиям, начисляет опыт и уровни и отвечает
// на корейские команды участников.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: репозитории, шлюз чата, планировщик
// - Interface: маршрутизация команд и форматирование ответов
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gongdew-hub/study-community-bot/config"
	"github.com/gongdew-hub/study-community-bot/internal/application/command"
	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/external/chat"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/persistence/postgres"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/persistence/redis"
	"github.com/gongdew-hub/study-community-bot/internal/interface/bot"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Log.Level),
		AddCaller: cfg.Log.AddCaller,
	})

	log.Info("starting study community bot",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL И МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		QueryTimeout:    cfg.Database.QueryTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database ready")

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально, только кеш рейтинга)
	// ─────────────────────────────────────────────────────────────────────────
	var rankingCache leaderboard.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("redis unavailable, ranking cache disabled", logger.Err(err))
		} else {
			defer redisClient.Close()
			rankingCache = redis.NewRankingCache(redisClient)
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. РЕПОЗИТОРИИ И APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	memberRepo := postgres.NewMemberRepository(dbConn)
	activityRepo := postgres.NewActivityRepository(dbConn)
	studyRepo := postgres.NewStudyRepository(dbConn)

	handlers := bot.Handlers{
		MarkDaily:   command.NewMarkDailyHandler(memberRepo, activityRepo, log),
		Presence:    command.NewPresenceTracker(memberRepo, studyRepo, log),
		Profile:     query.NewProfileHandler(memberRepo, studyRepo),
		WindowStats: query.NewWindowStatsHandler(memberRepo, activityRepo, studyRepo),
		Streak:      query.NewStreakHandler(activityRepo, studyRepo),
		MarkHistory: query.NewMarkHistoryHandler(activityRepo),
		Ranking:     query.NewRankingHandler(memberRepo, rankingCache, log),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ШЛЮЗ ЧАТА И ЗАПУСК
	// ─────────────────────────────────────────────────────────────────────────
	chatCfg := chat.DefaultClientConfig(cfg.Chat.Token, cfg.Chat.BaseURL, cfg.Chat.ChannelID)
	chatCfg.Timeout = cfg.Chat.RequestTimeout
	chatCfg.RetryAttempts = cfg.Chat.MaxRetries
	chatCfg.RetryDelay = cfg.Chat.RetryBaseDelay
	chatCfg.Logger = log
	chatCfg.Debug = cfg.App.Debug
	chatClient := chat.NewClient(chatCfg)

	router := bot.NewRouter(chatClient, handlers, log)
	app := bot.New(chatClient, router, log)

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("bot stopped: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
