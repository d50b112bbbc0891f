// Package main - точка входа фонового воркера.
//
// Воркер держит планировщик: полуночная публикация снимка рейтинга в
// канал 랭킹 и периодическое обновление кеша лидерборда. Он запускается
// отдельно от бота, чтобы рестарты интерфейса не влияли на расписание.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gongdew-hub/study-community-bot/config"
	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/external/chat"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/persistence/postgres"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/persistence/redis"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/scheduler"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/scheduler/jobs"
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

	log.Info("starting worker", logger.String("env", string(cfg.App.Environment)))

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled by configuration, exiting")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL И МИГРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
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

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var rankingCache leaderboard.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		redisClient, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("redis unavailable, ranking cache disabled", logger.Err(err))
		} else {
			defer redisClient.Close()
			rankingCache = redis.NewRankingCache(redisClient)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАВИСИМОСТИ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	memberRepo := postgres.NewMemberRepository(dbConn)
	snapshotRepo := postgres.NewSnapshotRepository(dbConn)
	rankingQuery := query.NewRankingHandler(memberRepo, rankingCache, log)

	chatCfg := chat.DefaultClientConfig(cfg.Chat.Token, cfg.Chat.BaseURL, cfg.Chat.ChannelID)
	chatCfg.Logger = log
	chatClient := chat.NewClient(chatCfg)

	rankingChannel := cfg.Chat.RankingChannelID
	if rankingChannel == "" {
		rankingChannel = cfg.Chat.ChannelID
	}
	announcer := bot.NewRankingAnnouncer(chatClient, rankingChannel)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	publishJob := jobs.NewPublishRankingJob(rankingQuery, snapshotRepo, announcer, log)
	publishSchedule := scheduler.NewDailySchedule(
		cfg.Scheduler.PublishRankingHour,
		cfg.Scheduler.PublishRankingMinute,
		cfg.App.Location,
	)
	if err := sched.Register(publishJob, publishSchedule); err != nil {
		return fmt.Errorf("failed to register publish job: %w", err)
	}

	if rankingCache != nil {
		refreshJob := jobs.NewRefreshRankingCacheJob(rankingQuery, log)
		refreshSchedule := scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshRankingInterval)
		if err := sched.Register(refreshJob, refreshSchedule); err != nil {
			return fmt.Errorf("failed to register refresh job: %w", err)
		}
	}

	// Навёрстываем пропущенную полуночную публикацию после рестарта.
	// Задача сама не публикует повторно за уже опубликованный день.
	if _, err := sched.RunNow(ctx, publishJob.Name()); err != nil {
		log.Warn("catch-up ranking publication failed", logger.Err(err))
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	if err := sched.Stop(); err != nil {
		log.Warn("scheduler stop failed", logger.Err(err))
	}

	log.Info("shutdown complete")
	return nil
}
