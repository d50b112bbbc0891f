// Package jobs contains implementations of scheduled jobs for the study
// community bot.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
	"github.com/gongdew-hub/study-community-bot/pkg/retry"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH RANKING JOB
// ══════════════════════════════════════════════════════════════════════════════

// Announcer delivers a ranking snapshot to the community channel.
type Announcer interface {
	AnnounceRanking(ctx context.Context, snapshot *leaderboard.Snapshot) error
}

// PublishRankingJob freezes the current leaderboard into a daily snapshot
// and announces it in the community channel.
//
// The job is scheduled at midnight Seoul time but guards itself with the
// last-published-day stored in the snapshot repository, so a restart or a
// manual RunNow never produces a second publication for the same day.
type PublishRankingJob struct {
	ranking      *query.RankingHandler
	snapshotRepo leaderboard.SnapshotRepository
	announcer    Announcer
	retrier      *retry.Retrier
	log          *logger.Logger
	now          func() time.Time
}

// NewPublishRankingJob creates the daily ranking publication job.
// The announcer may be nil; the snapshot is then stored without a post.
func NewPublishRankingJob(
	ranking *query.RankingHandler,
	snapshotRepo leaderboard.SnapshotRepository,
	announcer Announcer,
	log *logger.Logger,
) *PublishRankingJob {
	return &PublishRankingJob{
		ranking:      ranking,
		snapshotRepo: snapshotRepo,
		announcer:    announcer,
		retrier:      retry.NewChatRetrier(),
		log:          log.With(logger.Component("publish_ranking")),
		now:          timeutil.Now,
	}
}

// WithClock overrides the job's clock. Used in tests.
func (j *PublishRankingJob) WithClock(now func() time.Time) *PublishRankingJob {
	j.now = now
	return j
}

// Name returns the job name.
func (j *PublishRankingJob) Name() string {
	return "publish_ranking"
}

// Description returns a human-readable description.
func (j *PublishRankingJob) Description() string {
	return "Publishes the daily experience leaderboard snapshot"
}

// Run executes the publication.
func (j *PublishRankingJob) Run(ctx context.Context) error {
	today := string(activity.DayOf(timeutil.ToSeoul(j.now())))

	lastDay, err := j.snapshotRepo.GetLastPublishedDay(ctx)
	if err != nil {
		return fmt.Errorf("publish ranking: failed to load last published day: %w", err)
	}
	if lastDay == today {
		j.log.Debug("ranking already published", logger.Day(today))
		return nil
	}

	board, err := j.ranking.Handle(ctx, query.RankingQuery{SkipCache: true})
	if err != nil {
		return fmt.Errorf("publish ranking: failed to build board: %w", err)
	}

	snapshot, err := leaderboard.NewSnapshot(uuid.New().String(), today, board, j.now())
	if errors.Is(err, leaderboard.ErrEmptySnapshot) {
		j.log.Info("no members to rank, skipping publication", logger.Day(today))
		return nil
	}
	if err != nil {
		return fmt.Errorf("publish ranking: %w", err)
	}

	if err := j.snapshotRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("publish ranking: failed to save snapshot: %w", err)
	}

	if j.announcer != nil {
		err := j.retrier.Do(ctx, func(ctx context.Context) error {
			return j.announcer.AnnounceRanking(ctx, snapshot)
		})
		if err != nil {
			// The snapshot is stored; the announcement can be retried
			// manually without re-freezing the board.
			return fmt.Errorf("publish ranking: failed to announce: %w", err)
		}
	}

	if err := j.snapshotRepo.SetLastPublishedDay(ctx, today); err != nil {
		return fmt.Errorf("publish ranking: failed to record published day: %w", err)
	}

	j.log.Info("ranking published",
		logger.Day(today),
		logger.String("snapshot_id", snapshot.ID),
		logger.Int("entries", len(snapshot.Entries)),
	)

	return nil
}
