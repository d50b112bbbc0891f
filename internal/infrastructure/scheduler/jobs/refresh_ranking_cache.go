package jobs

import (
	"context"
	"fmt"

	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH RANKING CACHE JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshRankingCacheJob periodically rebuilds the leaderboard from the
// member store so the cached board never drifts far behind new experience.
// The ranking handler writes the fresh board back to the cache itself.
type RefreshRankingCacheJob struct {
	ranking *query.RankingHandler
	log     *logger.Logger
}

// NewRefreshRankingCacheJob creates the cache refresh job.
func NewRefreshRankingCacheJob(ranking *query.RankingHandler, log *logger.Logger) *RefreshRankingCacheJob {
	return &RefreshRankingCacheJob{
		ranking: ranking,
		log:     log.With(logger.Component("refresh_ranking_cache")),
	}
}

// Name returns the job name.
func (j *RefreshRankingCacheJob) Name() string {
	return "refresh_ranking_cache"
}

// Description returns a human-readable description.
func (j *RefreshRankingCacheJob) Description() string {
	return "Rebuilds the cached experience leaderboard"
}

// Run executes the refresh.
func (j *RefreshRankingCacheJob) Run(ctx context.Context) error {
	board, err := j.ranking.Handle(ctx, query.RankingQuery{SkipCache: true})
	if err != nil {
		return fmt.Errorf("refresh ranking cache: %w", err)
	}

	j.log.Debug("ranking cache refreshed", logger.Int("entries", len(board.Entries)))
	return nil
}
