package query

import (
	"context"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING QUERY
// Builds the experience leaderboard from the member store. Results are
// cached in Redis when a cache is configured; the cache is best-effort
// and never fails the query.
// ══════════════════════════════════════════════════════════════════════════════

// RankingQuery requests the current leaderboard.
type RankingQuery struct {
	// Limit caps the number of rows. Zero means the default top size.
	Limit int

	// SkipCache forces a rebuild from the member store.
	SkipCache bool
}

// RankingHandler handles the RankingQuery.
type RankingHandler struct {
	memberRepo member.Repository
	cache      leaderboard.Cache
	log        *logger.Logger
	now        func() time.Time
}

// NewRankingHandler creates a new RankingHandler. The cache may be nil.
func NewRankingHandler(memberRepo member.Repository, cache leaderboard.Cache, log *logger.Logger) *RankingHandler {
	return &RankingHandler{
		memberRepo: memberRepo,
		cache:      cache,
		log:        log,
		now:        timeutil.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *RankingHandler) WithClock(now func() time.Time) *RankingHandler {
	h.now = now
	return h
}

// Handle executes the ranking query.
func (h *RankingHandler) Handle(ctx context.Context, q RankingQuery) (*leaderboard.Board, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = leaderboard.DefaultTopSize
	}

	if h.cache != nil && !q.SkipCache {
		board, ok, err := h.cache.GetBoard(ctx)
		if err != nil {
			h.log.Warn("leaderboard cache read failed", logger.Err(err))
		} else if ok && len(board.Entries) >= limit {
			board.Entries = board.Entries[:limit]
			return board, nil
		}
	}

	members, err := h.memberRepo.TopByExperience(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking: failed to load top members: %w", err)
	}

	board := &leaderboard.Board{
		Entries:     make([]leaderboard.Entry, 0, len(members)),
		GeneratedAt: h.now(),
	}
	for _, r := range member.RankAll(members) {
		board.Entries = append(board.Entries, leaderboard.Entry{
			Rank:     r.Rank,
			MemberID: r.Member.ID.String(),
			Nickname: r.Member.Nickname,
			Exp:      int(r.Member.CurrentExp),
			Level:    int(r.Member.Level()),
		})
	}

	if h.cache != nil {
		if err := h.cache.SetBoard(ctx, board); err != nil {
			h.log.Warn("leaderboard cache write failed", logger.Err(err))
		}
	}

	return board, nil
}
