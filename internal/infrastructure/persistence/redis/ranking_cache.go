package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// Implements leaderboard.Cache. The whole board is stored as one JSON
// value with a short TTL; expiry doubles as invalidation.
// ══════════════════════════════════════════════════════════════════════════════

const rankingBoardKey = PrefixRanking + "board"

// RankingCache caches the experience leaderboard in Redis.
type RankingCache struct {
	client  *Client
	ttl     time.Duration
	retrier *retry.Retrier
}

// NewRankingCache creates a new RankingCache.
func NewRankingCache(client *Client) *RankingCache {
	return &RankingCache{
		client:  client,
		ttl:     TTLRankingCache,
		retrier: retry.NewCacheRetrier(),
	}
}

// cachedBoard is the Redis representation of a leaderboard.Board.
type cachedBoard struct {
	Entries     []cachedEntry `json:"entries"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type cachedEntry struct {
	Rank     int    `json:"rank"`
	MemberID string `json:"member_id"`
	Nickname string `json:"nickname"`
	Exp      int    `json:"exp"`
	Level    int    `json:"level"`
}

// GetBoard returns the cached board. The second return value is false on
// a cache miss.
func (c *RankingCache) GetBoard(ctx context.Context) (*leaderboard.Board, bool, error) {
	data, err := retry.DoWithData(ctx, c.retrier, func(ctx context.Context) ([]byte, error) {
		raw, err := c.client.Raw().Get(ctx, rankingBoardKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, retry.Permanent(err)
		}
		return raw, err
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ranking_cache: get failed: %w", err)
	}

	var cached cachedBoard
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	board := &leaderboard.Board{
		Entries:     make([]leaderboard.Entry, 0, len(cached.Entries)),
		GeneratedAt: cached.GeneratedAt,
	}
	for _, e := range cached.Entries {
		board.Entries = append(board.Entries, leaderboard.Entry{
			Rank:     e.Rank,
			MemberID: e.MemberID,
			Nickname: e.Nickname,
			Exp:      e.Exp,
			Level:    e.Level,
		})
	}

	return board, true, nil
}

// SetBoard caches the board with the configured TTL.
func (c *RankingCache) SetBoard(ctx context.Context, board *leaderboard.Board) error {
	cached := cachedBoard{
		Entries:     make([]cachedEntry, 0, len(board.Entries)),
		GeneratedAt: board.GeneratedAt,
	}
	for _, e := range board.Entries {
		cached.Entries = append(cached.Entries, cachedEntry{
			Rank:     e.Rank,
			MemberID: e.MemberID,
			Nickname: e.Nickname,
			Exp:      e.Exp,
			Level:    e.Level,
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.client.Raw().Set(ctx, rankingBoardKey, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("ranking_cache: set failed: %w", err)
	}

	return nil
}

// Invalidate drops the cached board.
func (c *RankingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Raw().Del(ctx, rankingBoardKey).Err(); err != nil {
		return fmt.Errorf("ranking_cache: invalidate failed: %w", err)
	}
	return nil
}
