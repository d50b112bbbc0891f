package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY
// Implements leaderboard.SnapshotRepository. The last published day lives
// in the leaderboard_state table so the daily publish guard survives
// restarts of the worker.
// ══════════════════════════════════════════════════════════════════════════════

const lastPublishedDayKey = "last_published_day"

// SnapshotRepository is the PostgreSQL implementation of
// leaderboard.SnapshotRepository.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// SaveSnapshot stores the snapshot with all its entries in one transaction.
// A snapshot already stored for the same day is replaced, so a publication
// retried after a failed announcement does not conflict.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	if len(snapshot.Entries) == 0 {
		return leaderboard.ErrEmptySnapshot
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM leaderboard_snapshots WHERE day = $1
		`, snapshot.Day)
		if err != nil {
			return fmt.Errorf("snapshot_repo: replace snapshot failed: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO leaderboard_snapshots (id, day, created_at)
			VALUES ($1, $2, $3)
		`, snapshot.ID, snapshot.Day, snapshot.CreatedAt)
		if err != nil {
			return fmt.Errorf("snapshot_repo: insert snapshot failed: %w", err)
		}

		for _, entry := range snapshot.Entries {
			_, err := tx.Exec(ctx, `
				INSERT INTO leaderboard_snapshot_entries
					(snapshot_id, rank, member_id, nickname, exp, level)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, snapshot.ID, entry.Rank, entry.MemberID, entry.Nickname, entry.Exp, entry.Level)
			if err != nil {
				return fmt.Errorf("snapshot_repo: insert entry failed: %w", err)
			}
		}

		return nil
	})
}

// GetSnapshotByDay returns the snapshot for the given day.
func (r *SnapshotRepository) GetSnapshotByDay(ctx context.Context, day string) (*leaderboard.Snapshot, error) {
	var (
		snapshot  leaderboard.Snapshot
		snapDay   time.Time
		createdAt time.Time
	)

	err := r.conn.QueryRow(ctx, `
		SELECT id, day, created_at FROM leaderboard_snapshots WHERE day = $1
	`, day).Scan(&snapshot.ID, &snapDay, &createdAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, leaderboard.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("snapshot_repo: get snapshot failed: %w", err)
	}

	snapshot.Day = snapDay.Format("2006-01-02")
	snapshot.CreatedAt = createdAt

	rows, err := r.conn.Query(ctx, `
		SELECT rank, member_id, nickname, exp, level
		FROM leaderboard_snapshot_entries
		WHERE snapshot_id = $1
		ORDER BY rank ASC
	`, snapshot.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot_repo: get entries failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry leaderboard.Entry
		if err := rows.Scan(&entry.Rank, &entry.MemberID, &entry.Nickname, &entry.Exp, &entry.Level); err != nil {
			return nil, fmt.Errorf("snapshot_repo: scan entry failed: %w", err)
		}
		snapshot.Entries = append(snapshot.Entries, entry)
	}

	return &snapshot, rows.Err()
}

// GetLastPublishedDay returns the day of the last published snapshot,
// or an empty string if nothing was published yet.
func (r *SnapshotRepository) GetLastPublishedDay(ctx context.Context) (string, error) {
	var day string

	err := r.conn.QueryRow(ctx, `
		SELECT value FROM leaderboard_state WHERE key = $1
	`, lastPublishedDayKey).Scan(&day)
	if err != nil {
		if IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("snapshot_repo: get last published day failed: %w", err)
	}

	return day, nil
}

// SetLastPublishedDay records the day of the most recent publication.
func (r *SnapshotRepository) SetLastPublishedDay(ctx context.Context, day string) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO leaderboard_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, lastPublishedDayKey, day)
	if err != nil {
		return fmt.Errorf("snapshot_repo: set last published day failed: %w", err)
	}

	return nil
}
