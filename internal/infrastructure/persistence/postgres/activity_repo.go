package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY
// Implements activity.Repository on top of the activity_marks table.
// The (member_id, kind, day) primary key enforces one mark per day.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository is the PostgreSQL implementation of activity.Repository.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// InsertMarkIfAbsent records a mark unless one already exists for the day.
func (r *ActivityRepository) InsertMarkIfAbsent(ctx context.Context, mark *activity.Mark) (bool, error) {
	tag, err := r.conn.Exec(ctx, `
		INSERT INTO activity_marks (member_id, kind, day, recorded_at, exp_awarded)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (member_id, kind, day) DO NOTHING
	`, mark.MemberID, mark.Kind.String(), mark.Day.String(), mark.RecordedAt, mark.ExpAwarded)
	if err != nil {
		return false, fmt.Errorf("activity_repo: insert mark failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// HasMark reports whether a mark exists for the given day.
func (r *ActivityRepository) HasMark(ctx context.Context, memberID string, kind activity.Kind, day activity.Day) (bool, error) {
	var exists bool

	err := r.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM activity_marks
			WHERE member_id = $1 AND kind = $2 AND day = $3
		)
	`, memberID, kind.String(), day.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("activity_repo: has mark failed: %w", err)
	}

	return exists, nil
}

// ListMarkDays returns all marked days of the given kind, newest first.
func (r *ActivityRepository) ListMarkDays(ctx context.Context, memberID string, kind activity.Kind) ([]activity.Day, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT day FROM activity_marks
		WHERE member_id = $1 AND kind = $2
		ORDER BY day DESC
	`, memberID, kind.String())
	if err != nil {
		return nil, fmt.Errorf("activity_repo: list days failed: %w", err)
	}
	defer rows.Close()

	var days []activity.Day
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("activity_repo: scan failed: %w", err)
		}
		days = append(days, activity.DayOf(day))
	}

	return days, rows.Err()
}

// CountMarksInRange counts marks of the given kind in [from, to].
func (r *ActivityRepository) CountMarksInRange(ctx context.Context, memberID string, kind activity.Kind, from, to activity.Day) (int, error) {
	var count int

	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(DISTINCT day) FROM activity_marks
		WHERE member_id = $1 AND kind = $2 AND day BETWEEN $3 AND $4
	`, memberID, kind.String(), from.String(), to.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("activity_repo: count marks failed: %w", err)
	}

	return count, nil
}
