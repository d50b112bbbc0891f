package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY REPOSITORY
// Implements activity.StudyRepository on top of the study_logs table.
// Minutes accumulate per (member, day) across sessions.
// ══════════════════════════════════════════════════════════════════════════════

// StudyRepository is the PostgreSQL implementation of activity.StudyRepository.
type StudyRepository struct {
	conn *Connection
}

// NewStudyRepository creates a new StudyRepository.
func NewStudyRepository(conn *Connection) *StudyRepository {
	return &StudyRepository{conn: conn}
}

// AccumulateMinutes adds minutes to the member's daily total and returns
// the new total for the day.
func (r *StudyRepository) AccumulateMinutes(ctx context.Context, memberID string, day activity.Day, minutes int) (int, error) {
	var total int

	err := r.conn.QueryRow(ctx, `
		INSERT INTO study_logs (member_id, day, minutes)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, day)
		DO UPDATE SET minutes = study_logs.minutes + EXCLUDED.minutes
		RETURNING minutes
	`, memberID, day.String(), minutes).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("study_repo: accumulate failed: %w", err)
	}

	return total, nil
}

// GetMinutes returns the accumulated minutes for the day, zero if absent.
func (r *StudyRepository) GetMinutes(ctx context.Context, memberID string, day activity.Day) (int, error) {
	var minutes int

	err := r.conn.QueryRow(ctx, `
		SELECT minutes FROM study_logs
		WHERE member_id = $1 AND day = $2
	`, memberID, day.String()).Scan(&minutes)
	if err != nil {
		if IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("study_repo: get minutes failed: %w", err)
	}

	return minutes, nil
}

// ListQualifyingDays returns days with at least minMinutes, newest first.
func (r *StudyRepository) ListQualifyingDays(ctx context.Context, memberID string, minMinutes int) ([]activity.Day, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT day FROM study_logs
		WHERE member_id = $1 AND minutes >= $2
		ORDER BY day DESC
	`, memberID, minMinutes)
	if err != nil {
		return nil, fmt.Errorf("study_repo: list qualifying days failed: %w", err)
	}
	defer rows.Close()

	var days []activity.Day
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("study_repo: scan failed: %w", err)
		}
		days = append(days, activity.DayOf(day))
	}

	return days, rows.Err()
}

// SumMinutesInRange returns the total minutes in [from, to].
func (r *StudyRepository) SumMinutesInRange(ctx context.Context, memberID string, from, to activity.Day) (int, error) {
	var sum int

	err := r.conn.QueryRow(ctx, `
		SELECT COALESCE(SUM(minutes), 0) FROM study_logs
		WHERE member_id = $1 AND day BETWEEN $2 AND $3
	`, memberID, from.String(), to.String()).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("study_repo: sum minutes failed: %w", err)
	}

	return sum, nil
}

// CountQualifyingDaysInRange counts days with at least minMinutes in [from, to].
func (r *StudyRepository) CountQualifyingDaysInRange(ctx context.Context, memberID string, from, to activity.Day, minMinutes int) (int, error) {
	var count int

	err := r.conn.QueryRow(ctx, `
		SELECT COUNT(DISTINCT day) FROM study_logs
		WHERE member_id = $1 AND day BETWEEN $2 AND $3 AND minutes >= $4
	`, memberID, from.String(), to.String(), minMinutes).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("study_repo: count qualifying days failed: %w", err)
	}

	return count, nil
}
