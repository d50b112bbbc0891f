package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBER REPOSITORY
// Implements member.Repository on top of the members table.
// ══════════════════════════════════════════════════════════════════════════════

// MemberRepository is the PostgreSQL implementation of member.Repository.
type MemberRepository struct {
	conn *Connection
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(conn *Connection) *MemberRepository {
	return &MemberRepository{conn: conn}
}

// UpsertIfAbsent registers a member on first contact. An existing row is
// left untouched so accumulated experience survives nickname changes.
func (r *MemberRepository) UpsertIfAbsent(ctx context.Context, id member.ID, nickname string) (bool, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = member.UnknownNickname
	}

	tag, err := r.conn.Exec(ctx, `
		INSERT INTO members (id, nickname)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id.String(), nickname)
	if err != nil {
		return false, fmt.Errorf("member_repo: upsert failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Get returns the member by ID.
func (r *MemberRepository) Get(ctx context.Context, id member.ID) (*member.Member, error) {
	var (
		m         member.Member
		rawID     string
		exp       int
		joinedAt  time.Time
		updatedAt time.Time
	)

	err := r.conn.QueryRow(ctx, `
		SELECT id, nickname, exp, joined_at, updated_at
		FROM members
		WHERE id = $1
	`, id.String()).Scan(&rawID, &m.Nickname, &exp, &joinedAt, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, member.ErrMemberNotFound
		}
		return nil, fmt.Errorf("member_repo: get failed: %w", err)
	}

	m.ID = member.ID(rawID)
	m.CurrentExp = member.Exp(exp)
	m.JoinedAt = joinedAt
	m.UpdatedAt = updatedAt
	return &m, nil
}

// AddExperience atomically adds experience and returns the new total.
func (r *MemberRepository) AddExperience(ctx context.Context, id member.ID, delta member.Exp) (member.Exp, error) {
	var total int

	err := r.conn.QueryRow(ctx, `
		UPDATE members
		SET exp = exp + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING exp
	`, id.String(), int(delta)).Scan(&total)
	if err != nil {
		if IsNoRows(err) {
			return 0, member.ErrMemberNotFound
		}
		return 0, fmt.Errorf("member_repo: add experience failed: %w", err)
	}

	return member.Exp(total), nil
}

// GetExperience returns the member's current experience.
func (r *MemberRepository) GetExperience(ctx context.Context, id member.ID) (member.Exp, error) {
	var exp int

	err := r.conn.QueryRow(ctx, `
		SELECT exp FROM members WHERE id = $1
	`, id.String()).Scan(&exp)
	if err != nil {
		if IsNoRows(err) {
			return 0, member.ErrMemberNotFound
		}
		return 0, fmt.Errorf("member_repo: get experience failed: %w", err)
	}

	return member.Exp(exp), nil
}

// TopByExperience returns members ordered by experience descending.
// Ties are broken by ID for a stable ordering.
func (r *MemberRepository) TopByExperience(ctx context.Context, limit int) ([]*member.Member, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, nickname, exp, joined_at, updated_at
		FROM members
		ORDER BY exp DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("member_repo: top query failed: %w", err)
	}
	defer rows.Close()

	var members []*member.Member
	for rows.Next() {
		var (
			m     member.Member
			rawID string
			exp   int
		)
		if err := rows.Scan(&rawID, &m.Nickname, &exp, &m.JoinedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("member_repo: scan failed: %w", err)
		}
		m.ID = member.ID(rawID)
		m.CurrentExp = member.Exp(exp)
		members = append(members, &m)
	}

	return members, rows.Err()
}

// Count returns the total number of registered members.
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM members`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("member_repo: count failed: %w", err)
	}
	return count, nil
}
