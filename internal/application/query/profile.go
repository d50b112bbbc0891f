// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE QUERY
// Returns a member's level, experience, and today's study time.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileQuery requests a member's profile.
type ProfileQuery struct {
	// MemberID is the chat platform ID of the member.
	MemberID string
}

// ProfileResult contains the member's current standing.
type ProfileResult struct {
	// Nickname is the member's display name.
	Nickname string

	// Exp is the member's total experience.
	Exp member.Exp

	// Level is the member's current level.
	Level member.Level

	// ExpToNext is the experience remaining until the next level.
	// Zero when the member is at the maximum level.
	ExpToNext member.Exp

	// AtMaxLevel indicates the member has reached the top level.
	AtMaxLevel bool

	// TodayMinutes is the study time accumulated today.
	TodayMinutes int
}

// ProfileHandler handles the ProfileQuery.
type ProfileHandler struct {
	memberRepo member.Repository
	studyRepo  activity.StudyRepository
	now        func() time.Time
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(memberRepo member.Repository, studyRepo activity.StudyRepository) *ProfileHandler {
	return &ProfileHandler{
		memberRepo: memberRepo,
		studyRepo:  studyRepo,
		now:        timeutil.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *ProfileHandler) WithClock(now func() time.Time) *ProfileHandler {
	h.now = now
	return h
}

// Handle executes the profile query. An unregistered member gets a zero
// profile rather than an error.
func (h *ProfileHandler) Handle(ctx context.Context, q ProfileQuery) (*ProfileResult, error) {
	if q.MemberID == "" {
		return nil, errors.New("profile: member_id is required")
	}

	result := &ProfileResult{Level: member.LevelForExp(0)}

	m, err := h.memberRepo.Get(ctx, member.ID(q.MemberID))
	switch {
	case errors.Is(err, member.ErrMemberNotFound):
		// Not registered yet: everything stays at zero.
	case err != nil:
		return nil, fmt.Errorf("profile: failed to get member: %w", err)
	default:
		result.Nickname = m.Nickname
		result.Exp = m.CurrentExp
		result.Level = m.Level()
	}

	if remaining, ok := member.ExpToNext(result.Exp); ok {
		result.ExpToNext = remaining
	} else {
		result.AtMaxLevel = true
	}

	today := activity.DayOf(timeutil.ToSeoul(h.now()))
	minutes, err := h.studyRepo.GetMinutes(ctx, q.MemberID, today)
	if err != nil {
		return nil, fmt.Errorf("profile: failed to get study minutes: %w", err)
	}
	result.TodayMinutes = minutes

	return result, nil
}
