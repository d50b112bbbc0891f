package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK QUERY
// Computes the length of a member's unbroken daily run ending today.
// ══════════════════════════════════════════════════════════════════════════════

// StreakKind identifies which daily activity the streak is computed over.
type StreakKind string

const (
	// StreakAttendance - consecutive attendance days.
	StreakAttendance StreakKind = "attendance"
	// StreakWakeUp - consecutive wake-up days.
	StreakWakeUp StreakKind = "wakeup"
	// StreakStudy - consecutive days with qualifying study time.
	StreakStudy StreakKind = "study"
)

// IsValid checks the streak kind value.
func (k StreakKind) IsValid() bool {
	return k == StreakAttendance || k == StreakWakeUp || k == StreakStudy
}

// StreakQuery requests a member's streak.
type StreakQuery struct {
	// MemberID is the chat platform ID of the member.
	MemberID string

	// Kind selects the activity the streak is computed over.
	Kind StreakKind
}

// StreakResult contains the computed streak.
type StreakResult struct {
	// Kind is the requested streak kind.
	Kind StreakKind

	// Days is the streak length. Zero when today has no activity.
	Days int
}

// StreakHandler handles the StreakQuery.
type StreakHandler struct {
	activityRepo activity.Repository
	studyRepo    activity.StudyRepository
	now          func() time.Time
}

// NewStreakHandler creates a new StreakHandler.
func NewStreakHandler(activityRepo activity.Repository, studyRepo activity.StudyRepository) *StreakHandler {
	return &StreakHandler{
		activityRepo: activityRepo,
		studyRepo:    studyRepo,
		now:          timeutil.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *StreakHandler) WithClock(now func() time.Time) *StreakHandler {
	h.now = now
	return h
}

// Handle executes the streak query.
func (h *StreakHandler) Handle(ctx context.Context, q StreakQuery) (*StreakResult, error) {
	if q.MemberID == "" {
		return nil, errors.New("streaks: member_id is required")
	}
	if !q.Kind.IsValid() {
		return nil, fmt.Errorf("streaks: unknown streak kind: %s", q.Kind)
	}

	var (
		days []activity.Day
		err  error
	)

	switch q.Kind {
	case StreakAttendance:
		days, err = h.activityRepo.ListMarkDays(ctx, q.MemberID, activity.KindAttendance)
	case StreakWakeUp:
		days, err = h.activityRepo.ListMarkDays(ctx, q.MemberID, activity.KindWakeUp)
	case StreakStudy:
		days, err = h.studyRepo.ListQualifyingDays(ctx, q.MemberID, activity.MinStudyMinutes)
	}
	if err != nil {
		return nil, fmt.Errorf("streaks: failed to list days: %w", err)
	}

	today := activity.DayOf(timeutil.ToSeoul(h.now()))
	streak := activity.Streak(days, today, timeutil.SeoulTZ)

	return &StreakResult{Kind: q.Kind, Days: streak}, nil
}
