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
// WINDOW STATS QUERY
// Aggregates a member's activity over the current week or month:
// attendance days, wake-up days, qualifying study days, and total minutes.
// ══════════════════════════════════════════════════════════════════════════════

// Window identifies the aggregation period.
type Window string

const (
	// WindowWeek covers Monday through Sunday of the current week.
	WindowWeek Window = "week"
	// WindowMonth covers the first through the last day of the current month.
	WindowMonth Window = "month"
)

// IsValid checks the window value.
func (w Window) IsValid() bool {
	return w == WindowWeek || w == WindowMonth
}

// WindowStatsQuery requests aggregated stats for a member.
type WindowStatsQuery struct {
	// MemberID is the chat platform ID of the member.
	MemberID string

	// Window selects the aggregation period.
	Window Window
}

// WindowStatsResult contains aggregated activity for the window.
type WindowStatsResult struct {
	// Window is the requested period.
	Window Window

	// From is the first day of the window.
	From activity.Day

	// To is the last day of the window.
	To activity.Day

	// AttendanceDays is the number of days with an attendance mark.
	AttendanceDays int

	// WakeUpDays is the number of days with a wake-up mark.
	WakeUpDays int

	// StudyDays is the number of days with qualifying study time.
	StudyDays int

	// StudyMinutes is the total study time in the window.
	StudyMinutes int

	// TotalExp is the member's lifetime experience.
	TotalExp member.Exp
}

// WindowStatsHandler handles the WindowStatsQuery.
type WindowStatsHandler struct {
	memberRepo   member.Repository
	activityRepo activity.Repository
	studyRepo    activity.StudyRepository
	now          func() time.Time
}

// NewWindowStatsHandler creates a new WindowStatsHandler.
func NewWindowStatsHandler(
	memberRepo member.Repository,
	activityRepo activity.Repository,
	studyRepo activity.StudyRepository,
) *WindowStatsHandler {
	return &WindowStatsHandler{
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		studyRepo:    studyRepo,
		now:          timeutil.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *WindowStatsHandler) WithClock(now func() time.Time) *WindowStatsHandler {
	h.now = now
	return h
}

// Handle executes the window stats query.
func (h *WindowStatsHandler) Handle(ctx context.Context, q WindowStatsQuery) (*WindowStatsResult, error) {
	if q.MemberID == "" {
		return nil, errors.New("window_stats: member_id is required")
	}
	if !q.Window.IsValid() {
		return nil, fmt.Errorf("window_stats: unknown window: %s", q.Window)
	}

	now := timeutil.ToSeoul(h.now())

	var from, to time.Time
	switch q.Window {
	case WindowWeek:
		from = timeutil.StartOfWeek(now)
		to = timeutil.EndOfWeek(now)
	case WindowMonth:
		from = timeutil.StartOfMonth(now)
		to = timeutil.EndOfMonth(now)
	}

	result := &WindowStatsResult{
		Window: q.Window,
		From:   activity.DayOf(from),
		To:     activity.DayOf(to),
	}

	attendance, err := h.activityRepo.CountMarksInRange(ctx, q.MemberID, activity.KindAttendance, result.From, result.To)
	if err != nil {
		return nil, fmt.Errorf("window_stats: failed to count attendance: %w", err)
	}
	result.AttendanceDays = attendance

	wakeup, err := h.activityRepo.CountMarksInRange(ctx, q.MemberID, activity.KindWakeUp, result.From, result.To)
	if err != nil {
		return nil, fmt.Errorf("window_stats: failed to count wake-ups: %w", err)
	}
	result.WakeUpDays = wakeup

	studyDays, err := h.studyRepo.CountQualifyingDaysInRange(ctx, q.MemberID, result.From, result.To, activity.MinStudyMinutes)
	if err != nil {
		return nil, fmt.Errorf("window_stats: failed to count study days: %w", err)
	}
	result.StudyDays = studyDays

	minutes, err := h.studyRepo.SumMinutesInRange(ctx, q.MemberID, result.From, result.To)
	if err != nil {
		return nil, fmt.Errorf("window_stats: failed to sum minutes: %w", err)
	}
	result.StudyMinutes = minutes

	exp, err := h.memberRepo.GetExperience(ctx, member.ID(q.MemberID))
	if err != nil && !errors.Is(err, member.ErrMemberNotFound) {
		return nil, fmt.Errorf("window_stats: failed to get experience: %w", err)
	}
	result.TotalExp = exp

	return result, nil
}
