// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK DAILY COMMAND
// Records a daily attendance or wake-up confirmation. A member gets at most
// one mark of each kind per day; the award depends on the morning cutoff.
// ══════════════════════════════════════════════════════════════════════════════

// MarkDailyCommand contains the data to record a daily mark.
type MarkDailyCommand struct {
	// MemberID is the chat platform ID of the member.
	MemberID string

	// Nickname is the member's display name, used for lazy registration.
	Nickname string

	// Kind is the type of mark: attendance or wake-up.
	Kind activity.Kind

	// Timestamp is when the mark was requested (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c MarkDailyCommand) Validate() error {
	if c.MemberID == "" {
		return errors.New("mark_daily: member_id is required")
	}
	if !c.Kind.IsValid() {
		return fmt.Errorf("mark_daily: unknown mark kind: %s", c.Kind)
	}
	return nil
}

// MarkDailyResult contains the result of recording a daily mark.
type MarkDailyResult struct {
	// Created indicates whether a new mark was recorded. False means the
	// member had already marked this day.
	Created bool

	// Late indicates the mark was made at or after the morning cutoff.
	Late bool

	// Day is the calendar day the mark belongs to.
	Day activity.Day

	// ExpAwarded is the experience granted for this mark (0 on duplicate).
	ExpAwarded int

	// TotalExp is the member's experience after the award.
	TotalExp member.Exp

	// Level is the member's level after the award.
	Level member.Level
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// MarkDailyHandler handles the MarkDailyCommand.
type MarkDailyHandler struct {
	memberRepo   member.Repository
	activityRepo activity.Repository
	log          *logger.Logger
	now          func() time.Time
}

// NewMarkDailyHandler creates a new MarkDailyHandler.
func NewMarkDailyHandler(
	memberRepo member.Repository,
	activityRepo activity.Repository,
	log *logger.Logger,
) *MarkDailyHandler {
	return &MarkDailyHandler{
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		log:          log,
		now:          timeutil.Now,
	}
}

// WithClock overrides the handler's clock. Used in tests.
func (h *MarkDailyHandler) WithClock(now func() time.Time) *MarkDailyHandler {
	h.now = now
	return h
}

// Handle executes the mark daily command.
func (h *MarkDailyHandler) Handle(ctx context.Context, cmd MarkDailyCommand) (*MarkDailyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	at := cmd.Timestamp
	if at.IsZero() {
		at = h.now()
	}
	at = timeutil.ToSeoul(at)

	// Lazy registration: unknown members are created on first interaction.
	if _, err := h.memberRepo.UpsertIfAbsent(ctx, member.ID(cmd.MemberID), cmd.Nickname); err != nil {
		return nil, fmt.Errorf("mark_daily: failed to register member: %w", err)
	}

	late := timeutil.IsLateMorning(at)
	exp := activity.MarkExpAt(late)

	mark, err := activity.NewMark(cmd.MemberID, cmd.Kind, at, exp)
	if err != nil {
		return nil, fmt.Errorf("mark_daily: %w", err)
	}

	created, err := h.activityRepo.InsertMarkIfAbsent(ctx, mark)
	if err != nil {
		return nil, fmt.Errorf("mark_daily: failed to record mark: %w", err)
	}

	result := &MarkDailyResult{
		Created: created,
		Late:    late,
		Day:     mark.Day,
	}

	if !created {
		// Duplicate for the day: no award, report current totals.
		total, err := h.memberRepo.GetExperience(ctx, member.ID(cmd.MemberID))
		if err != nil {
			return nil, fmt.Errorf("mark_daily: failed to get experience: %w", err)
		}
		result.TotalExp = total
		result.Level = member.LevelForExp(total)
		return result, nil
	}

	total, err := h.memberRepo.AddExperience(ctx, member.ID(cmd.MemberID), member.Exp(exp))
	if err != nil {
		return nil, fmt.Errorf("mark_daily: failed to award experience: %w", err)
	}

	result.ExpAwarded = exp
	result.TotalExp = total
	result.Level = member.LevelForExp(total)

	h.log.Info("daily mark recorded",
		logger.MemberID(cmd.MemberID),
		logger.String("kind", cmd.Kind.String()),
		logger.Day(mark.Day.String()),
		logger.Bool("late", late),
		logger.ExpAmount(exp),
	)

	return result, nil
}
