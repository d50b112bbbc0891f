package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE TRACKER
// Tracks study-room presence sessions in memory. A session opens when the
// member joins the study channel and closes when they leave; sessions of at
// least ten minutes earn study-time credit and experience.
// ══════════════════════════════════════════════════════════════════════════════

// session holds the in-memory state of one open presence session.
type session struct {
	id          string
	memberID    string
	nickname    string
	startAt     time.Time
	externalRef string
}

// PresenceTracker handles study channel join/leave events.
type PresenceTracker struct {
	memberRepo member.Repository
	studyRepo  activity.StudyRepository
	log        *logger.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewPresenceTracker creates a new PresenceTracker.
func NewPresenceTracker(
	memberRepo member.Repository,
	studyRepo activity.StudyRepository,
	log *logger.Logger,
) *PresenceTracker {
	return &PresenceTracker{
		memberRepo: memberRepo,
		studyRepo:  studyRepo,
		log:        log,
		now:        timeutil.Now,
		sessions:   make(map[string]*session),
	}
}

// WithClock overrides the tracker's clock. Used in tests.
func (t *PresenceTracker) WithClock(now func() time.Time) *PresenceTracker {
	t.now = now
	return t
}

// JoinResult describes the outcome of a join event.
type JoinResult struct {
	// SessionID identifies the opened session.
	SessionID string

	// StartedAt is when the session opened.
	StartedAt time.Time

	// Replaced indicates an earlier open session was discarded. This
	// happens when a leave event was lost; the new join wins.
	Replaced bool
}

// Join opens a presence session for the member. A repeated join without an
// intervening leave discards the earlier session.
func (t *PresenceTracker) Join(ctx context.Context, memberID, nickname string) (*JoinResult, error) {
	if memberID == "" {
		return nil, fmt.Errorf("track_presence: member_id is required")
	}

	if _, err := t.memberRepo.UpsertIfAbsent(ctx, member.ID(memberID), nickname); err != nil {
		return nil, fmt.Errorf("track_presence: failed to register member: %w", err)
	}

	at := timeutil.ToSeoul(t.now())
	sessionID := uuid.New().String()

	t.mu.Lock()
	_, replaced := t.sessions[memberID]
	t.sessions[memberID] = &session{
		id:       sessionID,
		memberID: memberID,
		nickname: nickname,
		startAt:  at,
	}
	t.mu.Unlock()

	t.log.Info("presence session opened",
		logger.MemberID(memberID),
		logger.SessionID(sessionID),
		logger.Time("started_at", at),
		logger.Bool("replaced", replaced),
	)

	return &JoinResult{SessionID: sessionID, StartedAt: at, Replaced: replaced}, nil
}

// SetExternalRef attaches an external reference, such as the ID of the
// chat message announcing the session, to the member's open session.
// Reports whether a session was open.
func (t *PresenceTracker) SetExternalRef(memberID, ref string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	sess, ok := t.sessions[memberID]
	if !ok {
		return false
	}
	sess.externalRef = ref
	return true
}

// LeaveResult describes the outcome of a leave event.
type LeaveResult struct {
	// Credited indicates the session reached the minimum duration and
	// study time was recorded.
	Credited bool

	// Minutes is the session duration in whole minutes.
	Minutes int

	// ExpAwarded is the experience granted for the session.
	ExpAwarded int

	// TotalExp is the member's experience after the award.
	TotalExp member.Exp

	// Level is the member's level after the award.
	Level member.Level

	// DayMinutes is the member's accumulated study minutes for the day.
	DayMinutes int

	// Day is the day the session was credited to.
	Day activity.Day

	// ExternalRef is the reference attached to the session at join time,
	// empty if none was set.
	ExternalRef string
}

// Leave closes the member's presence session and credits qualifying study
// time. Returns ErrNoActiveSession if the member has no open session.
func (t *PresenceTracker) Leave(ctx context.Context, memberID string) (*LeaveResult, error) {
	if memberID == "" {
		return nil, fmt.Errorf("track_presence: member_id is required")
	}

	t.mu.Lock()
	sess, ok := t.sessions[memberID]
	if ok {
		delete(t.sessions, memberID)
	}
	t.mu.Unlock()

	if !ok {
		return nil, activity.ErrNoActiveSession
	}

	endAt := timeutil.ToSeoul(t.now())
	duration := activity.SessionDuration(sess.startAt, endAt)
	minutes := int(duration)

	result := &LeaveResult{
		Minutes:     minutes,
		Day:         activity.DayOf(endAt),
		ExternalRef: sess.externalRef,
	}

	if !activity.QualifiesForCredit(minutes) {
		t.log.Info("presence session discarded",
			logger.MemberID(memberID),
			logger.Minutes(minutes),
		)
		return result, nil
	}

	// The session is credited to the day it ended on.
	dayTotal, err := t.studyRepo.AccumulateMinutes(ctx, memberID, result.Day, minutes)
	if err != nil {
		return nil, fmt.Errorf("track_presence: failed to accumulate minutes: %w", err)
	}

	// Experience is awarded from the fractional duration; only whole
	// minutes go to the store.
	exp := activity.StudyExp(duration)
	total, err := t.memberRepo.AddExperience(ctx, member.ID(memberID), member.Exp(exp))
	if err != nil {
		return nil, fmt.Errorf("track_presence: failed to award experience: %w", err)
	}

	result.Credited = true
	result.ExpAwarded = exp
	result.TotalExp = total
	result.Level = member.LevelForExp(total)
	result.DayMinutes = dayTotal

	t.log.Info("presence session credited",
		logger.MemberID(memberID),
		logger.Minutes(minutes),
		logger.ExpAmount(exp),
		logger.Day(result.Day.String()),
	)

	return result, nil
}

// ActiveCount returns the number of currently open sessions.
func (t *PresenceTracker) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// IsActive reports whether the member has an open session.
func (t *PresenceTracker) IsActive(memberID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[memberID]
	return ok
}
