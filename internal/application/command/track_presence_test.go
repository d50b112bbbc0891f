package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// fixedClock steps through a sequence of instants.
type fixedClock struct {
	at time.Time
}

func (c *fixedClock) now() time.Time { return c.at }

func (c *fixedClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newPresenceFixture() (*PresenceTracker, *fakeMemberRepo, *fakeStudyRepo, *fixedClock) {
	memberRepo := newFakeMemberRepo()
	studyRepo := newFakeStudyRepo()
	clock := &fixedClock{at: time.Date(2025, 6, 2, 14, 0, 0, 0, timeutil.SeoulTZ)}
	tracker := NewPresenceTracker(memberRepo, studyRepo, testLogger()).WithClock(clock.now)
	return tracker, memberRepo, studyRepo, clock
}

func TestPresence_CreditedSession(t *testing.T) {
	tracker, memberRepo, studyRepo, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)

	clock.advance(45 * time.Minute)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)

	assert.True(t, result.Credited)
	assert.Equal(t, 45, result.Minutes)
	assert.Equal(t, 15, result.ExpAwarded) // 45/30*10
	assert.Equal(t, member.Exp(15), result.TotalExp)
	assert.Equal(t, 45, result.DayMinutes)
	assert.Equal(t, activity.Day("2025-06-02"), result.Day)

	minutes, err := studyRepo.GetMinutes(ctx, "100", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 45, minutes)

	exp, err := memberRepo.GetExperience(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, member.Exp(15), exp)
}

func TestPresence_FractionalMinutesCountTowardExp(t *testing.T) {
	tracker, _, studyRepo, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)

	// 13.9 minutes: the award rounds the real duration (13.9/30*10 = 4.63
	// -> 5) while the store keeps whole minutes only.
	clock.advance(13*time.Minute + 54*time.Second)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)

	assert.True(t, result.Credited)
	assert.Equal(t, 13, result.Minutes)
	assert.Equal(t, 5, result.ExpAwarded)

	minutes, err := studyRepo.GetMinutes(ctx, "100", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 13, minutes)
}

func TestPresence_ShortSessionDiscarded(t *testing.T) {
	tracker, memberRepo, studyRepo, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)

	clock.advance(9*time.Minute + 59*time.Second)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)

	assert.False(t, result.Credited)
	assert.Equal(t, 9, result.Minutes)
	assert.Equal(t, 0, result.ExpAwarded)

	minutes, err := studyRepo.GetMinutes(ctx, "100", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	exp, err := memberRepo.GetExperience(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, member.Exp(0), exp)
}

func TestPresence_RejoinOverwritesSession(t *testing.T) {
	tracker, _, _, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)

	clock.advance(2 * time.Hour)

	// Second join without a leave discards the first session.
	join, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)
	assert.True(t, join.Replaced)

	clock.advance(30 * time.Minute)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 30, result.Minutes)
	assert.Equal(t, 10, result.ExpAwarded)
}

func TestPresence_LeaveWithoutJoin(t *testing.T) {
	tracker, _, _, _ := newPresenceFixture()

	_, err := tracker.Leave(context.Background(), "100")
	assert.ErrorIs(t, err, activity.ErrNoActiveSession)
}

func TestPresence_MinutesAccumulateAcrossSessions(t *testing.T) {
	tracker, _, studyRepo, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)
	clock.advance(20 * time.Minute)
	_, err = tracker.Leave(ctx, "100")
	require.NoError(t, err)

	_, err = tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)
	clock.advance(25 * time.Minute)
	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)

	assert.Equal(t, 45, result.DayMinutes)

	minutes, err := studyRepo.GetMinutes(ctx, "100", "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, 45, minutes)
}

func TestPresence_ExternalRefCarriedToLeave(t *testing.T) {
	tracker, _, _, clock := newPresenceFixture()
	ctx := context.Background()

	join, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)
	assert.NotEmpty(t, join.SessionID)

	assert.True(t, tracker.SetExternalRef("100", "msg-77"))
	assert.False(t, tracker.SetExternalRef("200", "msg-78"))

	clock.advance(30 * time.Minute)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "msg-77", result.ExternalRef)
}

func TestPresence_RejoinDropsExternalRef(t *testing.T) {
	tracker, _, _, clock := newPresenceFixture()
	ctx := context.Background()

	_, err := tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)
	require.True(t, tracker.SetExternalRef("100", "msg-1"))

	_, err = tracker.Join(ctx, "100", "공듀")
	require.NoError(t, err)

	clock.advance(30 * time.Minute)

	result, err := tracker.Leave(ctx, "100")
	require.NoError(t, err)
	assert.Empty(t, result.ExternalRef)
}

func TestPresence_ActiveTracking(t *testing.T) {
	tracker, _, _, clock := newPresenceFixture()
	ctx := context.Background()

	assert.False(t, tracker.IsActive("100"))
	assert.Equal(t, 0, tracker.ActiveCount())

	_, err := tracker.Join(ctx, "100", "a")
	require.NoError(t, err)
	_, err = tracker.Join(ctx, "200", "b")
	require.NoError(t, err)

	assert.True(t, tracker.IsActive("100"))
	assert.Equal(t, 2, tracker.ActiveCount())

	clock.advance(15 * time.Minute)
	_, err = tracker.Leave(ctx, "100")
	require.NoError(t, err)

	assert.False(t, tracker.IsActive("100"))
	assert.Equal(t, 1, tracker.ActiveCount())
}
