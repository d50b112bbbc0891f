package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

var profileNow = time.Date(2025, 6, 18, 21, 0, 0, 0, timeutil.SeoulTZ)

func TestProfile_RegisteredMember(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	memberRepo.seed("100", "공듀", 95)
	studyRepo := newFakeStudyRepo()
	studyRepo.seed("100", "2025-06-18", 40)

	h := NewProfileHandler(memberRepo, studyRepo).
		WithClock(func() time.Time { return profileNow })

	result, err := h.Handle(context.Background(), ProfileQuery{MemberID: "100"})
	require.NoError(t, err)

	assert.Equal(t, "공듀", result.Nickname)
	assert.Equal(t, member.Exp(95), result.Exp)
	assert.Equal(t, member.Level(3), result.Level)
	assert.Equal(t, member.Exp(55), result.ExpToNext) // 150-95
	assert.False(t, result.AtMaxLevel)
	assert.Equal(t, 40, result.TodayMinutes)
}

func TestProfile_UnknownMember(t *testing.T) {
	h := NewProfileHandler(newFakeMemberRepo(), newFakeStudyRepo()).
		WithClock(func() time.Time { return profileNow })

	result, err := h.Handle(context.Background(), ProfileQuery{MemberID: "404"})
	require.NoError(t, err)

	assert.Equal(t, member.Exp(0), result.Exp)
	assert.Equal(t, member.Level(1), result.Level)
	assert.Equal(t, 0, result.TodayMinutes)
}

func TestProfile_MaxLevel(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	memberRepo.seed("100", "공듀", 2000)

	h := NewProfileHandler(memberRepo, newFakeStudyRepo()).
		WithClock(func() time.Time { return profileNow })

	result, err := h.Handle(context.Background(), ProfileQuery{MemberID: "100"})
	require.NoError(t, err)

	assert.Equal(t, member.Level(9), result.Level)
	assert.True(t, result.AtMaxLevel)
	assert.Equal(t, member.Exp(0), result.ExpToNext)
}

func TestProfile_Validation(t *testing.T) {
	h := NewProfileHandler(newFakeMemberRepo(), newFakeStudyRepo())

	_, err := h.Handle(context.Background(), ProfileQuery{})
	assert.Error(t, err)
}
