package command

import (
	"context"
	"sort"
	"sync"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

// In-memory repository fakes shared by the command handler tests.

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: discard{}, Level: logger.LevelError})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[member.ID]*member.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[member.ID]*member.Member)}
}

func (r *fakeMemberRepo) UpsertIfAbsent(_ context.Context, id member.ID, nickname string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; ok {
		return false, nil
	}
	nick := nickname
	if nick == "" {
		nick = member.UnknownNickname
	}
	r.members[id] = &member.Member{ID: id, Nickname: nick}
	return true, nil
}

func (r *fakeMemberRepo) Get(_ context.Context, id member.ID) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMemberRepo) AddExperience(_ context.Context, id member.ID, delta member.Exp) (member.Exp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return 0, member.ErrMemberNotFound
	}
	m.CurrentExp += delta
	return m.CurrentExp, nil
}

func (r *fakeMemberRepo) GetExperience(_ context.Context, id member.ID) (member.Exp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return 0, member.ErrMemberNotFound
	}
	return m.CurrentExp, nil
}

func (r *fakeMemberRepo) TopByExperience(_ context.Context, limit int) ([]*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*member.Member, 0, len(r.members))
	for _, m := range r.members {
		clone := *m
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentExp != out[j].CurrentExp {
			return out[i].CurrentExp > out[j].CurrentExp
		}
		return out[i].ID < out[j].ID
	})
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMemberRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members), nil
}

type markKey struct {
	memberID string
	kind     activity.Kind
	day      activity.Day
}

type fakeActivityRepo struct {
	mu    sync.Mutex
	marks map[markKey]*activity.Mark
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{marks: make(map[markKey]*activity.Mark)}
}

func (r *fakeActivityRepo) InsertMarkIfAbsent(_ context.Context, mark *activity.Mark) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := markKey{mark.MemberID, mark.Kind, mark.Day}
	if _, ok := r.marks[key]; ok {
		return false, nil
	}
	r.marks[key] = mark
	return true, nil
}

func (r *fakeActivityRepo) HasMark(_ context.Context, memberID string, kind activity.Kind, day activity.Day) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.marks[markKey{memberID, kind, day}]
	return ok, nil
}

func (r *fakeActivityRepo) ListMarkDays(_ context.Context, memberID string, kind activity.Kind) ([]activity.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var days []activity.Day
	for key := range r.marks {
		if key.memberID == memberID && key.kind == kind {
			days = append(days, key.day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
	return days, nil
}

func (r *fakeActivityRepo) CountMarksInRange(_ context.Context, memberID string, kind activity.Kind, from, to activity.Day) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.marks {
		if key.memberID == memberID && key.kind == kind && key.day >= from && key.day <= to {
			count++
		}
	}
	return count, nil
}

type studyKey struct {
	memberID string
	day      activity.Day
}

type fakeStudyRepo struct {
	mu      sync.Mutex
	minutes map[studyKey]int
}

func newFakeStudyRepo() *fakeStudyRepo {
	return &fakeStudyRepo{minutes: make(map[studyKey]int)}
}

func (r *fakeStudyRepo) AccumulateMinutes(_ context.Context, memberID string, day activity.Day, minutes int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := studyKey{memberID, day}
	r.minutes[key] += minutes
	return r.minutes[key], nil
}

func (r *fakeStudyRepo) GetMinutes(_ context.Context, memberID string, day activity.Day) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minutes[studyKey{memberID, day}], nil
}

func (r *fakeStudyRepo) ListQualifyingDays(_ context.Context, memberID string, minMinutes int) ([]activity.Day, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var days []activity.Day
	for key, m := range r.minutes {
		if key.memberID == memberID && m >= minMinutes {
			days = append(days, key.day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })
	return days, nil
}

func (r *fakeStudyRepo) SumMinutesInRange(_ context.Context, memberID string, from, to activity.Day) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for key, m := range r.minutes {
		if key.memberID == memberID && key.day >= from && key.day <= to {
			sum += m
		}
	}
	return sum, nil
}

func (r *fakeStudyRepo) CountQualifyingDaysInRange(_ context.Context, memberID string, from, to activity.Day, minMinutes int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key, m := range r.minutes {
		if key.memberID == memberID && key.day >= from && key.day <= to && m >= minMinutes {
			count++
		}
	}
	return count, nil
}
