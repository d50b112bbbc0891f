package bot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/member"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/external/chat"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

// ─────────────────────────────────────────────────────────────────────────────
// Sender fake
// ─────────────────────────────────────────────────────────────────────────────

type sentMessage struct {
	channelID string
	content   string
	edited    string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	nextID int
}

func (f *fakeSender) SendMessage(_ context.Context, channelID, content string) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &chat.Message{ID: id, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) EditMessage(_ context.Context, channelID, messageID, content string) (*chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content, edited: messageID})
	return &chat.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// ─────────────────────────────────────────────────────────────────────────────
// Repository fakes
// ─────────────────────────────────────────────────────────────────────────────

type memberState struct {
	nickname string
	exp      member.Exp
	joinedAt time.Time
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[member.ID]*memberState
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[member.ID]*memberState)}
}

func (f *fakeMemberRepo) UpsertIfAbsent(_ context.Context, id member.ID, nickname string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[id]; ok {
		return false, nil
	}
	if nickname == "" {
		nickname = member.UnknownNickname
	}
	f.members[id] = &memberState{nickname: nickname}
	return true, nil
}

func (f *fakeMemberRepo) Get(_ context.Context, id member.ID) (*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	m, err := member.NewMember(id, st.nickname, st.joinedAt)
	if err != nil {
		return nil, err
	}
	m.CurrentExp = st.exp
	return m, nil
}

func (f *fakeMemberRepo) AddExperience(_ context.Context, id member.ID, delta member.Exp) (member.Exp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.members[id]
	if !ok {
		return 0, member.ErrMemberNotFound
	}
	st.exp += delta
	return st.exp, nil
}

func (f *fakeMemberRepo) GetExperience(_ context.Context, id member.ID) (member.Exp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.members[id]
	if !ok {
		return 0, member.ErrMemberNotFound
	}
	return st.exp, nil
}

func (f *fakeMemberRepo) TopByExperience(_ context.Context, limit int) ([]*member.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*member.Member, 0, len(f.members))
	for id, st := range f.members {
		m, err := member.NewMember(id, st.nickname, st.joinedAt)
		if err != nil {
			return nil, err
		}
		m.CurrentExp = st.exp
		out = append(out, m)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CurrentExp > out[i].CurrentExp ||
				(out[j].CurrentExp == out[i].CurrentExp && out[j].ID < out[i].ID) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMemberRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members), nil
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

func (f *fakeActivityRepo) InsertMarkIfAbsent(_ context.Context, mark *activity.Mark) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := markKey{memberID: mark.MemberID, kind: mark.Kind, day: mark.Day}
	if _, ok := f.marks[key]; ok {
		return false, nil
	}
	f.marks[key] = mark
	return true, nil
}

func (f *fakeActivityRepo) HasMark(_ context.Context, memberID string, kind activity.Kind, day activity.Day) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.marks[markKey{memberID: memberID, kind: kind, day: day}]
	return ok, nil
}

func (f *fakeActivityRepo) ListMarkDays(_ context.Context, memberID string, kind activity.Kind) ([]activity.Day, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var days []activity.Day
	for key := range f.marks {
		if key.memberID == memberID && key.kind == kind {
			days = append(days, key.day)
		}
	}
	for i := 0; i < len(days); i++ {
		for j := i + 1; j < len(days); j++ {
			if days[j] > days[i] {
				days[i], days[j] = days[j], days[i]
			}
		}
	}
	return days, nil
}

func (f *fakeActivityRepo) CountMarksInRange(_ context.Context, memberID string, kind activity.Kind, from, to activity.Day) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key := range f.marks {
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

func (f *fakeStudyRepo) AccumulateMinutes(_ context.Context, memberID string, day activity.Day, minutes int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := studyKey{memberID: memberID, day: day}
	f.minutes[key] += minutes
	return f.minutes[key], nil
}

func (f *fakeStudyRepo) GetMinutes(_ context.Context, memberID string, day activity.Day) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minutes[studyKey{memberID: memberID, day: day}], nil
}

func (f *fakeStudyRepo) ListQualifyingDays(_ context.Context, memberID string, minMinutes int) ([]activity.Day, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var days []activity.Day
	for key, mins := range f.minutes {
		if key.memberID == memberID && mins >= minMinutes {
			days = append(days, key.day)
		}
	}
	for i := 0; i < len(days); i++ {
		for j := i + 1; j < len(days); j++ {
			if days[j] > days[i] {
				days[i], days[j] = days[j], days[i]
			}
		}
	}
	return days, nil
}

func (f *fakeStudyRepo) SumMinutesInRange(_ context.Context, memberID string, from, to activity.Day) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for key, mins := range f.minutes {
		if key.memberID == memberID && key.day >= from && key.day <= to {
			total += mins
		}
	}
	return total, nil
}

func (f *fakeStudyRepo) CountQualifyingDaysInRange(_ context.Context, memberID string, from, to activity.Day, minMinutes int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for key, mins := range f.minutes {
		if key.memberID == memberID && key.day >= from && key.day <= to && mins >= minMinutes {
			count++
		}
	}
	return count, nil
}
