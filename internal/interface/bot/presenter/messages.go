// Package presenter formats data for chat display.
// Presenters convert application results into the Korean messages the
// community sees; no business logic lives here.
package presenter

import (
	"fmt"
	"strings"

	"github.com/gongdew-hub/study-community-bot/internal/application/command"
	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/pkg/timeutil"
)

// ─────────────────────────────────────────────────────────────────────────────
// DAILY MARKS
// ─────────────────────────────────────────────────────────────────────────────

// MarkResult formats the reply to 출석 and 기상.
func MarkResult(nickname string, kind activity.Kind, res *command.MarkDailyResult) string {
	if kind == activity.KindAttendance {
		return attendanceResult(nickname, res)
	}
	return wakeUpResult(nickname, res)
}

func attendanceResult(nickname string, res *command.MarkDailyResult) string {
	if !res.Created {
		return fmt.Sprintf("👑 출석 실패\n%s 공듀님, 오늘은 이미 출석하셨어요! 🐣", nickname)
	}

	var sb strings.Builder
	sb.WriteString("👑 출석 완료\n")
	if res.Late {
		fmt.Fprintf(&sb, "%s 공듀님, 지각핑! 늦은만큼 더 달려보자 공듀🔥 (+%d Exp)\n", nickname, res.ExpAwarded)
	} else {
		fmt.Fprintf(&sb, "%s 공듀님, 출석 완료! 오늘도 힘내보자 공듀❤️‍🔥 (+%d Exp)\n", nickname, res.ExpAwarded)
	}
	fmt.Fprintf(&sb, "📅 날짜: %s\n🎁 현재 레벨: Lv.%d", shortDate(res.Day), res.Level)
	return sb.String()
}

func wakeUpResult(nickname string, res *command.MarkDailyResult) string {
	if !res.Created {
		return fmt.Sprintf("☀️ 기상 실패\n%s 공듀님, 오늘은 이미 기상 인증했어요! ☀️", nickname)
	}

	var sb strings.Builder
	sb.WriteString("☀️ 기상 인증 완료\n")
	if res.Late {
		fmt.Fprintf(&sb, "%s 공듀님, 늦잠 잤지만 인증 완료! ☁️ (+%d Exp)\n", nickname, res.ExpAwarded)
	} else {
		fmt.Fprintf(&sb, "%s 공듀님, 눈부신 아침이에요! 🌞 (+%d Exp)\n", nickname, res.ExpAwarded)
	}
	fmt.Fprintf(&sb, "📅 날짜: %s\n🎁 현재 레벨: Lv.%d", shortDate(res.Day), res.Level)
	return sb.String()
}

// shortDate renders a day key in the compact YY/MM/DD form the check-in
// replies use.
func shortDate(day activity.Day) string {
	t, err := timeutil.ParseDayKey(string(day))
	if err != nil {
		return string(day)
	}
	return t.Format(timeutil.FormatShortKoreanDate)
}

// ─────────────────────────────────────────────────────────────────────────────
// PRESENCE SESSIONS
// ─────────────────────────────────────────────────────────────────────────────

// SessionStart formats the message posted when a member enters a study channel.
func SessionStart(nickname string) string {
	return fmt.Sprintf("%s 공듀님이 도서관에 나타났어요!\n오늘도 집중모드 발동✨", nickname)
}

// SessionEnd formats the message posted when a member leaves a study channel.
func SessionEnd(nickname string, res *command.LeaveResult) string {
	if !res.Credited {
		return fmt.Sprintf("⏰ 집중 실패! (10분 미만)\n%s 공듀님, 10분 미만은 집중 인정 불가에요!\n다시 도전해볼까요?", nickname)
	}

	var sb strings.Builder
	sb.WriteString("✨ 집중 완료! 공듀 퇴장 ✨\n")
	fmt.Fprintf(&sb, "%s 공듀님 오늘도 대단해요!\n공부박스 도착🎁\n", nickname)
	fmt.Fprintf(&sb, "⏳ 공부한 시간: %s\n", timeutil.FormatMinutes(res.Minutes))
	fmt.Fprintf(&sb, "🌹 획득 경험치: %d Exp\n", res.ExpAwarded)
	fmt.Fprintf(&sb, "👑 오늘 누적: %d분\n", res.DayMinutes)
	fmt.Fprintf(&sb, "🏅 현재 레벨: Lv.%d", res.Level)
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// PROFILE & STATS
// ─────────────────────────────────────────────────────────────────────────────

// Profile formats the reply to 내정보.
func Profile(res *query.ProfileResult) string {
	var sb strings.Builder
	sb.WriteString("✨ 내 정보\n")
	fmt.Fprintf(&sb, "%s 공듀님의 현재 레벨\n", res.Nickname)
	fmt.Fprintf(&sb, "👑 레벨: Lv.%d (%d Exp)\n", res.Level, res.Exp)
	if res.AtMaxLevel {
		sb.WriteString("🌟 최고 레벨 달성!\n")
	} else {
		fmt.Fprintf(&sb, "🎯 다음 레벨까지: %d Exp\n", res.ExpToNext)
	}
	fmt.Fprintf(&sb, "📚 오늘 공부시간: %d분", res.TodayMinutes)
	return sb.String()
}

// WindowStats formats the reply to 주통계 and 월통계.
func WindowStats(res *query.WindowStatsResult) string {
	title := "🗓️ 이번주 통계"
	if res.Window == query.WindowMonth {
		title = "📅 이번달 통계"
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "출석일수: %d일\n", res.AttendanceDays)
	fmt.Fprintf(&sb, "기상일수: %d일\n", res.WakeUpDays)
	fmt.Fprintf(&sb, "공부일수: %d일\n", res.StudyDays)
	fmt.Fprintf(&sb, "총 공부시간: %d분\n", res.StudyMinutes)
	fmt.Fprintf(&sb, "획득 Exp: %dExp", res.TotalExp)
	return sb.String()
}

// Streak formats the reply to 연속출석, 연속기상 and 연속공부.
func Streak(nickname string, res *query.StreakResult) string {
	switch res.Kind {
	case query.StreakWakeUp:
		return fmt.Sprintf("⏰ 연속 기상일수\n%s 공듀님의 연속 기상일수는 %d일이에요!", nickname, res.Days)
	case query.StreakStudy:
		return fmt.Sprintf("📚 연속 공부일수\n%s 공듀님의 연속 공부일수는 %d일이에요!", nickname, res.Days)
	default:
		return fmt.Sprintf("🌱 연속 출석일수\n%s 공듀님의 연속 출석일수는 %d일이에요!", nickname, res.Days)
	}
}

// MarkHistory formats the reply to 출석기록.
func MarkHistory(nickname string, res *query.MarkHistoryResult) string {
	if len(res.Days) == 0 {
		return fmt.Sprintf("📒 출석 기록\n%s 공듀님은 아직 출석 기록이 없어!🏫", nickname)
	}

	days := make([]string, len(res.Days))
	for i, d := range res.Days {
		days[i] = string(d)
	}
	return fmt.Sprintf("📒 출석 기록\n%s 공듀님의 출석 기록:\n%s", nickname, strings.Join(days, "\n"))
}

// ─────────────────────────────────────────────────────────────────────────────
// RANKING
// ─────────────────────────────────────────────────────────────────────────────

// Ranking formats the live leaderboard for 랭킹.
func Ranking(board *leaderboard.Board) string {
	return rankingBody("🏆 경험치 랭킹 TOP 10", board.Entries)
}

// RankingSnapshot formats the daily published snapshot.
func RankingSnapshot(snap *leaderboard.Snapshot) string {
	day, err := timeutil.ParseDayKey(snap.Day)
	title := "🏆 경험치 랭킹 TOP 10"
	if err == nil {
		title = fmt.Sprintf("%s (%s)", title, timeutil.FormatKorean(day))
	}
	return rankingBody(title, snap.Entries)
}

func rankingBody(title string, entries []leaderboard.Entry) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")

	if len(entries) == 0 {
		sb.WriteString("아직 아무도 경험치를 쌓지 않았어요! 🌱")
		return sb.String()
	}

	for _, e := range entries {
		crown := ""
		if e.Rank == 1 {
			crown = "👑 "
		}
		fmt.Fprintf(&sb, "%d위 %s%s - Lv.%d / %d Exp\n", e.Rank, crown, e.Nickname, e.Level, e.Exp)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ─────────────────────────────────────────────────────────────────────────────
// HELP
// ─────────────────────────────────────────────────────────────────────────────

// Help formats the reply to 명령어.
func Help() string {
	return strings.Join([]string{
		"💡 사용 가능한 명령어 모음",
		"각 채널에서 명령어를 입력해보세요!",
		"",
		"👑 랭킹",
		"`!랭킹` - 전체 경험치 순위 TOP 10",
		"",
		"🍀 출석",
		"`!출석` - 오늘 출석 체크",
		"`!출석기록` - 내 출석 날짜 전체 확인",
		"",
		"🌅 기상",
		"`!기상` 또는 `!굿모닝` - 오늘 기상 인증",
		"",
		"🏠 내정보",
		"`!내정보` - 내 레벨 및 프로필",
		"`!주통계` `!월통계` - 기간별 활동 통계",
		"`!연속출석` `!연속기상` `!연속공부` - 연속 기록",
	}, "\n")
}
