// Package activity содержит доменную модель ежедневной активности:
// отметки посещаемости и подъёма, учёт учебного времени, серии.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package activity

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Kind определяет тип ежедневной отметки.
type Kind string

const (
	// KindAttendance - отметка посещаемости (출석).
	KindAttendance Kind = "attendance"
	// KindWakeUp - отметка подъёма (기상).
	KindWakeUp Kind = "wakeup"
)

// IsValid проверяет, что тип отметки корректен.
func (k Kind) IsValid() bool {
	return k == KindAttendance || k == KindWakeUp
}

// String возвращает строковое представление типа.
func (k Kind) String() string {
	return string(k)
}

// Day представляет календарный день в виде ключа "2006-01-02".
// Все дни вычисляются в часовом поясе сообщества.
type Day string

// DayOf строит ключ дня из момента времени.
func DayOf(t time.Time) Day {
	return Day(t.Format("2006-01-02"))
}

// IsValid проверяет формат ключа дня.
func (d Day) IsValid() bool {
	_, err := time.Parse("2006-01-02", string(d))
	return err == nil
}

// Time возвращает полночь этого дня в указанной зоне.
func (d Day) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", string(d), loc)
}

// String возвращает строковое представление дня.
func (d Day) String() string {
	return string(d)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Mark - единичная ежедневная отметка участника.
// Для каждой пары (участник, день, тип) существует не более одной отметки.
type Mark struct {
	// MemberID - идентификатор участника.
	MemberID string

	// Kind - тип отметки.
	Kind Kind

	// Day - день, к которому относится отметка.
	Day Day

	// RecordedAt - точный момент создания отметки.
	RecordedAt time.Time

	// ExpAwarded - опыт, начисленный за эту отметку.
	ExpAwarded int
}

// StudyLog - накопленное учебное время участника за день.
type StudyLog struct {
	// MemberID - идентификатор участника.
	MemberID string

	// Day - день, к которому относится запись.
	Day Day

	// Minutes - суммарные минуты учёбы за день.
	Minutes int
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidKind - неизвестный тип отметки.
	ErrInvalidKind = errors.New("invalid mark kind")

	// ErrInvalidDay - некорректный ключ дня.
	ErrInvalidDay = errors.New("invalid day key: expected YYYY-MM-DD")

	// ErrAlreadyMarked - отметка за этот день уже существует.
	ErrAlreadyMarked = errors.New("already marked for this day")

	// ErrSessionTooShort - учебная сессия короче минимального порога.
	ErrSessionTooShort = errors.New("study session shorter than minimum duration")

	// ErrNoActiveSession - у участника нет открытой учебной сессии.
	ErrNoActiveSession = errors.New("no active study session")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewMark создаёт отметку за день, в который попадает recordedAt.
func NewMark(memberID string, kind Kind, recordedAt time.Time, expAwarded int) (*Mark, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if memberID == "" {
		return nil, errors.New("member id is required")
	}

	return &Mark{
		MemberID:   memberID,
		Kind:       kind,
		Day:        DayOf(recordedAt),
		RecordedAt: recordedAt,
		ExpAwarded: expAwarded,
	}, nil
}

// String возвращает строковое представление отметки для логирования.
func (m *Mark) String() string {
	return fmt.Sprintf("Mark{Member: %s, Kind: %s, Day: %s, Exp: %d}",
		m.MemberID, m.Kind, m.Day, m.ExpAwarded)
}
