// Package leaderboard содержит доменную модель рейтинга сообщества
// и его периодических снимков.
package leaderboard

import (
	"errors"
	"time"
)

// DefaultTopSize - размер публикуемого рейтинга.
const DefaultTopSize = 10

// Entry - одна строка рейтинга.
type Entry struct {
	// Rank - позиция в рейтинге, начиная с 1.
	Rank int

	// MemberID - идентификатор участника.
	MemberID string

	// Nickname - имя участника на момент построения рейтинга.
	Nickname string

	// Exp - опыт участника на момент построения рейтинга.
	Exp int

	// Level - уровень участника на момент построения рейтинга.
	Level int
}

// Board - рейтинг, построенный из отсортированного списка участников.
type Board struct {
	// Entries - строки рейтинга в порядке убывания опыта.
	Entries []Entry

	// GeneratedAt - момент построения.
	GeneratedAt time.Time
}

// IsEmpty возвращает true, если в рейтинге нет ни одной строки.
func (b *Board) IsEmpty() bool {
	return len(b.Entries) == 0
}

// Top возвращает первые n строк рейтинга.
func (b *Board) Top(n int) []Entry {
	if n >= len(b.Entries) {
		return b.Entries
	}
	return b.Entries[:n]
}

var (
	// ErrSnapshotNotFound - снимок рейтинга не найден.
	ErrSnapshotNotFound = errors.New("leaderboard snapshot not found")

	// ErrEmptySnapshot - попытка сохранить пустой снимок.
	ErrEmptySnapshot = errors.New("leaderboard snapshot has no entries")
)
