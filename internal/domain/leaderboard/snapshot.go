package leaderboard

import (
	"time"
)

// Snapshot - зафиксированное состояние рейтинга за конкретный день.
// Снимок публикуется не более одного раза в день.
type Snapshot struct {
	// ID - уникальный идентификатор снимка (UUID).
	ID string

	// Day - день публикации в формате "2006-01-02".
	Day string

	// Entries - строки рейтинга на момент снимка.
	Entries []Entry

	// CreatedAt - момент создания снимка.
	CreatedAt time.Time
}

// NewSnapshot создаёт снимок рейтинга за указанный день.
func NewSnapshot(id, day string, board *Board, now time.Time) (*Snapshot, error) {
	if board == nil || board.IsEmpty() {
		return nil, ErrEmptySnapshot
	}

	entries := make([]Entry, len(board.Entries))
	copy(entries, board.Entries)

	return &Snapshot{
		ID:        id,
		Day:       day,
		Entries:   entries,
		CreatedAt: now,
	}, nil
}
