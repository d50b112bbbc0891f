package leaderboard

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository определяет операции для работы со снимками рейтинга.
type SnapshotRepository interface {
	// SaveSnapshot сохраняет снимок рейтинга.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetSnapshotByDay возвращает снимок за указанный день.
	// Возвращает ErrSnapshotNotFound, если снимка нет.
	GetSnapshotByDay(ctx context.Context, day string) (*Snapshot, error)

	// GetLastPublishedDay возвращает день последней публикации.
	// Если публикаций ещё не было, возвращает пустую строку без ошибки.
	GetLastPublishedDay(ctx context.Context) (string, error)

	// SetLastPublishedDay фиксирует день последней публикации.
	SetLastPublishedDay(ctx context.Context, day string) error
}

// Cache определяет операции для кеширования актуального рейтинга.
// Реализация обычно живёт в Redis и может отсутствовать.
type Cache interface {
	// GetBoard возвращает закешированный рейтинг, если он есть.
	GetBoard(ctx context.Context) (*Board, bool, error)

	// SetBoard кеширует рейтинг.
	SetBoard(ctx context.Context, board *Board) error

	// Invalidate сбрасывает закешированный рейтинг.
	Invalidate(ctx context.Context) error
}
