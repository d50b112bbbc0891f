package activity

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с ежедневными отметками.
type Repository interface {
	// InsertMarkIfAbsent сохраняет отметку, если за этот день её ещё нет.
	// Возвращает true, если отметка была создана этим вызовом,
	// и false, если участник уже отмечался в этот день.
	InsertMarkIfAbsent(ctx context.Context, mark *Mark) (bool, error)

	// HasMark проверяет наличие отметки за указанный день.
	HasMark(ctx context.Context, memberID string, kind Kind, day Day) (bool, error)

	// ListMarkDays возвращает все дни с отметками указанного типа
	// в порядке убывания.
	ListMarkDays(ctx context.Context, memberID string, kind Kind) ([]Day, error)

	// CountMarksInRange возвращает количество отметок указанного типа
	// в диапазоне дней [from, to] включительно.
	CountMarksInRange(ctx context.Context, memberID string, kind Kind, from, to Day) (int, error)
}

// StudyRepository определяет операции для учёта учебного времени.
type StudyRepository interface {
	// AccumulateMinutes прибавляет минуты к дневному итогу участника.
	// Возвращает новый суммарный итог за день.
	AccumulateMinutes(ctx context.Context, memberID string, day Day, minutes int) (int, error)

	// GetMinutes возвращает накопленные минуты за указанный день.
	// Если записи нет, возвращает 0 без ошибки.
	GetMinutes(ctx context.Context, memberID string, day Day) (int, error)

	// ListQualifyingDays возвращает дни с учебным временем не ниже
	// minMinutes в порядке убывания.
	ListQualifyingDays(ctx context.Context, memberID string, minMinutes int) ([]Day, error)

	// SumMinutesInRange возвращает сумму минут в диапазоне дней
	// [from, to] включительно.
	SumMinutesInRange(ctx context.Context, memberID string, from, to Day) (int, error)

	// CountQualifyingDaysInRange возвращает количество дней с учебным
	// временем не ниже minMinutes в диапазоне [from, to] включительно.
	CountQualifyingDaysInRange(ctx context.Context, memberID string, from, to Day, minMinutes int) (int, error)
}
