package member

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с участниками.
type Repository interface {
	// UpsertIfAbsent регистрирует участника, если он ещё не известен боту.
	// Существующая запись не изменяется. Возвращает true, если участник
	// был создан этим вызовом.
	UpsertIfAbsent(ctx context.Context, id ID, nickname string) (bool, error)

	// Get возвращает участника по идентификатору.
	// Возвращает ErrMemberNotFound, если участник не найден.
	Get(ctx context.Context, id ID) (*Member, error)

	// AddExperience атомарно начисляет опыт и возвращает новый итог.
	// Возвращает ErrMemberNotFound, если участник не найден.
	AddExperience(ctx context.Context, id ID, delta Exp) (Exp, error)

	// GetExperience возвращает текущий опыт участника.
	// Возвращает ErrMemberNotFound, если участник не найден.
	GetExperience(ctx context.Context, id ID) (Exp, error)

	// TopByExperience возвращает участников, отсортированных по опыту
	// по убыванию. При равном опыте порядок определяется идентификатором.
	TopByExperience(ctx context.Context, limit int) ([]*Member, error)

	// Count возвращает общее количество зарегистрированных участников.
	Count(ctx context.Context) (int, error)
}

// Ranked связывает участника с его позицией в рейтинге.
type Ranked struct {
	// Rank - позиция в рейтинге, начиная с 1.
	Rank int

	// Member - участник на этой позиции.
	Member *Member
}

// RankAll присваивает позиции отсортированному списку участников.
// Участники с одинаковым опытом получают разные позиции по порядку списка.
func RankAll(members []*Member) []Ranked {
	ranked := make([]Ranked, len(members))
	for i, m := range members {
		ranked[i] = Ranked{Rank: i + 1, Member: m}
	}
	return ranked
}
