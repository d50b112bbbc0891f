package activity

import (
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD POLICY
// Правила начисления опыта за ежедневные отметки и учебные сессии.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MarkExpOnTime - опыт за отметку до утреннего рубежа.
	MarkExpOnTime = 5

	// MarkExpLate - опыт за отметку после утреннего рубежа.
	MarkExpLate = 3

	// MinStudyMinutes - минимальная длительность учебной сессии.
	// Более короткие сессии не засчитываются.
	MinStudyMinutes = 10

	// StudyExpPerBlock - опыт за один учебный блок.
	StudyExpPerBlock = 10

	// StudyBlockMinutes - длительность учебного блока в минутах.
	StudyBlockMinutes = 30
)

// MarkExpAt возвращает опыт за отметку в зависимости от того,
// сделана ли она после утреннего рубежа.
func MarkExpAt(late bool) int {
	if late {
		return MarkExpLate
	}
	return MarkExpOnTime
}

// StudyExp вычисляет опыт за учебную сессию указанной длительности.
// Принимает дробные минуты: опыт округляется от фактической длительности,
// а не от усечённого значения для хранения.
// Формула: округлённое (минуты / 30) * 10.
func StudyExp(minutes float64) int {
	if minutes <= 0 {
		return 0
	}
	return int(math.Round(minutes / StudyBlockMinutes * StudyExpPerBlock))
}

// SessionDuration возвращает длительность сессии в дробных минутах.
func SessionDuration(start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}

// SessionMinutes возвращает длительность сессии в целых минутах.
// Неполные минуты отбрасываются; используется для хранения и отображения.
func SessionMinutes(start, end time.Time) int {
	return int(SessionDuration(start, end))
}

// QualifiesForCredit проверяет, достаточно ли длинна сессия для зачёта.
func QualifiesForCredit(minutes int) bool {
	return minutes >= MinStudyMinutes
}
