package activity

import (
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK CALCULATION
// ══════════════════════════════════════════════════════════════════════════════

// Streak вычисляет длину непрерывной серии дней, заканчивающейся сегодня.
// Дни сравниваются с today: серия растёт, пока очередной день отстоит
// от today ровно на текущую длину серии. Если сегодняшнего дня в списке
// нет, серия равна нулю.
func Streak(days []Day, today Day, loc *time.Location) int {
	if len(days) == 0 {
		return 0
	}

	todayTime, err := today.Time(loc)
	if err != nil {
		return 0
	}

	sorted := dedupeDescending(days)

	streak := 0
	for _, d := range sorted {
		dayTime, err := d.Time(loc)
		if err != nil {
			break
		}
		gap := int(todayTime.Sub(dayTime).Hours() / 24)
		if gap != streak {
			break
		}
		streak++
	}
	return streak
}

// dedupeDescending сортирует дни по убыванию и убирает дубликаты.
func dedupeDescending(days []Day) []Day {
	seen := make(map[Day]struct{}, len(days))
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i] > out[j]
	})
	return out
}
