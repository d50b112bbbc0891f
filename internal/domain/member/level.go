package member

// Level представляет уровень участника, вычисляемый из опыта.
type Level int

// levelThresholds задаёт минимальный опыт для каждого уровня.
// Индекс массива равен уровню минус один.
var levelThresholds = []Exp{0, 30, 80, 150, 250, 400, 600, 900, 1300}

// MaxLevel - максимальный достижимый уровень.
var MaxLevel = Level(len(levelThresholds))

// LevelForExp вычисляет уровень по количеству опыта.
// Уровни начинаются с 1; отрицательный опыт даёт уровень 1.
func LevelForExp(exp Exp) Level {
	level := Level(1)
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if exp >= levelThresholds[i] {
			level = Level(i + 1)
			break
		}
	}
	return level
}

// ThresholdFor возвращает минимальный опыт для указанного уровня.
// Для уровней вне диапазона возвращает 0 и false.
func ThresholdFor(level Level) (Exp, bool) {
	if level < 1 || level > MaxLevel {
		return 0, false
	}
	return levelThresholds[level-1], true
}

// NextThreshold возвращает опыт, необходимый для следующего уровня.
// Если участник на максимальном уровне, возвращает false.
func NextThreshold(exp Exp) (Exp, bool) {
	level := LevelForExp(exp)
	if level >= MaxLevel {
		return 0, false
	}
	return levelThresholds[level], true
}

// ExpToNext возвращает, сколько опыта не хватает до следующего уровня.
// На максимальном уровне возвращает 0 и false.
func ExpToNext(exp Exp) (Exp, bool) {
	next, ok := NextThreshold(exp)
	if !ok {
		return 0, false
	}
	return next - exp, true
}

// Thresholds возвращает копию таблицы порогов уровней.
func Thresholds() []Exp {
	out := make([]Exp, len(levelThresholds))
	copy(out, levelThresholds)
	return out
}
