package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var seoul = time.FixedZone("Asia/Seoul", 9*60*60)

func TestStreak_ConsecutiveDays(t *testing.T) {
	days := []Day{"2025-06-01", "2025-06-02", "2025-06-03"}
	assert.Equal(t, 3, Streak(days, "2025-06-03", seoul))
}

func TestStreak_NoMarkToday(t *testing.T) {
	// Streak counts only runs that include today
	days := []Day{"2025-06-01", "2025-06-02"}
	assert.Equal(t, 0, Streak(days, "2025-06-03", seoul))
}

func TestStreak_GapBreaksRun(t *testing.T) {
	days := []Day{"2025-05-30", "2025-06-02", "2025-06-03"}
	assert.Equal(t, 2, Streak(days, "2025-06-03", seoul))
}

func TestStreak_SingleDay(t *testing.T) {
	assert.Equal(t, 1, Streak([]Day{"2025-06-03"}, "2025-06-03", seoul))
}

func TestStreak_Empty(t *testing.T) {
	assert.Equal(t, 0, Streak(nil, "2025-06-03", seoul))
}

func TestStreak_DuplicatesIgnored(t *testing.T) {
	days := []Day{"2025-06-03", "2025-06-02", "2025-06-02", "2025-06-01"}
	assert.Equal(t, 3, Streak(days, "2025-06-03", seoul))
}

func TestStreak_UnsortedInput(t *testing.T) {
	days := []Day{"2025-06-01", "2025-06-03", "2025-06-02"}
	assert.Equal(t, 3, Streak(days, "2025-06-03", seoul))
}

func TestStreak_AcrossMonthBoundary(t *testing.T) {
	days := []Day{"2025-05-31", "2025-06-01"}
	assert.Equal(t, 2, Streak(days, "2025-06-01", seoul))
}
