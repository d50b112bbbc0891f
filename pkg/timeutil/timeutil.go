// Package timeutil provides timezone utilities for the Seoul timezone (UTC+9).
// Every day boundary in the community (check-ins, wake-ups, study credit,
// ranking snapshots) is anchored to this timezone, never to server-local time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// SeoulTZ is the Seoul timezone (UTC+9, no DST).
// South Korea has not observed DST since 1988, so this is constant year-round.
var SeoulTZ = time.FixedZone("Asia/Seoul", 9*60*60)

// Now returns the current time in Seoul timezone.
func Now() time.Time {
	return time.Now().In(SeoulTZ)
}

// ToSeoul converts a time to Seoul timezone.
func ToSeoul(t time.Time) time.Time {
	return t.In(SeoulTZ)
}

// Date creates a time in Seoul timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, SeoulTZ)
}

// DateTime creates a time in Seoul timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, SeoulTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Seoul timezone.
func StartOfDay(t time.Time) time.Time {
	seoul := ToSeoul(t)
	return time.Date(seoul.Year(), seoul.Month(), seoul.Day(), 0, 0, 0, 0, SeoulTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Seoul timezone.
func EndOfDay(t time.Time) time.Time {
	seoul := ToSeoul(t)
	return time.Date(seoul.Year(), seoul.Month(), seoul.Day(), 23, 59, 59, 999999999, SeoulTZ)
}

// StartOfWeek returns the start of the week (Monday 00:00:00) in Seoul timezone.
func StartOfWeek(t time.Time) time.Time {
	seoul := ToSeoul(t)
	weekday := int(seoul.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	daysToSubtract := weekday - 1 // Monday = 1
	return StartOfDay(seoul.AddDate(0, 0, -daysToSubtract))
}

// EndOfWeek returns the end of the week (Sunday 23:59:59) in Seoul timezone.
func EndOfWeek(t time.Time) time.Time {
	start := StartOfWeek(t)
	return EndOfDay(start.AddDate(0, 0, 6))
}

// StartOfMonth returns the start of the month in Seoul timezone.
func StartOfMonth(t time.Time) time.Time {
	seoul := ToSeoul(t)
	return time.Date(seoul.Year(), seoul.Month(), 1, 0, 0, 0, 0, SeoulTZ)
}

// EndOfMonth returns the last day of the month, end of day, in Seoul timezone.
// Computed by jumping from day 28 past the month boundary and stepping back
// to the first of the next month, minus one day. Correct for every month
// length from 28 to 31 days.
func EndOfMonth(t time.Time) time.Time {
	seoul := ToSeoul(t)
	day28 := time.Date(seoul.Year(), seoul.Month(), 28, 0, 0, 0, 0, SeoulTZ)
	nextMonth := day28.AddDate(0, 0, 4)
	firstOfNext := time.Date(nextMonth.Year(), nextMonth.Month(), 1, 0, 0, 0, 0, SeoulTZ)
	return EndOfDay(firstOfNext.AddDate(0, 0, -1))
}

// IsToday checks if the given time is today in Seoul timezone.
func IsToday(t time.Time) bool {
	now := Now()
	seoul := ToSeoul(t)
	return seoul.Year() == now.Year() &&
		seoul.Month() == now.Month() &&
		seoul.Day() == now.Day()
}

// DaysSince calculates the number of whole days since the given time.
func DaysSince(t time.Time) int {
	now := StartOfDay(Now())
	then := StartOfDay(t)
	return int(now.Sub(then).Hours() / 24)
}

// Common date/time formats.
const (
	// FormatDate is the standard day-key format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatKoreanDate is the long Korean date format used in embed footers.
	FormatKoreanDate = "2006년 01월 02일"
	// FormatShortKoreanDate is the compact date shown in check-in replies.
	FormatShortKoreanDate = "06/01/02"
)

// FormatSeoul formats a time in Seoul timezone with the given layout.
func FormatSeoul(t time.Time, layout string) string {
	return ToSeoul(t).Format(layout)
}

// DayKey formats a time as its calendar-day key (YYYY-MM-DD) in Seoul timezone.
func DayKey(t time.Time) string {
	return FormatSeoul(t, FormatDate)
}

// FormatKorean formats a time as the long Korean date string.
func FormatKorean(t time.Time) string {
	return FormatSeoul(t, FormatKoreanDate)
}

// ParseSeoul parses a time string in Seoul timezone.
func ParseSeoul(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, SeoulTZ)
}

// ParseDayKey parses a day-key string (YYYY-MM-DD) in Seoul timezone.
func ParseDayKey(value string) (time.Time, error) {
	return ParseSeoul(FormatDate, value)
}

// Streak helpers.

// IsSameDay checks if two times are on the same day in Seoul timezone.
func IsSameDay(t1, t2 time.Time) bool {
	s1, s2 := ToSeoul(t1), ToSeoul(t2)
	return s1.Year() == s2.Year() && s1.YearDay() == s2.YearDay()
}

// DaysBetween calculates the number of whole days between two times.
func DaysBetween(t1, t2 time.Time) int {
	s1 := StartOfDay(t1)
	s2 := StartOfDay(t2)
	days := int(s2.Sub(s1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// MorningCutoffHour is the hour-of-day boundary for the full morning bonus.
// Check-ins and wake-up marks before 09:00 KST earn the full award.
const MorningCutoffHour = 9

// IsLateMorning reports whether t falls at or after the morning cutoff.
func IsLateMorning(t time.Time) bool {
	return ToSeoul(t).Hour() >= MorningCutoffHour
}

// FormatMinutes renders a minute count the way the study-log embeds do:
// "N분" under an hour, "H시간 M분" above.
func FormatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h == 0 {
		return fmt.Sprintf("%d분", m)
	}
	return fmt.Sprintf("%d시간 %d분", h, m)
}
