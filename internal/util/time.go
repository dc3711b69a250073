package util

import (
	"fmt"
	"time"
)

// DaysSince: 기준 시각(now)으로부터 t까지 경과한 일수를 반환한다.
// t가 미래이면 0을 반환한다.
func DaysSince(t, now time.Time) int {
	if t.After(now) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}

// FormatRelative: 경과 시간을 사람이 읽기 쉬운 형태로 변환합니다.
// 예: "3 days ago", "2 months ago"
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%d months ago", int(d.Hours()/(24*30)))
	default:
		return fmt.Sprintf("%d years ago", int(d.Hours()/(24*365)))
	}
}

// FormatHours: 배터리 추정 시간을 표기용 문자열로 변환한다. 예: 6.5 -> "6.5h"
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", hours)
}

// ParseDate: "YYYY-MM-DD" 형식의 날짜 문자열을 UTC 시각으로 파싱합니다.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
