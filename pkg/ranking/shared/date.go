package shared

import "time"

// Dates are persisted as plain integers (YYYYMMDD for days, YYYYMM for
// months) so month arithmetic on history queries stays index friendly.

// ServiceLaunchMonth is the first month the source site has ranking data for.
// Linkage lookups below it are a caller error.
const ServiceLaunchMonth = 201203

// YearMonth converts a time to its YYYYMM integer form.
func YearMonth(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}

// DateInt converts a time to its YYYYMMDD integer form.
func DateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// PrevMonth returns the YYYYMM month immediately before ym.
func PrevMonth(ym int) int {
	y, m := ym/100, ym%100
	if m <= 1 {
		return (y-1)*100 + 12
	}
	return y*100 + m - 1
}

// ValidYearMonth reports whether ym is a well-formed YYYYMM value inside the
// window the source site can answer for.
func ValidYearMonth(ym int, now time.Time) bool {
	m := ym % 100
	if m < 1 || m > 12 {
		return false
	}
	return ym >= ServiceLaunchMonth && ym <= YearMonth(now)
}

// MonthsBackward lists months from start downward, newest first, stopping
// after count entries or when the range floor is crossed.
func MonthsBackward(start, floor, count int) []int {
	var out []int
	for ym := start; ym >= floor && len(out) < count; ym = PrevMonth(ym) {
		out = append(out, ym)
	}
	return out
}
