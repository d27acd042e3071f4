package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Schedule is a parsed appointment slot: calendar date, start time, and
// duration in minutes. Time and Duration are zero when the text carried a
// date but no recognizable time range.
type Schedule struct {
	Date     string // YYYY-MM-DD
	Time     string // HH:MM:00
	Duration int    // minutes
}

var (
	datePattern      = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	timeRangePattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*to\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
)

// schedulingKeywords trigger opportunistic schedule extraction from a query.
var schedulingKeywords = []string{"appointment", "schedule", "book", "meet", "meeting"}

// HasSchedulingIntent reports whether the query mentions scheduling.
func HasSchedulingIntent(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range schedulingKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// ParseSchedule extracts a D/M/YYYY (or D-M-YYYY) date and an optional
// "H[:MM][am|pm] to H[:MM][am|pm]" range from free text. Without a date the
// whole parse fails. A range ending before it starts is treated as an
// overnight span. Returns ok=false when no date token is present.
func ParseSchedule(input string) (Schedule, bool) {
	dateMatch := datePattern.FindStringSubmatch(input)
	if dateMatch == nil {
		return Schedule{}, false
	}
	day, _ := strconv.Atoi(dateMatch[1])
	month, _ := strconv.Atoi(dateMatch[2])
	year, _ := strconv.Atoi(dateMatch[3])
	sched := Schedule{Date: fmt.Sprintf("%d-%02d-%02d", year, month, day)}

	timeMatch := timeRangePattern.FindStringSubmatch(strings.ToLower(input))
	if timeMatch == nil {
		return sched, true
	}

	startHour, startMin := to24Hour(timeMatch[1], timeMatch[2], timeMatch[3])
	endHour, endMin := to24Hour(timeMatch[4], timeMatch[5], timeMatch[6])

	start := startHour*60 + startMin
	end := endHour*60 + endMin
	if end < start {
		end += 24 * 60
	}

	sched.Time = fmt.Sprintf("%02d:%02d:00", startHour, startMin)
	sched.Duration = end - start
	return sched, true
}

// to24Hour resolves a 12-hour clock reading: 12am maps to 0, 12pm stays 12,
// any other pm hour gains 12.
func to24Hour(hourStr, minStr, ampm string) (hour, min int) {
	hour, _ = strconv.Atoi(hourStr)
	if minStr != "" {
		min, _ = strconv.Atoi(minStr)
	}
	switch ampm {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, min
}
