package normalize

import (
	"regexp"
	"strings"

	"github.com/placepulse/placesync/internal/place"
)

// Source day notation in week order. Range expansion walks this slice.
var dayTable = []struct {
	char string
	code place.Weekday
}{
	{"월", place.Monday},
	{"화", place.Tuesday},
	{"수", place.Wednesday},
	{"목", place.Thursday},
	{"금", place.Friday},
	{"토", place.Saturday},
	{"일", place.Sunday},
}

var (
	hoursSectionRe = regexp.MustCompile(`\*\*영업시간\*\*\s*\n`)
	nextSectionRe  = regexp.MustCompile(`\n\*\*`)

	// Day-group token (single day, comma list, hyphen range, or the
	// every-day words) followed by an open-close pair and an optional
	// parenthesized note such as a last-order time.
	hourLineRe = regexp.MustCompile(
		`((?:[월화수목금토일](?:,[월화수목금토일])*(?:-[월화수목금토일])?)|매일|연중무휴)\s+` +
			`(\d{2}:\d{2})\s*-\s*(\d{2}:\d{2})` +
			`(?:\s*\((.*?)\))?`)

	// Recurring closure phrase, e.g. "매주 월요일 정기 휴무".
	closureLineRe = regexp.MustCompile(`((?:매주|매달)\s*.*?요일)\s*(정기 휴무)`)
	// A closed day is named by the character directly before the 요일
	// suffix; a bare scan would also hit 요일's own trailing 일.
	closureDayRe = regexp.MustCompile(`([월화수목금토일])요일`)

	dayRangeRe = regexp.MustCompile(`^([월화수목금토일])-([월화수목금토일])`)
	dayCharRe  = regexp.MustCompile(`[월화수목금토일]`)
	timePairRe = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
)

// Fallback open/close used by the open-all-year synthesis when the
// section text carries no explicit time pair.
const (
	fallbackOpen  = "09:00"
	fallbackClose = "21:00"
)

// Hours parses raw page text into ordered weekly-hour entries. Missing
// input or a missing business-hours section yields an empty slice.
func Hours(rawContent string) []place.HourEntry {
	section, ok := hoursSection(rawContent)
	if !ok {
		return nil
	}

	var entries []place.HourEntry
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, parseHourLine(line)...)
	}

	if len(entries) == 0 && strings.Contains(section, "연중무휴") {
		entries = openAllYearEntries(section)
	}
	return entries
}

// hoursSection extracts the text between the business-hours marker and
// the next section marker (or end of text).
func hoursSection(rawContent string) (string, bool) {
	if rawContent == "" {
		return "", false
	}
	loc := hoursSectionRe.FindStringIndex(rawContent)
	if loc == nil {
		return "", false
	}
	rest := rawContent[loc[1]:]
	if next := nextSectionRe.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return strings.TrimSpace(rest), true
}

// parseHourLine matches one line against the two recognized shapes.
// Lines matching neither contribute nothing.
func parseHourLine(line string) []place.HourEntry {
	if m := hourLineRe.FindStringSubmatch(line); m != nil {
		note := strings.TrimSpace(m[4])
		var entries []place.HourEntry
		for _, day := range expandDayGroup(m[1]) {
			entries = append(entries, place.HourEntry{
				Day:   day,
				Open:  m[2],
				Close: m[3],
				Note:  note,
			})
		}
		return entries
	}
	if m := closureLineRe.FindStringSubmatch(line); m != nil {
		seen := make(map[place.Weekday]bool)
		for _, dm := range closureDayRe.FindAllStringSubmatch(m[1], -1) {
			if i := dayIndex(dm[1]); i >= 0 {
				seen[dayTable[i].code] = true
			}
		}
		var entries []place.HourEntry
		for _, d := range dayTable {
			if seen[d.code] {
				entries = append(entries, place.HourEntry{
					Day:   d.code,
					Open:  "00:00",
					Close: "00:00",
					Note:  m[2],
				})
			}
		}
		return entries
	}
	return nil
}

// expandDayGroup turns a day-group token into its constituent days in
// week order. An unrecognized range falls back to scanning the token
// for individual day characters.
func expandDayGroup(token string) []place.Weekday {
	if strings.Contains(token, "매일") || strings.Contains(token, "연중무휴") {
		return append([]place.Weekday(nil), place.Week...)
	}

	if m := dayRangeRe.FindStringSubmatch(token); m != nil {
		start, end := dayIndex(m[1]), dayIndex(m[2])
		if start >= 0 && end >= 0 {
			var days []place.Weekday
			for i := start; i <= end; i++ {
				days = append(days, dayTable[i].code)
			}
			return days
		}
	}

	seen := make(map[place.Weekday]bool)
	for _, ch := range dayCharRe.FindAllString(token, -1) {
		if i := dayIndex(ch); i >= 0 {
			seen[dayTable[i].code] = true
		}
	}
	var days []place.Weekday
	for _, d := range dayTable {
		if seen[d.code] {
			days = append(days, d.code)
		}
	}
	return days
}

func dayIndex(char string) int {
	for i, d := range dayTable {
		if d.char == char {
			return i
		}
	}
	return -1
}

// openAllYearEntries synthesizes a full week of entries when the
// section only states the place is open all year. Best effort: an
// explicit time pair in the text overrides the fixed fallback.
func openAllYearEntries(section string) []place.HourEntry {
	openAt, closeAt := fallbackOpen, fallbackClose
	if m := timePairRe.FindStringSubmatch(section); m != nil {
		openAt, closeAt = m[1], m[2]
	}
	entries := make([]place.HourEntry, 0, len(place.Week))
	for _, day := range place.Week {
		entries = append(entries, place.HourEntry{Day: day, Open: openAt, Close: closeAt})
	}
	return entries
}
