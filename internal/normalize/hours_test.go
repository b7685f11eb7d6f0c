package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placepulse/placesync/internal/place"
)

func hoursDoc(body string) string {
	return "**영업시간**\n" + body + "\n**편의시설**\n주차 가능"
}

func TestHours_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Hours(""))
}

func TestHours_NoSectionMarker(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Hours("월-금 10:00 - 21:00"))
}

func TestHours_WeekdayRange(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("월-금 10:00 - 21:00"))
	require.Len(t, entries, 5)
	want := []place.Weekday{place.Monday, place.Tuesday, place.Wednesday, place.Thursday, place.Friday}
	for i, day := range want {
		assert.Equal(t, day, entries[i].Day)
		assert.Equal(t, "10:00", entries[i].Open)
		assert.Equal(t, "21:00", entries[i].Close)
	}
}

func TestHours_DayListAndNote(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("토,일 10:00 - 22:00 (라스트오더 21:30)"))
	require.Len(t, entries, 2)
	assert.Equal(t, place.Saturday, entries[0].Day)
	assert.Equal(t, place.Sunday, entries[1].Day)
	assert.Equal(t, "라스트오더 21:30", entries[0].Note)
}

func TestHours_EveryDayToken(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("매일 11:00 - 20:00"))
	require.Len(t, entries, 7)
	assert.Equal(t, place.Monday, entries[0].Day)
	assert.Equal(t, place.Sunday, entries[6].Day)
}

func TestHours_RecurringClosure(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("매주 월요일 정기 휴무"))
	require.Len(t, entries, 1)
	assert.Equal(t, place.HourEntry{
		Day:   place.Monday,
		Open:  "00:00",
		Close: "00:00",
		Note:  "정기 휴무",
	}, entries[0])
}

func TestHours_ClosureDaySuffixIsNotADay(t *testing.T) {
	t.Parallel()

	// The 일 ending 요일 names no day; only the character before the
	// suffix does.
	entries := Hours(hoursDoc("매주 금요일 정기 휴무"))
	require.Len(t, entries, 1)
	assert.Equal(t, place.Friday, entries[0].Day)

	entries = Hours(hoursDoc("매주 일요일 정기 휴무"))
	require.Len(t, entries, 1)
	assert.Equal(t, place.Sunday, entries[0].Day)
}

func TestHours_MixedLines(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("화-금 10:00 - 21:00\n토,일 10:00 - 22:00\n매주 월요일 정기 휴무"))
	require.Len(t, entries, 7)
	// Split shifts and closures may share days; no uniqueness on day.
	assert.Equal(t, place.Tuesday, entries[0].Day)
	assert.Equal(t, place.Saturday, entries[4].Day)
	assert.Equal(t, place.Monday, entries[6].Day)
	assert.Equal(t, "00:00", entries[6].Open)
}

func TestHours_OpenAllYearFallback(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("연중무휴"))
	require.Len(t, entries, 7)
	for _, e := range entries {
		assert.Equal(t, "09:00", e.Open)
		assert.Equal(t, "21:00", e.Close)
	}
}

func TestHours_OpenAllYearWithExplicitTimes(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("연중무휴 영업, 9:30 - 23:00 운영"))
	require.Len(t, entries, 7)
	assert.Equal(t, "9:30", entries[0].Open)
	assert.Equal(t, "23:00", entries[0].Close)
}

func TestHours_MalformedLinesDegrade(t *testing.T) {
	t.Parallel()

	entries := Hours(hoursDoc("문의는 전화로 부탁드립니다\n월 10:00 - 18:00"))
	require.Len(t, entries, 1)
	assert.Equal(t, place.Monday, entries[0].Day)
}

func TestHoursSection(t *testing.T) {
	t.Parallel()

	section, ok := hoursSection("**영업시간**\n월 10:00 - 18:00\n**전화번호**\n02-000-0000")
	require.True(t, ok)
	assert.Equal(t, "월 10:00 - 18:00", section)

	// Section runs to end of text when no next marker exists.
	section, ok = hoursSection("**영업시간**\n매일 10:00 - 18:00")
	require.True(t, ok)
	assert.Equal(t, "매일 10:00 - 18:00", section)

	_, ok = hoursSection("영업시간 안내 없음")
	assert.False(t, ok)
}

func TestExpandDayGroup(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]place.Weekday{place.Monday, place.Tuesday, place.Wednesday},
		expandDayGroup("월-수"))
	assert.Equal(t,
		[]place.Weekday{place.Monday, place.Wednesday, place.Friday},
		expandDayGroup("월,수,금"))
	assert.Equal(t, place.Week, expandDayGroup("매일"))
	assert.Len(t, expandDayGroup("연중무휴"), 7)
	// Reversed range expands to nothing rather than guessing.
	assert.Empty(t, expandDayGroup("금-월"))
}
