package congestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placepulse/placesync/internal/place"
)

// 2025-08-18 is a Monday.
func at(hour int) time.Time {
	return time.Date(2025, 8, 18, hour, 0, 0, 0, time.UTC)
}

func TestExtract_KeywordInTopicsSection(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	content := "**실시간 인기 토픽**\n지금 혼잡 단계입니다\n**리뷰**\n맛있어요"
	reading, ok := e.ExtractFromContent(content)
	require.True(t, ok)
	assert.Equal(t, place.CongestionReading{
		Label:      place.CongestionBusy,
		Score:      80,
		Source:     place.SourceExtracted,
		Confidence: 0.9,
	}, reading)
}

func TestExtract_SearchesWholeTextWithoutSection(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading, ok := e.ExtractFromContent("현재 붐빔 상태")
	require.True(t, ok)
	assert.Equal(t, place.CongestionCrowded, reading.Label)
	assert.Equal(t, 90, reading.Score)
}

func TestExtract_EnumerationOrderWins(t *testing.T) {
	t.Parallel()

	// Both keywords present: the vocabulary order decides, not text
	// position.
	e := New(Config{})
	reading, ok := e.ExtractFromContent("혼잡했다가 지금은 여유")
	require.True(t, ok)
	assert.Equal(t, place.CongestionQuiet, reading.Label)
	assert.Equal(t, 25, reading.Score)
}

func TestExtract_KeywordOutsideSectionIgnored(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	content := "**실시간 인기 토픽**\n주차\n**리뷰**\n주말엔 혼잡해요"
	_, ok := e.ExtractFromContent(content)
	assert.False(t, ok)
}

func TestExtract_EmptyContent(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	_, ok := e.ExtractFromContent("")
	assert.False(t, ok)
}

func TestInfer_RestaurantLunchPeak(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Infer([]string{"restaurant"}, at(13))
	// 0.6*80 + 0.4*50 = 68.
	assert.Equal(t, 68, reading.Score)
	assert.Equal(t, place.CongestionBusy, reading.Label)
	assert.Equal(t, place.SourceInferred, reading.Source)
	assert.Equal(t, 0.5, reading.Confidence)
}

func TestInfer_RestaurantDinnerPeak(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Infer([]string{"restaurant"}, at(19))
	// 0.6*75 + 0.4*50 = 65.
	assert.Equal(t, 65, reading.Score)
	assert.Equal(t, place.CongestionBusy, reading.Label)
}

func TestInfer_RestaurantOffPeak(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Infer([]string{"restaurant"}, at(16))
	// 0.6*40 + 0.4*50 = 44.
	assert.Equal(t, 44, reading.Score)
	assert.Equal(t, place.CongestionNormal, reading.Label)
}

func TestInfer_NonRestaurantFlatBaseline(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	for _, hour := range []int{9, 13, 19} {
		reading := e.Infer([]string{"salon"}, at(hour))
		// 0.6*30 + 0.4*50 = 38, hour-independent.
		assert.Equal(t, 38, reading.Score, "hour %d", hour)
		assert.Equal(t, place.CongestionNormal, reading.Label)
	}
}

func TestInfer_SourceNativeFoodCategory(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Infer([]string{"음식점", "햄버거"}, at(13))
	assert.Equal(t, 68, reading.Score)
}

func TestEstimate_ExtractionBeatsInference(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Estimate("**실시간 인기 토픽**\n보통**", []string{"restaurant"}, at(13))
	assert.Equal(t, place.SourceExtracted, reading.Source)
	assert.Equal(t, 50, reading.Score)
	assert.Equal(t, place.CongestionNormal, reading.Label)
}

func TestEstimate_FallsBackToInference(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	reading := e.Estimate("키워드 없는 본문", []string{"restaurant"}, at(13))
	assert.Equal(t, place.SourceInferred, reading.Source)
	assert.Equal(t, 68, reading.Score)
}

func TestLabelThresholds(t *testing.T) {
	t.Parallel()

	e := New(Config{})
	assert.Equal(t, place.CongestionQuiet, e.label(29))
	assert.Equal(t, place.CongestionNormal, e.label(30))
	assert.Equal(t, place.CongestionNormal, e.label(59))
	assert.Equal(t, place.CongestionBusy, e.label(60))
	assert.Equal(t, place.CongestionBusy, e.label(84))
	assert.Equal(t, place.CongestionCrowded, e.label(85))
}
