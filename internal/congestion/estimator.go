// Package congestion produces a current congestion reading for a place,
// preferring direct textual evidence and falling back to a category and
// time-of-day heuristic when evidence is absent.
package congestion

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/placepulse/placesync/internal/place"
)

// topicsSectionRe marks the real-time popular topics section. Severity
// keywords are searched inside it, or in the whole text when absent.
var topicsSectionRe = regexp.MustCompile(`\*\*실시간 인기 토픽\*\*`)

var nextSectionRe = regexp.MustCompile(`\*\*`)

// SeverityKeyword binds one source vocabulary word to its fixed score.
type SeverityKeyword struct {
	Keyword string `mapstructure:"keyword"`
	Score   int    `mapstructure:"score"`
}

// Thresholds map a blended score to a label. A score below Quiet is
// quiet, below Normal is normal, below Busy is busy, else crowded.
type Thresholds struct {
	Quiet  int `mapstructure:"quiet"`
	Normal int `mapstructure:"normal"`
	Busy   int `mapstructure:"busy"`
}

// Priors hold the category/time heuristic scores used by the inference
// tier. Only restaurants carry time-of-day structure today; other
// categories fall back to Baseline (extension point).
type Priors struct {
	LunchStart      int `mapstructure:"lunch_start"`
	LunchEnd        int `mapstructure:"lunch_end"`
	DinnerStart     int `mapstructure:"dinner_start"`
	DinnerEnd       int `mapstructure:"dinner_end"`
	LunchScore      int `mapstructure:"lunch_score"`
	DinnerScore     int `mapstructure:"dinner_score"`
	RestaurantScore int `mapstructure:"restaurant_score"`
	Baseline        int `mapstructure:"baseline"`
}

// Config carries the externally supplied congestion tables.
type Config struct {
	// Keywords are checked in order, lowest severity first; the first
	// keyword found in the text wins.
	Keywords      []SeverityKeyword `mapstructure:"keywords"`
	Thresholds    Thresholds        `mapstructure:"thresholds"`
	Priors        Priors            `mapstructure:"priors"`
	NeutralSignal int               `mapstructure:"neutral_signal"`
	PriorWeight   float64           `mapstructure:"prior_weight"`
	ExtractedConf float64           `mapstructure:"extracted_confidence"`
	InferredConf  float64           `mapstructure:"inferred_confidence"`
}

// DefaultConfig returns the stock severity vocabulary and heuristics.
func DefaultConfig() Config {
	return Config{
		Keywords: []SeverityKeyword{
			{Keyword: "여유", Score: 25},
			{Keyword: "보통", Score: 50},
			{Keyword: "혼잡", Score: 80},
			{Keyword: "붐빔", Score: 90},
		},
		Thresholds: Thresholds{Quiet: 30, Normal: 60, Busy: 85},
		Priors: Priors{
			LunchStart:      12,
			LunchEnd:        14,
			DinnerStart:     18,
			DinnerEnd:       21,
			LunchScore:      80,
			DinnerScore:     75,
			RestaurantScore: 40,
			Baseline:        30,
		},
		NeutralSignal: 50,
		PriorWeight:   0.6,
		ExtractedConf: 0.9,
		InferredConf:  0.5,
	}
}

// Estimator implements the two-tier congestion policy. It is pure: the
// clock is injected through Estimate's time argument.
type Estimator struct {
	cfg Config
}

// New builds an Estimator. A zero-value config falls back to defaults.
func New(cfg Config) *Estimator {
	def := DefaultConfig()
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = def.Keywords
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = def.Thresholds
	}
	if cfg.Priors == (Priors{}) {
		cfg.Priors = def.Priors
	}
	if cfg.NeutralSignal == 0 {
		cfg.NeutralSignal = def.NeutralSignal
	}
	if cfg.PriorWeight == 0 {
		cfg.PriorWeight = def.PriorWeight
	}
	if cfg.ExtractedConf == 0 {
		cfg.ExtractedConf = def.ExtractedConf
	}
	if cfg.InferredConf == 0 {
		cfg.InferredConf = def.InferredConf
	}
	return &Estimator{cfg: cfg}
}

// Estimate returns one reading for the place. Extraction from text is
// tried first; inference runs only when no severity keyword is present.
func (e *Estimator) Estimate(content string, categories []string, now time.Time) place.CongestionReading {
	if reading, ok := e.ExtractFromContent(content); ok {
		return reading
	}
	return e.Infer(categories, now)
}

// ExtractFromContent searches the real-time topics section (or the
// whole text) for a severity keyword. The first vocabulary entry found
// wins regardless of position in the text.
func (e *Estimator) ExtractFromContent(content string) (place.CongestionReading, bool) {
	if content == "" {
		return place.CongestionReading{}, false
	}
	searchArea := topicsSection(content)
	for _, kw := range e.cfg.Keywords {
		if strings.Contains(searchArea, kw.Keyword) {
			return place.CongestionReading{
				Label:      e.label(kw.Score),
				Score:      kw.Score,
				Source:     place.SourceExtracted,
				Confidence: e.cfg.ExtractedConf,
			}, true
		}
	}
	return place.CongestionReading{}, false
}

// Infer blends a category/time prior with the neutral baseline signal.
func (e *Estimator) Infer(categories []string, now time.Time) place.CongestionReading {
	p := e.cfg.Priors
	prior := p.Baseline
	if isRestaurant(categories) {
		hour := now.Hour()
		switch {
		case hour >= p.LunchStart && hour < p.LunchEnd:
			prior = p.LunchScore
		case hour >= p.DinnerStart && hour < p.DinnerEnd:
			prior = p.DinnerScore
		default:
			prior = p.RestaurantScore
		}
	}

	w := e.cfg.PriorWeight
	score := int(math.Round(w*float64(prior) + (1-w)*float64(e.cfg.NeutralSignal)))
	return place.CongestionReading{
		Label:      e.label(score),
		Score:      score,
		Source:     place.SourceInferred,
		Confidence: e.cfg.InferredConf,
	}
}

func (e *Estimator) label(score int) place.CongestionLabel {
	t := e.cfg.Thresholds
	switch {
	case score < t.Quiet:
		return place.CongestionQuiet
	case score < t.Normal:
		return place.CongestionNormal
	case score < t.Busy:
		return place.CongestionBusy
	default:
		return place.CongestionCrowded
	}
}

// topicsSection narrows the search to the real-time topics section when
// the marker is present; otherwise the whole text is searched.
func topicsSection(content string) string {
	loc := topicsSectionRe.FindStringIndex(content)
	if loc == nil {
		return content
	}
	rest := content[loc[1]:]
	if next := nextSectionRe.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return rest
}

// isRestaurant accepts the canonical category and source-native profile
// categories naming a food business.
func isRestaurant(categories []string) bool {
	for _, c := range categories {
		if c == "restaurant" || strings.Contains(c, "음식") {
			return true
		}
	}
	return false
}
