// Package place defines core types shared across subsystems.
package place

import "time"

// Weekday is the canonical day code used in hour entries.
type Weekday string

// Day codes in week order.
const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

// Week lists the day codes Monday first. Range expansion and the
// open-all-year fallback iterate it in order.
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Identity is the canonical place identity resolved from a raw URL or id.
// It is immutable within one sync run.
type Identity struct {
	ID       string `json:"place_id"`
	Category string `json:"category"`
}

// PageKind names one of the source pages fetched for a place.
type PageKind string

// Source page kinds. Menu is present only for menu-bearing categories.
const (
	PageHome   PageKind = "home"
	PageMenu   PageKind = "menu"
	PageInfo   PageKind = "info"
	PageReview PageKind = "review"
)

// SourceURLSet maps page kinds to absolute URLs. Consumers must check
// for the menu key rather than assume it.
type SourceURLSet map[PageKind]string

// MenuItem is one structured menu entry derived from a source block.
// Order of items follows order of appearance in the source text.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
	IsSignature bool   `json:"is_signature"`
}

// HourEntry is one weekly-hours row. A closure is open=close="00:00"
// with Note carrying the closure phrase. Multiple entries may share a
// day (split shifts).
type HourEntry struct {
	Day   Weekday `json:"day"`
	Open  string  `json:"open"`
	Close string  `json:"close"`
	Note  string  `json:"note,omitempty"`
}

// CongestionLabel is the coarse severity bucket of a congestion reading.
type CongestionLabel string

// Congestion labels from lowest to highest severity.
const (
	CongestionQuiet   CongestionLabel = "quiet"
	CongestionNormal  CongestionLabel = "normal"
	CongestionBusy    CongestionLabel = "busy"
	CongestionCrowded CongestionLabel = "crowded"
)

// Congestion sources.
const (
	SourceExtracted = "extracted"
	SourceInferred  = "inferred"
	SourceAbsent    = "absent"
)

// CongestionReading is the current congestion estimate for a place.
// The zero value (source "absent", confidence 0) is the resting state
// of a record before its first sync; the estimator never produces it.
type CongestionReading struct {
	Label      CongestionLabel `json:"label,omitempty"`
	Score      int             `json:"score"`
	Source     string          `json:"source"`
	Confidence float64         `json:"confidence"`
}

// Profile carries descriptive fields populated by collaborators outside
// this core. Categories may hold both canonical and source-native values.
type Profile struct {
	Name       string   `json:"name,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Categories []string `json:"categories"`
	Address    string   `json:"address,omitempty"`
}

// Record aggregates everything persisted for one place. Derived fields
// are overwritten wholesale per sync run; no history is retained.
type Record struct {
	ID            string            `json:"id"`
	Platform      string            `json:"platform"`
	Profile       Profile           `json:"profile"`
	Hours         []HourEntry       `json:"hours"`
	Menu          []MenuItem        `json:"menu"`
	CongestionNow CongestionReading `json:"congestion_now"`
	LastFetchedAt time.Time         `json:"last_fetched_at"`
}

// SyncedFields is the wholesale update written at the end of a sync run.
type SyncedFields struct {
	Hours         []HourEntry       `json:"hours"`
	Menu          []MenuItem        `json:"menu"`
	CongestionNow CongestionReading `json:"congestion_now"`
	LastFetchedAt time.Time         `json:"last_fetched_at"`
}

// SyncResult summarizes one completed run. ContentHash fingerprints
// the home page content so event consumers can skip unchanged places.
type SyncResult struct {
	PlaceID       string            `json:"place_id"`
	Category      string            `json:"category"`
	MenuItems     int               `json:"menu_items"`
	HourEntries   int               `json:"hour_entries"`
	CongestionNow CongestionReading `json:"congestion_now"`
	ModifiedCount int               `json:"modified_count"`
	ContentHash   string            `json:"content_hash,omitempty"`
	FetchedAt     time.Time         `json:"fetched_at"`
}
