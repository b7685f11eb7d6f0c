// Package resolver turns raw venue URLs or ids into canonical place
// identities and the set of source-page URLs to fetch.
package resolver

import (
	"regexp"
	"strings"

	"github.com/placepulse/placesync/internal/place"
)

// idPatterns are tried in order against non-numeric input; the first
// capturing match wins. Order is part of the contract since a
// pathological URL can satisfy more than one shape.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/entry/place/(\d+)`),
	regexp.MustCompile(`/place/(\d+)`),
	regexp.MustCompile(`\?id=(\d+)`),
	regexp.MustCompile(`/(?:restaurant|hairshop|cafe)/(\d+)`),
}

var numericID = regexp.MustCompile(`^\d+$`)

// CategoryMapping binds a source URL keyword to a canonical category.
type CategoryMapping struct {
	Keyword  string `mapstructure:"keyword"`
	Category string `mapstructure:"category"`
}

// Config carries the externally supplied tables the resolver consumes.
type Config struct {
	// RootURL is the base of every generated source-page URL.
	RootURL string `mapstructure:"root_url"`
	// Categories maps URL keywords to canonical categories. The slice is
	// scanned in order; if keywords ever overlap, position decides.
	Categories []CategoryMapping `mapstructure:"categories"`
	// DefaultCategory is used when no keyword matches.
	DefaultCategory string `mapstructure:"default_category"`
	// MenuCategories lists categories whose places expose a menu page.
	MenuCategories []string `mapstructure:"menu_categories"`
}

// DefaultConfig returns the stock source-site tables.
func DefaultConfig() Config {
	return Config{
		RootURL: "https://m.place.naver.com",
		Categories: []CategoryMapping{
			{Keyword: "restaurant", Category: "restaurant"},
			{Keyword: "hairshop", Category: "salon"},
			{Keyword: "cafe", Category: "cafe"},
			{Keyword: "hospital", Category: "hospital"},
		},
		DefaultCategory: "restaurant",
		MenuCategories:  []string{"restaurant", "cafe"},
	}
}

// Resolver is a pure identity/category/URL resolver. It does no I/O.
type Resolver struct {
	cfg Config
}

// New builds a Resolver. Zero-value config fields fall back to defaults.
func New(cfg Config) *Resolver {
	def := DefaultConfig()
	if cfg.RootURL == "" {
		cfg.RootURL = def.RootURL
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = def.Categories
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = def.DefaultCategory
	}
	if cfg.MenuCategories == nil {
		cfg.MenuCategories = def.MenuCategories
	}
	return &Resolver{cfg: cfg}
}

// ExtractPlaceID returns the canonical place id embedded in a URL, or
// the input verbatim when it is purely numeric. The second return is
// false when no id could be found.
func (r *Resolver) ExtractPlaceID(urlOrID string) (string, bool) {
	if urlOrID == "" {
		return "", false
	}
	if numericID.MatchString(urlOrID) {
		return urlOrID, true
	}
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(urlOrID); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Category derives the canonical category from the URL. A keyword only
// matches as a full path segment. Metadata is reserved for future
// signals and currently unused.
func (r *Resolver) Category(url string, _ map[string]string) string {
	for _, m := range r.cfg.Categories {
		if strings.Contains(url, "/"+m.Keyword+"/") {
			return m.Category
		}
	}
	return r.cfg.DefaultCategory
}

// Resolve combines id extraction, category mapping, and URL building.
func (r *Resolver) Resolve(urlOrID string, metadata map[string]string) (place.Identity, place.SourceURLSet, error) {
	id, ok := r.ExtractPlaceID(urlOrID)
	if !ok {
		return place.Identity{}, nil, place.ErrIdentityNotFound
	}
	// A bare numeric id carries no URL signal, so the default applies.
	category := r.Category(urlOrID, metadata)
	identity := place.Identity{ID: id, Category: category}
	return identity, r.SourceURLs(identity), nil
}

// SourceURLs builds the page-kind to URL mapping for one identity. The
// menu key is present only for menu-bearing categories.
func (r *Resolver) SourceURLs(identity place.Identity) place.SourceURLSet {
	base := r.cfg.RootURL + "/" + r.urlKeyword(identity.Category) + "/" + identity.ID
	urls := place.SourceURLSet{
		place.PageHome:   base + "/home",
		place.PageInfo:   base + "/info",
		place.PageReview: base + "/review/visitor",
	}
	if r.hasMenu(identity.Category) {
		urls[place.PageMenu] = base + "/menu"
	}
	return urls
}

// urlKeyword reverse-maps a category to its source URL keyword. An
// unmapped category is used directly, which supports categories with no
// table entry.
func (r *Resolver) urlKeyword(category string) string {
	for _, m := range r.cfg.Categories {
		if m.Category == category {
			return m.Keyword
		}
	}
	return category
}

func (r *Resolver) hasMenu(category string) bool {
	for _, c := range r.cfg.MenuCategories {
		if c == category {
			return true
		}
	}
	return false
}
