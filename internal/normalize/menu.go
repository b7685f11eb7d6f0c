// Package normalize parses free-form fetched page text into structured
// menu and hour entries. Parsers never fail: absent or malformed input
// degrades to fewer or zero entries.
package normalize

import (
	"regexp"
	"strings"

	"github.com/placepulse/placesync/internal/place"
)

// signatureMarker flags a representative menu item in the source text.
const signatureMarker = "대표"

// tempErrorPlaceholder is boilerplate the source site injects in place
// of a real description when its own backend hiccups.
const tempErrorPlaceholder = "일시적인 오류가 발생했습니다"

var (
	// Each menu item renders as a markdown list-item link.
	menuBlockRe = regexp.MustCompile(`(?s)- \[(.*?)\]\(https://[^)]+\)`)
	// Price token: digits with thousands separators followed by the
	// currency unit, optionally underscore-wrapped by the renderer.
	menuPriceRe = regexp.MustCompile(`_?([\d,]+)_?\s*원`)
	// Name/description components are separated by backslash runs.
	menuSplitRe   = regexp.MustCompile(`\\{2,}\s*`)
	nonDigitRe    = regexp.MustCompile(`\D`)
	menuSpaceJoin = " "
)

// Menu parses raw menu-page text into ordered menu items. Empty input
// yields an empty slice, never an error.
func Menu(rawContent string) []place.MenuItem {
	if rawContent == "" {
		return nil
	}

	var items []place.MenuItem
	for _, block := range splitMenuBlocks(rawContent) {
		if item, ok := parseMenuBlock(block); ok {
			items = append(items, item)
		}
	}
	return items
}

// splitMenuBlocks isolates the text of each menu-item link block.
func splitMenuBlocks(rawContent string) []string {
	matches := menuBlockRe.FindAllStringSubmatch(rawContent, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}

// extractPrice finds the price token inside a block. It returns the
// digits-only price and the text preceding the token. Blocks without a
// price token are disqualified.
func extractPrice(block string) (price, info string, ok bool) {
	loc := menuPriceRe.FindStringSubmatchIndex(block)
	if loc == nil {
		return "", "", false
	}
	raw := block[loc[2]:loc[3]]
	price = nonDigitRe.ReplaceAllString(raw, "")
	if price == "" {
		price = "0"
	}
	return price, strings.TrimSpace(block[:loc[0]]), true
}

func parseMenuBlock(block string) (place.MenuItem, bool) {
	price, info, ok := extractPrice(block)
	if !ok {
		return place.MenuItem{}, false
	}

	var components []string
	for _, comp := range menuSplitRe.Split(info, -1) {
		if comp = strings.TrimSpace(comp); comp != "" {
			components = append(components, comp)
		}
	}
	if len(components) == 0 {
		return place.MenuItem{}, false
	}

	item := place.MenuItem{Price: price}
	if strings.Contains(components[0], signatureMarker) {
		// The marker component is discarded; without a following
		// component there is no name to assign, so the block is skipped.
		if len(components) < 2 {
			return place.MenuItem{}, false
		}
		item.IsSignature = true
		components = components[1:]
	}
	item.Name = components[0]
	if len(components) > 1 {
		item.Description = strings.Join(components[1:], menuSpaceJoin)
	}
	if strings.Contains(item.Description, tempErrorPlaceholder) {
		item.Description = ""
	}
	return item, true
}
