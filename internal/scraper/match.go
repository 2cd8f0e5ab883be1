package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
)

// Normalize canonicalizes an identifier for comparison: uppercase with all
// whitespace removed. Idempotent.
func Normalize(s string) string {
	return whitespacePattern.ReplaceAllString(strings.ToUpper(s), "")
}

// stripTags extracts the text content of a markup fragment. Parsing is
// best-effort: html.Parse accepts any input, and the regex fallback keeps
// this total even if the parser rejects the reader.
func stripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tagPattern.ReplaceAllString(html, " ")
	}
	return doc.Text()
}

// PageContainsIdentifier reports whether the page text contains the VIN or
// the plate, compared case-insensitively with all whitespace stripped. Empty
// identifiers never match, so an empty string cannot produce a false
// positive via trivial containment.
func PageContainsIdentifier(html, vin, plate string) bool {
	normVIN := Normalize(vin)
	normPlate := Normalize(plate)
	if normVIN == "" && normPlate == "" {
		return false
	}

	text := Normalize(stripTags(html))
	if normVIN != "" && strings.Contains(text, normVIN) {
		return true
	}
	if normPlate != "" && strings.Contains(text, normPlate) {
		return true
	}
	return false
}

// Result-container markers for the seizures site. Both class-name substrings
// must be present before a match is trusted; search pages echo the query
// back, so the matcher alone is not enough.
const (
	listingMarker        = "property-listing"
	listingContentMarker = "listing-content"
)

// HasResultListings reports whether the page contains the result-listing
// container markers.
func HasResultListings(html string) bool {
	return strings.Contains(html, listingMarker) && strings.Contains(html, listingContentMarker)
}
