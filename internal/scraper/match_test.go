package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase uppercased", "xta210990y2696785", "XTA210990Y2696785"},
		{"inner whitespace stripped", "А 123 БВ 777", "А123БВ777"},
		{"tabs and newlines stripped", "XTA\t2109\n90", "XTA210990"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalization must be idempotent")
		})
	}
}

func TestPageContainsIdentifier(t *testing.T) {
	page := `<html><body>
		<div class="lot"><span>VIN:</span> <b>xta 2109 90y2696785</b></div>
		<div class="lot">Госномер: <i>а123бв 777</i></div>
	</body></html>`

	t.Run("vin matches across tags and spacing", func(t *testing.T) {
		assert.True(t, PageContainsIdentifier(page, "XTA210990Y2696785", ""))
	})

	t.Run("plate matches case-insensitively", func(t *testing.T) {
		assert.True(t, PageContainsIdentifier(page, "", "А123БВ777"))
	})

	t.Run("either identifier is enough", func(t *testing.T) {
		assert.True(t, PageContainsIdentifier(page, "NOPE", "А123БВ777"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.False(t, PageContainsIdentifier(page, "WDB1234567890", "В999ВВ99"))
	})

	t.Run("empty identifiers never match", func(t *testing.T) {
		assert.False(t, PageContainsIdentifier(page, "", ""))
		assert.False(t, PageContainsIdentifier(page, "   ", "\t"))
	})
}

func TestHasResultListings(t *testing.T) {
	t.Run("requires both markers", func(t *testing.T) {
		assert.True(t, HasResultListings(`<div class="property-listing"><div class="listing-content"></div></div>`))
		assert.False(t, HasResultListings(`<div class="property-listing"></div>`))
		assert.False(t, HasResultListings(`<div class="listing-content"></div>`))
		assert.False(t, HasResultListings(`<div class="search-form"></div>`))
	})
}
