package headed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretResults(t *testing.T) {
	const url = "https://fiol.rosim.gov.ru/mk/"

	t.Run("no-objects marker clears the vehicle", func(t *testing.T) {
		verdict := interpretResults("Объекты не найдены", url)
		assert.False(t, verdict.Found)
		assert.Contains(t, verdict.Details, "No objects found")
	})

	t.Run("marker inside larger table text still clears", func(t *testing.T) {
		verdict := interpretResults("\n  Объекты не найдены  \n", url)
		assert.False(t, verdict.Found)
	})

	t.Run("rows present report found", func(t *testing.T) {
		verdict := interpretResults("Лот 1\tЛегковой автомобиль\tXTA210990Y2696785", url)
		assert.True(t, verdict.Found)
		assert.Equal(t, url, verdict.URL)
	})

	t.Run("empty body without the marker reports found", func(t *testing.T) {
		verdict := interpretResults("", url)
		assert.True(t, verdict.Found, "anything but the explicit no-objects marker counts as a listing")
	})
}
