package captcha

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
)

func sliderConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Captcha.Slider.TrackMinWidth = 200
	cfg.Captcha.Slider.TrackMaxWidth = 400
	cfg.Captcha.Slider.TrackMinHeight = 40
	cfg.Captcha.Slider.TrackMaxHeight = 60
	cfg.Captcha.Slider.ThumbMaxWidth = 80
	cfg.Captcha.Slider.SolveTimeout = 15 * time.Second
	return cfg
}

func seededSolver(seed int64) *SliderSolver {
	return NewSliderSolver(sliderConfig(), logging.GetGlobalLogger()).
		WithRand(rand.New(rand.NewSource(seed)))
}

func TestDragStepsRange(t *testing.T) {
	s := seededSolver(1)
	for i := 0; i < 200; i++ {
		steps := s.dragSteps()
		assert.GreaterOrEqual(t, steps, 12)
		assert.LessOrEqual(t, steps, 17)
	}
}

func TestDragPathEndsExactlyAtDestination(t *testing.T) {
	s := seededSolver(42)
	for _, seed := range []int64{1, 7, 99, 12345} {
		s.WithRand(rand.New(rand.NewSource(seed)))
		path := s.dragPath(100, 350, 15)
		assert.Len(t, path, 15)
		assert.Equal(t, 350.0, path[len(path)-1], "final waypoint must land on the destination")
	}
}

func TestDragPathJitterBounds(t *testing.T) {
	s := seededSolver(7)
	start, end := 100.0, 350.0
	steps := 14

	path := s.dragPath(start, end, steps)
	for i, x := range path[:len(path)-1] {
		expected := start + (end-start)*float64(i+1)/float64(steps)
		assert.LessOrEqual(t, math.Abs(x-expected), 2.0,
			"intermediate waypoint %d deviates more than the jitter bound", i)
	}
}

func TestDragPathIsDeterministicPerSeed(t *testing.T) {
	a := seededSolver(11).dragPath(0, 300, 13)
	b := seededSolver(11).dragPath(0, 300, 13)
	assert.Equal(t, a, b)
}

func TestDetectScriptCarriesGeometryThresholds(t *testing.T) {
	script := seededSolver(1).detectScript()

	assert.Contains(t, script, "cursor")
	assert.Contains(t, script, thumbMarkAttr)
	// Geometry bands come from config, not hardcoded pixels
	assert.Contains(t, script, "200.000000")
	assert.Contains(t, script, "400.000000")
	assert.Contains(t, script, "40.000000")
	assert.Contains(t, script, "60.000000")
	assert.Contains(t, script, "80.000000")
}

func TestDetectVendor(t *testing.T) {
	t.Run("turnstile", func(t *testing.T) {
		vendor, key, ok := DetectVendor(`<div class="cf-turnstile" data-sitekey="0xAAA"></div>`)
		assert.True(t, ok)
		assert.Equal(t, VendorTurnstile, vendor)
		assert.Equal(t, "0xAAA", key)
	})

	t.Run("recaptcha", func(t *testing.T) {
		vendor, key, ok := DetectVendor(`<div class="g-recaptcha" data-sitekey="6LcKey"></div>`)
		assert.True(t, ok)
		assert.Equal(t, VendorRecaptcha, vendor)
		assert.Equal(t, "6LcKey", key)
	})

	t.Run("proprietary slider is not a vendor", func(t *testing.T) {
		_, _, ok := DetectVendor(`<div class="slider-verify">Перетащите ползунок</div>`)
		assert.False(t, ok)
	})

	t.Run("vendor markup without sitekey", func(t *testing.T) {
		_, _, ok := DetectVendor(`<script src="https://challenges.cloudflare.com/turnstile/v0/api.js"></script>`)
		assert.False(t, ok)
	})
}
