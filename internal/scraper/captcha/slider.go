package captcha

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"lotwatch/internal/config"
	"lotwatch/internal/logging"
)

// Attribute injected to mark the real slider thumb once detection succeeds.
// Finding it again by attribute avoids re-running the style scan.
const thumbMarkAttr = "data-lw-thumb"

// Selector that proves the challenge overlay is gone and the real search
// form is reachable again.
const postChallengeSelector = "form#js-search-form"

// SliderSolver defeats the drag-to-verify widget the seizures site puts in
// front of its search page. The widget randomizes its track layout and ships
// decoy thumbs sharing the real thumb's class names, so detection works off
// computed style and geometry bands instead of fixed selectors or pixels:
// the real thumb is the only one with cursor:pointer, sitting inside a
// parent box of plausible track size.
type SliderSolver struct {
	cfg    *config.Config
	rng    *rand.Rand
	logger logging.Logger
}

// NewSliderSolver creates a slider solver using the configured geometry
// thresholds and a time-seeded random source for the drag path.
func NewSliderSolver(cfg *config.Config, logger logging.Logger) *SliderSolver {
	return &SliderSolver{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.WithField("component", "slider_solver"),
	}
}

// WithRand replaces the random source. Tests use this to get deterministic
// drag paths.
func (s *SliderSolver) WithRand(rng *rand.Rand) *SliderSolver {
	s.rng = rng
	return s
}

// box is a DOM bounding box in viewport coordinates
type box struct {
	X, Y, Width, Height float64
}

// detectScript builds the in-page scan for the real thumb. Any stale mark
// from a previous attempt is cleared first; the widget may have been
// re-rendered with new geometry since then.
func (s *SliderSolver) detectScript() string {
	g := s.cfg.Captcha.Slider
	return fmt.Sprintf(`() => {
		const attr = %q;
		const stale = document.querySelector("[" + attr + "]");
		if (stale) stale.removeAttribute(attr);
		for (const div of document.querySelectorAll("div")) {
			const style = getComputedStyle(div);
			if (style.cursor !== "pointer") continue;
			const parent = div.parentElement;
			if (!parent) continue;
			const pr = parent.getBoundingClientRect();
			if (pr.width < %f || pr.width > %f || pr.height < %f || pr.height > %f) continue;
			const r = div.getBoundingClientRect();
			if (r.width > %f) continue;
			div.setAttribute(attr, "1");
			return {
				found: true,
				thumb: {x: r.x, y: r.y, width: r.width, height: r.height},
				track: {x: pr.x, y: pr.y, width: pr.width, height: pr.height},
			};
		}
		return {found: false};
	}`, thumbMarkAttr, g.TrackMinWidth, g.TrackMaxWidth, g.TrackMinHeight, g.TrackMaxHeight, g.ThumbMaxWidth)
}

// detectThumb locates the real thumb and returns its box and the track box.
func (s *SliderSolver) detectThumb(page *rod.Page) (thumb, track box, found bool, err error) {
	err = rod.Try(func() {
		result := page.MustEval(s.detectScript())
		if !result.Get("found").Bool() {
			return
		}
		found = true
		thumb = box{
			X:      result.Get("thumb").Get("x").Num(),
			Y:      result.Get("thumb").Get("y").Num(),
			Width:  result.Get("thumb").Get("width").Num(),
			Height: result.Get("thumb").Get("height").Num(),
		}
		track = box{
			X:      result.Get("track").Get("x").Num(),
			Y:      result.Get("track").Get("y").Num(),
			Width:  result.Get("track").Get("width").Num(),
			Height: result.Get("track").Get("height").Num(),
		}
	})
	return thumb, track, found, err
}

// dragSteps picks how many incremental pointer moves to synthesize.
func (s *SliderSolver) dragSteps() int {
	return 12 + s.rng.Intn(6)
}

// dragPath produces the horizontal waypoints of the drag: a straight path
// from start to end with small jitter on every intermediate step, ending
// exactly at the destination. Uniform instantaneous motion is what the
// widget screens for.
func (s *SliderSolver) dragPath(start, end float64, steps int) []float64 {
	path := make([]float64, 0, steps)
	for i := 1; i <= steps; i++ {
		x := start + (end-start)*float64(i)/float64(steps)
		if i < steps {
			x += s.rng.Float64()*4 - 2
		}
		path = append(path, x)
	}
	return path
}

func (s *SliderSolver) pause(base, spread time.Duration) {
	time.Sleep(base + time.Duration(s.rng.Int63n(int64(spread))))
}

// Solve attempts to pass the slider on the given page. It returns true only
// when the post-challenge marker (the search form) became visible within the
// solve timeout. Every failure, including panics inside rod calls, is caught
// and reported as false.
func (s *SliderSolver) Solve(page *rod.Page) bool {
	thumb, track, found, err := s.detectThumb(page)
	if err != nil {
		s.logger.Warn("Slider detection failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	if !found {
		s.logger.Debug("No slider thumb matching the expected geometry")
		return false
	}

	startX := thumb.X + thumb.Width/2
	startY := thumb.Y + thumb.Height/2
	// Thumb position is driven by clientX only, so a straight horizontal
	// drag across the track is enough.
	dragDistance := track.Width - thumb.Width
	endX := startX + dragDistance

	err = rod.Try(func() {
		page.Mouse.MustMoveTo(startX, startY)
		s.pause(50*time.Millisecond, 50*time.Millisecond)
		page.Mouse.MustDown(proto.InputMouseButtonLeft)
		s.pause(50*time.Millisecond, 50*time.Millisecond)

		for _, x := range s.dragPath(startX, endX, s.dragSteps()) {
			page.Mouse.MustMoveTo(x, startY)
			s.pause(20*time.Millisecond, 30*time.Millisecond)
		}
		page.Mouse.MustUp(proto.InputMouseButtonLeft)

		page.Timeout(s.cfg.Captcha.Slider.SolveTimeout).
			MustElement(postChallengeSelector).
			MustWaitVisible()
	})
	if err != nil {
		s.logger.Warn("Slider solve failed", map[string]interface{}{"error": err.Error()})
		return false
	}

	s.logger.Info("Slider challenge passed")
	return true
}
