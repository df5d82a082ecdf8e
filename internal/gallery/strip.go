package gallery

import (
	"math"
	"time"
)

// Strip is a Scroller over a row of fixed-width content. The offset is
// clamped to [0, content-width]. Animation is advanced explicitly with Step so
// a caller's frame loop owns the clock.
type Strip struct {
	width   int
	content int
	offset  int

	from     int
	to       int
	start    time.Time
	duration time.Duration
	active   bool

	now func() time.Time
}

func NewStrip(width, content int) *Strip {
	s := &Strip{now: time.Now}
	s.Resize(width, content)
	return s
}

func (s *Strip) Width() int  { return s.width }
func (s *Strip) Offset() int { return s.offset }

// Target is the offset the strip is heading to (Offset when idle).
func (s *Strip) Target() int {
	if s.active {
		return s.to
	}
	return s.offset
}

// Animating reports whether a scroll is still in progress.
func (s *Strip) Animating() bool { return s.active }

// Resize updates the viewport and content widths and re-clamps the offset.
func (s *Strip) Resize(width, content int) {
	if width < 0 {
		width = 0
	}
	if content < 0 {
		content = 0
	}
	s.width = width
	s.content = content
	s.offset = s.clamp(s.offset)
	if s.active {
		s.to = s.clamp(s.to)
	}
}

// AnimateScroll starts a scroll by delta from the current target, so repeated
// pans queue up rather than restart from a half-finished position.
func (s *Strip) AnimateScroll(delta int, d time.Duration) {
	base := s.offset
	if s.active {
		base = s.to
	}
	target := s.clamp(base + delta)
	if d <= 0 {
		s.offset = target
		s.active = false
		return
	}
	s.from = s.offset
	s.to = target
	s.start = s.now()
	s.duration = d
	s.active = s.from != s.to
}

// Step advances the animation to now and reports whether it is still running.
func (s *Strip) Step(now time.Time) bool {
	if !s.active {
		return false
	}
	p := float64(now.Sub(s.start)) / float64(s.duration)
	if p >= 1 {
		s.offset = s.to
		s.active = false
		return false
	}
	if p < 0 {
		p = 0
	}
	s.offset = s.from + int(math.Round(float64(s.to-s.from)*swing(p)))
	return true
}

// swing is the default easing of most animation frameworks: slow, fast, slow.
func swing(p float64) float64 {
	return 0.5 - math.Cos(p*math.Pi)/2
}

func (s *Strip) clamp(v int) int {
	max := s.content - s.width
	if max < 0 {
		max = 0
	}
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
