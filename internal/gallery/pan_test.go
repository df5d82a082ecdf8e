package gallery

import (
	"testing"
	"time"

	"resource-cards/internal/observable"
)

type recordingScroller struct {
	width  int
	deltas []int
	durs   []time.Duration
}

func (r *recordingScroller) Width() int { return r.width }

func (r *recordingScroller) AnimateScroll(delta int, d time.Duration) {
	r.deltas = append(r.deltas, delta)
	r.durs = append(r.durs, d)
}

func TestBind_PansByOneWidth(t *testing.T) {
	t.Parallel()

	pan := observable.Undefined[Direction]()
	el := &recordingScroller{width: 40}
	unbind := Bind(pan, el, Options{ScrollDistance: 3, Duration: 250 * time.Millisecond})

	pan.Set(Right)
	pan.Set(Left)
	pan.Set(Direction("up"))
	pan.Set(Right)

	want := []int{40, -40, 40}
	if len(el.deltas) != len(want) {
		t.Fatalf("expected %d scrolls; got %v", len(want), el.deltas)
	}
	for i := range want {
		if el.deltas[i] != want[i] {
			t.Fatalf("scroll %d: got %d want %d", i, el.deltas[i], want[i])
		}
		if el.durs[i] != 250*time.Millisecond {
			t.Fatalf("scroll %d: unexpected duration %v", i, el.durs[i])
		}
	}

	unbind()
	pan.Set(Left)
	if len(el.deltas) != len(want) {
		t.Fatalf("expected no scroll after unbind")
	}
}

func TestStrip_AnimatesAndClamps(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStrip(10, 35)
	s.now = func() time.Time { return base }

	s.AnimateScroll(10, 100*time.Millisecond)
	if !s.Animating() {
		t.Fatalf("expected animation to start")
	}
	if !s.Step(base.Add(50 * time.Millisecond)) {
		t.Fatalf("expected animation to continue at half time")
	}
	if got := s.Offset(); got != 5 {
		t.Fatalf("half-way offset: got %d want 5", got)
	}
	if s.Step(base.Add(100 * time.Millisecond)) {
		t.Fatalf("expected animation to finish")
	}
	if got := s.Offset(); got != 10 {
		t.Fatalf("final offset: got %d want 10", got)
	}

	// Queue two pans; the second starts from the first one's target and is clamped.
	s.AnimateScroll(10, 100*time.Millisecond)
	s.AnimateScroll(10, 100*time.Millisecond)
	s.Step(base.Add(time.Second))
	if got := s.Offset(); got != 25 {
		t.Fatalf("clamped offset: got %d want 25", got)
	}

	s.AnimateScroll(-100, 0)
	if s.Animating() || s.Offset() != 0 {
		t.Fatalf("zero duration should jump; offset=%d", s.Offset())
	}
}

func TestStrip_ResizeReclamps(t *testing.T) {
	t.Parallel()

	s := NewStrip(10, 50)
	s.AnimateScroll(40, 0)
	s.Resize(10, 20)
	if got := s.Offset(); got != 10 {
		t.Fatalf("expected offset clamped to 10; got %d", got)
	}
	s.Resize(30, 20)
	if got := s.Offset(); got != 0 {
		t.Fatalf("expected offset 0 when content fits; got %d", got)
	}
}
