// Package gallery binds a pan direction to a horizontally scrolling element.
package gallery

import (
	"time"

	"resource-cards/internal/observable"
)

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Scroller is the element being panned, typically a thumbnail strip.
type Scroller interface {
	// Width is the visible width of the element, in the element's own units.
	Width() int
	// AnimateScroll moves the scroll offset by delta over d.
	AnimateScroll(delta int, d time.Duration)
}

type Options struct {
	// ScrollDistance is accepted for configuration compatibility; panning
	// always moves by one element width.
	ScrollDistance int
	Duration       time.Duration
}

// Bind scrolls el by one width whenever pan is set to Left or Right. Other
// values are ignored. The returned func removes the subscription; callers
// usually keep the binding for the lifetime of el.
func Bind(pan *observable.Value[Direction], el Scroller, opts Options) func() {
	return pan.Subscribe(func(d Direction) {
		switch d {
		case Right:
			el.AnimateScroll(el.Width(), opts.Duration)
		case Left:
			el.AnimateScroll(-el.Width(), opts.Duration)
		}
	})
}
