// Package viewport derives the desktop/mobile mode from the viewport width.
package viewport

// Mode selects between free-floating persisted windows and the static mobile
// layout.
type Mode int

const (
	Desktop Mode = iota
	Mobile
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case Desktop:
		return "desktop"
	case Mobile:
		return "mobile"
	default:
		return "unknown"
	}
}

// DefaultBreakpoint is the width in px at or below which the page is mobile.
const DefaultBreakpoint = 900

// ModeFor mirrors the (max-width: breakpoint) media query.
func ModeFor(width, breakpoint int) Mode {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	if width <= breakpoint {
		return Mobile
	}
	return Desktop
}

// StorageKey returns the storage key used in mode m.
func StorageKey(base string, m Mode) string {
	if m == Mobile {
		return base + "_mobile"
	}
	return base
}

// Controller watches width changes and reports breakpoint crossings. A
// crossing means the owner must rebuild its UI state from scratch.
type Controller struct {
	breakpoint int
	mode       Mode
	onCross    func(Mode)
}

// NewController starts in the mode for the initial width. onCross may be nil.
func NewController(width, breakpoint int, onCross func(Mode)) *Controller {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return &Controller{
		breakpoint: breakpoint,
		mode:       ModeFor(width, breakpoint),
		onCross:    onCross,
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Observe records a new width and returns true if it crossed the breakpoint.
func (c *Controller) Observe(width int) bool {
	next := ModeFor(width, c.breakpoint)
	if next == c.mode {
		return false
	}
	c.mode = next
	if c.onCross != nil {
		c.onCross(next)
	}
	return true
}
