package layout

import (
	"slices"
)

// Region is the part of a window a pointer went down on.
type Region string

const (
	RegionTitle Region = "title"
	RegionBody  Region = "body"
	RegionEdge  Region = "edge"
)

// Edges is a set of window edges.
type Edges struct {
	Left   bool `json:"left,omitempty"`
	Right  bool `json:"right,omitempty"`
	Bottom bool `json:"bottom,omitempty"`
	Top    bool `json:"top,omitempty"`
}

func (e Edges) any() bool {
	return e.Left || e.Right || e.Bottom || e.Top
}

// within reports whether every edge set in e is also set in allowed.
func (e Edges) within(allowed Edges) bool {
	return (!e.Left || allowed.Left) &&
		(!e.Right || allowed.Right) &&
		(!e.Bottom || allowed.Bottom) &&
		(!e.Top || allowed.Top)
}

// Origin describes where a gesture started.
type Origin struct {
	Region Region `json:"region"`
	// Element is the lower-case tag name under the pointer.
	Element string `json:"element,omitempty"`
	// Edges are the window edges grabbed by a resize.
	Edges Edges `json:"edges,omitempty"`
}

// DragPolicy decides which origins may start a drag.
type DragPolicy struct {
	AllowFrom  []Region
	IgnoreFrom []string
}

// Allows reports whether a drag may start at o.
func (p DragPolicy) Allows(o Origin) bool {
	if !slices.Contains(p.AllowFrom, o.Region) {
		return false
	}
	return !ignored(p.IgnoreFrom, o)
}

// ResizePolicy decides which origins may start a resize.
type ResizePolicy struct {
	Edges      Edges
	IgnoreFrom []string
}

// Allows reports whether a resize may start at o.
func (p ResizePolicy) Allows(o Origin) bool {
	if !o.Edges.any() || !o.Edges.within(p.Edges) {
		return false
	}
	return !ignored(p.IgnoreFrom, o)
}

func ignored(list []string, o Origin) bool {
	return slices.Contains(list, o.Element) || slices.Contains(list, string(o.Region))
}

// ResizeMove is one resize step as reported by the pointer library: the new
// outer size plus how far the left and top edges moved.
type ResizeMove struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	DeltaLeft float64 `json:"deltaLeft"`
	DeltaTop  float64 `json:"deltaTop"`
}

type gestureKind int

const (
	gestureDrag gestureKind = iota + 1
	gestureResize
)

// Gestures is the callback surface a pointer-gesture library drives.
type Gestures interface {
	OnDragStart(id string, origin Origin) error
	OnDragMove(id string, dx, dy float64) error
	OnDragEnd(id string) error
	OnResizeStart(id string, origin Origin) error
	OnResizeMove(id string, ev ResizeMove) error
	OnResizeEnd(id string) error
}

var _ Gestures = (*Manager)(nil)

func (m *Manager) beginGesture(id string, kind gestureKind, allowed bool) (*Window, error) {
	if m.mobile() {
		return nil, ErrGesturesDisabled
	}
	w, ok := m.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	if !allowed {
		return nil, ErrGestureRejected
	}
	m.gestures[id] = kind
	_ = m.BringToFront(id)
	return w, nil
}

func (m *Manager) activeGesture(id string, kind gestureKind) (*Window, error) {
	if m.mobile() {
		return nil, ErrGesturesDisabled
	}
	if m.gestures[id] != kind {
		return nil, ErrNoGesture
	}
	w, ok := m.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	return w, nil
}

// OnDragStart raises the window and marks it as dragging.
func (m *Manager) OnDragStart(id string, origin Origin) error {
	w, err := m.beginGesture(id, gestureDrag, m.opts.Drag.Allows(origin))
	if err != nil {
		return err
	}
	w.Dragging = true
	w.Resizing = false
	return nil
}

// OnDragMove adds the incremental pointer delta to the window position.
func (m *Manager) OnDragMove(id string, dx, dy float64) error {
	if !finite(dx, dy) {
		return ErrInvalidGeometry
	}
	w, err := m.activeGesture(id, gestureDrag)
	if err != nil {
		return err
	}
	w.Rect.Left += dx
	w.Rect.Top += dy
	return nil
}

// OnDragEnd clears the dragging state and persists the layout.
func (m *Manager) OnDragEnd(id string) error {
	w, err := m.activeGesture(id, gestureDrag)
	if err != nil {
		return err
	}
	delete(m.gestures, id)
	w.Dragging = false
	m.Persist()
	return nil
}

// OnResizeStart raises the window and marks it as resizing.
func (m *Manager) OnResizeStart(id string, origin Origin) error {
	w, err := m.beginGesture(id, gestureResize, m.opts.Resize.Allows(origin))
	if err != nil {
		return err
	}
	w.Resizing = true
	w.Dragging = false
	return nil
}

// OnResizeMove applies the new size, clamped to the minimum, and shifts the
// position by the reported edge deltas.
func (m *Manager) OnResizeMove(id string, ev ResizeMove) error {
	if !finite(ev.Width, ev.Height, ev.DeltaLeft, ev.DeltaTop) {
		return ErrInvalidGeometry
	}
	w, err := m.activeGesture(id, gestureResize)
	if err != nil {
		return err
	}
	w.Rect.Width = max(ev.Width, m.opts.MinWidth)
	w.Rect.Height = max(ev.Height, m.opts.MinHeight)
	w.Rect.Left += ev.DeltaLeft
	w.Rect.Top += ev.DeltaTop
	return nil
}

// OnResizeEnd clears the resizing state and persists the layout.
func (m *Manager) OnResizeEnd(id string) error {
	w, err := m.activeGesture(id, gestureResize)
	if err != nil {
		return err
	}
	delete(m.gestures, id)
	w.Resizing = false
	m.Persist()
	return nil
}
