package layout

import (
	"context"
	"sync"
)

// Size is a measured window size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurement is what the page reports once its fonts and styles have
// settled: the container width and the rendered size of each window.
type Measurement struct {
	ContainerWidth  float64         `json:"containerWidth"`
	ContainerHeight float64         `json:"containerHeight"`
	Sizes           map[string]Size `json:"sizes,omitempty"`
}

// Ready resolves once the page has been measured.
type Ready interface {
	Wait(ctx context.Context) (Measurement, error)
}

// ReadyFunc adapts a function to Ready.
type ReadyFunc func(ctx context.Context) (Measurement, error)

// Wait calls f.
func (f ReadyFunc) Wait(ctx context.Context) (Measurement, error) {
	return f(ctx)
}

// Measured returns a Ready that is already resolved with m.
func Measured(m Measurement) Ready {
	return ReadyFunc(func(context.Context) (Measurement, error) {
		return m, nil
	})
}

// Signal is a Ready resolved from another goroutine.
type Signal struct {
	once sync.Once
	done chan struct{}
	m    Measurement
}

// NewSignal returns an unresolved Signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Resolve sets the measurement. Later calls are ignored.
func (s *Signal) Resolve(m Measurement) {
	s.once.Do(func() {
		s.m = m
		close(s.done)
	})
}

// Wait blocks until Resolve is called or ctx ends.
func (s *Signal) Wait(ctx context.Context) (Measurement, error) {
	select {
	case <-s.done:
		return s.m, nil
	case <-ctx.Done():
		return Measurement{}, ctx.Err()
	}
}

// Arrange waits for ready, applies the measured window sizes, centres the
// group and then enables persistence. Nothing is saved while it runs.
func (m *Manager) Arrange(ctx context.Context, ready Ready) error {
	if m.mobile() {
		return nil
	}
	m.store.Disable()
	meas, err := ready.Wait(ctx)
	if err != nil {
		return err
	}
	for id, size := range meas.Sizes {
		w, ok := m.windows[id]
		if !ok || !finite(size.Width, size.Height) {
			continue
		}
		if size.Width > 0 {
			w.Rect.Width = size.Width
		}
		if size.Height > 0 {
			w.Rect.Height = size.Height
		}
	}
	m.CenterGroup(meas.ContainerWidth)
	m.store.Enable()
	m.logger.Debug("windows arranged", "container_width", meas.ContainerWidth, "windows", len(m.order))
	return nil
}

// CenterGroup shifts every window horizontally by the same offset so the
// group's bounding box is centred in a container of the given width. Each
// window is then kept at least the padding away from both container edges;
// a window wider than the container minus padding sits at the left padding.
// Vertical positions are left alone.
func (m *Manager) CenterGroup(containerWidth float64) {
	if len(m.order) == 0 || !finite(containerWidth) {
		return
	}
	wasEnabled := m.store.Enabled()
	m.store.Disable()
	defer func() {
		if wasEnabled {
			m.store.Enable()
		}
	}()

	rects := make([]Rect, 0, len(m.order))
	for _, id := range m.order {
		rects = append(rects, m.windows[id].Rect)
	}
	bbox := Union(rects)
	offsetX := (containerWidth-bbox.Width)/2 - bbox.Left

	pad := m.opts.Padding
	for _, id := range m.order {
		w := m.windows[id]
		w.Rect.Left = clamp(w.Rect.Left+offsetX, pad, containerWidth-w.Rect.Width-pad)
	}
}
