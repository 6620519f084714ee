package layout

import (
	"context"
	"sort"

	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

// Window is the live state of one window.
type Window struct {
	ID       string
	Rect     Rect
	Z        int
	Active   bool
	Dragging bool
	Resizing bool
}

// Manager owns the layout of one page view: the window registry, the
// stacking counter, the active window and the persistence gate.
//
// A Manager is not safe for concurrent use; callers drive it from a single
// goroutine.
type Manager struct {
	opts     Options
	mode     viewport.Mode
	registry *Registry
	store    *store.LayoutStore
	logger   *logging.ScopedLogger

	order    []string
	windows  map[string]*Window
	topZ     int
	active   string
	gestures map[string]gestureKind
	started  bool
}

// NewManager builds a manager for the windows in specs. The viewport mode is
// taken from st. logger may be nil.
func NewManager(specs []WindowSpec, st *store.LayoutStore, opts Options, logger *logging.ScopedLogger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	reg := NewRegistry(specs)
	m := &Manager{
		opts:     opts,
		mode:     st.Mode(),
		registry: reg,
		store:    st,
		logger:   logger,
		windows:  make(map[string]*Window),
		topZ:     opts.BaseZ,
		gestures: make(map[string]gestureKind),
	}
	for _, s := range reg.Specs() {
		m.order = append(m.order, s.ID)
		m.windows[s.ID] = &Window{ID: s.ID, Rect: s.Rect}
	}
	return m
}

// Start runs the page-load sequence: capture the factory layout, assign the
// initial stacking order, then either restore the persisted layout or
// arrange the windows once ready reports their measured sizes.
//
// In mobile mode Start stops after the initial order; nothing is loaded,
// centred or saved. A nil ready skips the arrangement and only enables
// persistence.
func (m *Manager) Start(ctx context.Context, ready Ready) error {
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	m.store.Disable()

	m.InitialOrder()
	m.registry.CaptureDefaults(m.Snapshot())

	if m.mobile() {
		m.logger.Debug("mobile mode, layout is static", "windows", len(m.order))
		return nil
	}

	if snap, ok := m.store.Load(); ok {
		m.apply(snap)
		m.store.Enable()
		m.logger.Info("layout restored", "windows", len(snap.Windows), "top_z", m.topZ)
		return nil
	}

	if ready == nil {
		m.store.Enable()
		return nil
	}
	return m.Arrange(ctx, ready)
}

// Reset discards the persisted layout, restores the factory layout and
// arranges it again. The result is saved once arrangement completes.
func (m *Manager) Reset(ctx context.Context, ready Ready) error {
	m.store.Disable()
	if !m.mobile() {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear layout", "error", err)
		}
	}
	m.gestures = make(map[string]gestureKind)

	defaults, ok := m.registry.Defaults()
	if !ok {
		m.InitialOrder()
		defaults = m.Snapshot()
		m.registry.CaptureDefaults(defaults)
	}
	m.topZ = m.opts.BaseZ
	for _, w := range m.windows {
		w.Dragging = false
		w.Resizing = false
	}
	m.applyRecords(defaults)
	m.activateTopmost()

	if m.mobile() {
		return nil
	}
	if ready != nil {
		if err := m.Arrange(ctx, ready); err != nil {
			return err
		}
	} else {
		m.store.Enable()
	}
	m.Persist()
	m.logger.Info("layout reset", "windows", len(m.order))
	return nil
}

// apply restores a persisted snapshot. The counter becomes the largest of
// its current value, the recorded counter and every restored z-order.
func (m *Manager) apply(snap store.Snapshot) {
	m.applyRecords(snap)
	m.topZ = max(m.topZ, snap.TopZIndex)
	m.activateTopmost()
}

// applyRecords copies every parseable field of the records onto the
// matching windows and raises the counter to the largest restored z.
// Records for unknown ids are ignored.
func (m *Manager) applyRecords(snap store.Snapshot) {
	for _, id := range m.order {
		rec, ok := snap.Windows[id]
		if !ok {
			continue
		}
		w := m.windows[id]
		if v, ok := store.ParsePx(rec.Left); ok {
			w.Rect.Left = v
		}
		if v, ok := store.ParsePx(rec.Top); ok {
			w.Rect.Top = v
		}
		if v, ok := store.ParsePx(rec.Width); ok {
			w.Rect.Width = max(v, m.opts.MinWidth)
		}
		if v, ok := store.ParsePx(rec.Height); ok {
			w.Rect.Height = max(v, m.opts.MinHeight)
		}
		if z, ok := store.ParseZ(rec.ZIndex); ok {
			w.Z = z
		}
		m.topZ = max(m.topZ, w.Z)
	}
}

// Snapshot returns the current layout in its persisted form.
func (m *Manager) Snapshot() store.Snapshot {
	snap := store.Snapshot{
		Windows:   make(map[string]store.WindowRecord, len(m.order)),
		TopZIndex: m.topZ,
	}
	for _, id := range m.order {
		w := m.windows[id]
		snap.Windows[id] = store.WindowRecord{
			Left:   store.FormatPx(w.Rect.Left),
			Top:    store.FormatPx(w.Rect.Top),
			Width:  store.FormatPx(w.Rect.Width),
			Height: store.FormatPx(w.Rect.Height),
			ZIndex: store.FormatNumber(float64(w.Z)),
		}
	}
	return snap
}

// Persist saves the current layout when persistence is enabled. Failures
// are logged.
func (m *Manager) Persist() {
	if !m.store.Enabled() {
		return
	}
	if err := m.store.Save(m.Snapshot()); err != nil {
		m.logger.Warn("failed to save window positions", "error", err)
	}
}

// Windows returns the windows in document order.
func (m *Manager) Windows() []Window {
	out := make([]Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.windows[id])
	}
	return out
}

// Window returns one window by id.
func (m *Manager) Window(id string) (Window, bool) {
	w, ok := m.windows[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// StackOrder returns window ids from bottom to top.
func (m *Manager) StackOrder() []string {
	ids := append([]string(nil), m.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		return m.windows[ids[i]].Z < m.windows[ids[j]].Z
	})
	return ids
}

// Active returns the id of the active window.
func (m *Manager) Active() string { return m.active }

// TopZ returns the stacking counter.
func (m *Manager) TopZ() int { return m.topZ }

// Mode returns the viewport mode.
func (m *Manager) Mode() viewport.Mode { return m.mode }

// Registry returns the window registry.
func (m *Manager) Registry() *Registry { return m.registry }

func (m *Manager) mobile() bool {
	return m.mode == viewport.Mobile
}
