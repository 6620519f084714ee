package layout

// InitialOrder gives windows sequential z-order values in document order
// starting at the base, then raises the first window.
func (m *Manager) InitialOrder() {
	m.topZ = m.opts.BaseZ
	for i, id := range m.order {
		z := m.opts.BaseZ + i
		m.windows[id].Z = z
		m.topZ = max(m.topZ, z)
	}
	m.active = ""
	if len(m.order) > 0 {
		_ = m.BringToFront(m.order[0])
	}
}

// BringToFront puts id above every other window and makes it active. Every
// call takes the next counter value and asks for a save, including calls on
// the window that is already active.
func (m *Manager) BringToFront(id string) error {
	w, ok := m.windows[id]
	if !ok {
		return ErrWindowNotFound
	}
	m.topZ++
	w.Z = m.topZ
	m.setActive(id)
	m.Persist()
	return nil
}

// Focus raises a window in response to a pointer-down anywhere inside it.
func (m *Manager) Focus(id string) error {
	return m.BringToFront(id)
}

func (m *Manager) setActive(id string) {
	for wid, w := range m.windows {
		w.Active = wid == id
	}
	m.active = id
}

// activateTopmost marks the window with the highest z as active; ties go to
// the earliest in document order.
func (m *Manager) activateTopmost() {
	best := ""
	bestZ := 0
	for _, id := range m.order {
		z := m.windows[id].Z
		if best == "" || z > bestZ {
			best, bestZ = id, z
		}
	}
	if best != "" {
		m.setActive(best)
	}
}
