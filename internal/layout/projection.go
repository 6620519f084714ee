package layout

import (
	"github.com/cyberpodolia/deskwin/internal/store"
)

// Presentation classes toggled on a window element.
const (
	ClassActive   = "active-window"
	ClassDragging = "dragging"
	ClassResizing = "resizing"
)

// WindowStyle is the inline style and class list for one window element.
type WindowStyle struct {
	ID      string   `json:"id"`
	Left    string   `json:"left,omitempty"`
	Top     string   `json:"top,omitempty"`
	Width   string   `json:"width,omitempty"`
	Height  string   `json:"height,omitempty"`
	ZIndex  int      `json:"zIndex"`
	Classes []string `json:"classes"`
}

// Projection is the rendered layout sent to the page.
type Projection struct {
	Mode    string        `json:"mode"`
	Active  string        `json:"active,omitempty"`
	Windows []WindowStyle `json:"windows"`
}

// Render projects the layout onto element styles. In mobile mode the
// geometry is omitted and the page's stylesheet positions the windows.
func (m *Manager) Render() Projection {
	p := Projection{
		Mode:    m.mode.String(),
		Active:  m.active,
		Windows: make([]WindowStyle, 0, len(m.order)),
	}
	for _, id := range m.order {
		w := m.windows[id]
		ws := WindowStyle{ID: id, ZIndex: w.Z, Classes: []string{}}
		if !m.mobile() {
			ws.Left = store.FormatPx(w.Rect.Left)
			ws.Top = store.FormatPx(w.Rect.Top)
			ws.Width = store.FormatPx(w.Rect.Width)
			ws.Height = store.FormatPx(w.Rect.Height)
		}
		if w.Active {
			ws.Classes = append(ws.Classes, ClassActive)
		}
		if w.Dragging {
			ws.Classes = append(ws.Classes, ClassDragging)
		}
		if w.Resizing {
			ws.Classes = append(ws.Classes, ClassResizing)
		}
		p.Windows = append(p.Windows, ws)
	}
	return p
}
