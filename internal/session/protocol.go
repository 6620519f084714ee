// Package session connects one browser tab to a layout manager over a
// websocket.
package session

import (
	"github.com/cyberpodolia/deskwin/internal/layout"
)

// Inbound message types.
const (
	TypeHello       = "hello"
	TypeMeasured    = "measured"
	TypeFocus       = "focus"
	TypeDragStart   = "drag_start"
	TypeDragMove    = "drag_move"
	TypeDragEnd     = "drag_end"
	TypeResizeStart = "resize_start"
	TypeResizeMove  = "resize_move"
	TypeResizeEnd   = "resize_end"
	TypeViewport    = "viewport"
	TypeReset       = "reset"
	TypeShare       = "share"
)

// Outbound message types. TypeShare is used in both directions.
const (
	TypeLayout  = "layout"
	TypeMeasure = "measure"
	TypeReload  = "reload"
	TypeError   = "error"
)

// Inbound is a message from the page.
type Inbound struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// hello
	Profile       string `json:"profile,omitempty"`
	ViewportWidth int    `json:"viewportWidth,omitempty"`
	PageURL       string `json:"pageUrl,omitempty"`

	// measured
	ContainerWidth  float64                `json:"containerWidth,omitempty"`
	ContainerHeight float64                `json:"containerHeight,omitempty"`
	Sizes           map[string]layout.Size `json:"sizes,omitempty"`

	// drag_start, resize_start
	Origin *layout.Origin `json:"origin,omitempty"`

	// drag_move
	DX float64 `json:"dx,omitempty"`
	DY float64 `json:"dy,omitempty"`

	// resize_move
	Resize *layout.ResizeMove `json:"resize,omitempty"`

	// viewport
	Width int `json:"width,omitempty"`
}

func (m Inbound) measurement() layout.Measurement {
	return layout.Measurement{
		ContainerWidth:  m.ContainerWidth,
		ContainerHeight: m.ContainerHeight,
		Sizes:           m.Sizes,
	}
}

// Outbound is a message to the page.
type Outbound struct {
	Type   string             `json:"type"`
	Layout *layout.Projection `json:"layout,omitempty"`
	URL    string             `json:"url,omitempty"`
	Error  string             `json:"error,omitempty"`
}
