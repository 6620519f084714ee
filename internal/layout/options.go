package layout

import (
	"github.com/cyberpodolia/deskwin/internal/config"
)

// Options holds the manager's tunables.
type Options struct {
	MinWidth  float64
	MinHeight float64
	Padding   float64
	BaseZ     int
	Drag      DragPolicy
	Resize    ResizePolicy
}

// DefaultOptions mirrors config.DefaultConfig().Windows.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig().Windows)
}

// OptionsFromConfig converts the window configuration section.
func OptionsFromConfig(cfg config.WindowsConfig) Options {
	regions := make([]Region, 0, len(cfg.Drag.AllowFrom))
	for _, r := range cfg.Drag.AllowFrom {
		regions = append(regions, Region(r))
	}
	return Options{
		MinWidth:  float64(cfg.MinWidth),
		MinHeight: float64(cfg.MinHeight),
		Padding:   float64(cfg.ArrangePadding),
		BaseZ:     cfg.BaseZIndex,
		Drag: DragPolicy{
			AllowFrom:  regions,
			IgnoreFrom: append([]string(nil), cfg.Drag.IgnoreFrom...),
		},
		Resize: ResizePolicy{
			Edges: Edges{
				Left:   cfg.Resize.Edges.Left,
				Right:  cfg.Resize.Edges.Right,
				Bottom: cfg.Resize.Edges.Bottom,
				Top:    cfg.Resize.Edges.Top,
			},
			IgnoreFrom: append([]string(nil), cfg.Resize.IgnoreFrom...),
		},
	}
}
