package layout

import (
	"github.com/cyberpodolia/deskwin/internal/store"
)

// WindowSpec is a window as authored in the page markup.
type WindowSpec struct {
	ID   string
	Rect Rect
}

// Registry tracks the windows present in the document and their factory
// geometry.
type Registry struct {
	specs    []WindowSpec
	defaults store.Snapshot
	captured bool
}

// NewRegistry keeps specs in document order. Later duplicates of an id are
// dropped, as are specs without an id.
func NewRegistry(specs []WindowSpec) *Registry {
	seen := make(map[string]bool, len(specs))
	kept := make([]WindowSpec, 0, len(specs))
	for _, s := range specs {
		if s.ID == "" || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		kept = append(kept, s)
	}
	return &Registry{specs: kept}
}

// Discover returns window ids in document order.
func (r *Registry) Discover() []string {
	ids := make([]string, len(r.specs))
	for i, s := range r.specs {
		ids[i] = s.ID
	}
	return ids
}

// Specs returns a copy of the authored windows.
func (r *Registry) Specs() []WindowSpec {
	out := make([]WindowSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// CaptureDefaults records snap as the factory layout. Only the first call
// has any effect.
func (r *Registry) CaptureDefaults(snap store.Snapshot) {
	if r.captured {
		return
	}
	r.defaults = copySnapshot(snap)
	r.captured = true
}

// Defaults returns the factory layout and whether it has been captured.
func (r *Registry) Defaults() (store.Snapshot, bool) {
	return copySnapshot(r.defaults), r.captured
}

func copySnapshot(s store.Snapshot) store.Snapshot {
	out := store.Snapshot{
		Windows:   make(map[string]store.WindowRecord, len(s.Windows)),
		TopZIndex: s.TopZIndex,
	}
	for id, rec := range s.Windows {
		out.Windows[id] = rec
	}
	return out
}
