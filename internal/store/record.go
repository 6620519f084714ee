package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a persisted record that cannot be restored.
var ErrMalformed = errors.New("malformed layout record")

// WindowRecord is the persisted geometry and stacking of one window. Values
// keep their CSS form ("10px", "105") so the record matches what the page
// writes to its own storage.
type WindowRecord struct {
	Left   string `json:"left"`
	Top    string `json:"top"`
	Width  string `json:"width"`
	Height string `json:"height"`
	ZIndex string `json:"zIndex"`
}

// Snapshot is the full persisted layout: every window plus the next z-order
// counter.
type Snapshot struct {
	Windows   map[string]WindowRecord `json:"windows"`
	TopZIndex int                     `json:"topZIndex"`
}

// Marshal encodes the snapshot in its storage form.
func (s Snapshot) Marshal() ([]byte, error) {
	if s.Windows == nil {
		s.Windows = map[string]WindowRecord{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return data, nil
}

// ParseSnapshot decodes a stored record. It fails when the data is not JSON,
// is not an object, or its windows field is not an object. Window entries
// that are not objects are skipped.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw struct {
		Windows   json.RawMessage `json:"windows"`
		TopZIndex json.RawMessage `json:"topZIndex"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	trimmed := bytes.TrimSpace(raw.Windows)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Snapshot{}, fmt.Errorf("%w: windows is not a mapping", ErrMalformed)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	snap := Snapshot{
		Windows:   make(map[string]WindowRecord, len(entries)),
		TopZIndex: parseCounter(raw.TopZIndex),
	}
	for id, entry := range entries {
		var rec WindowRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			continue
		}
		snap.Windows[id] = rec
	}
	return snap, nil
}

// UnmarshalJSON accepts numbers as well as strings for every field; numeric
// geometry is read as pixels.
func (r *WindowRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("window record is not an object")
	}
	r.Left = cssValue(fields["left"], "px")
	r.Top = cssValue(fields["top"], "px")
	r.Width = cssValue(fields["width"], "px")
	r.Height = cssValue(fields["height"], "px")
	r.ZIndex = cssValue(fields["zIndex"], "")
	return nil
}

func cssValue(raw json.RawMessage, unit string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return FormatNumber(f) + unit
	}
	return ""
}

// parseCounter reads topZIndex leniently; anything unusable is 0 and the
// caller substitutes its base z-index.
func parseCounter(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return truncInt(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return truncInt(v)
		}
	}
	return 0
}

func truncInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// FormatNumber prints v without trailing zeros: 10 -> "10", 10.5 -> "10.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPx renders a pixel length.
func FormatPx(v float64) string {
	return FormatNumber(v) + "px"
}

// ParsePx reads a CSS pixel length ("10px", "10", " 10.5px ").
func ParsePx(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseZ reads a z-index value.
func ParseZ(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}
