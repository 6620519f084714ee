package store

import (
	"fmt"

	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

// LayoutStore reads and writes the layout record for one viewport mode.
//
// Writes are gated: Save is a no-op in mobile mode and until Enable is
// called, so the transient layout that exists before the first arrangement
// never reaches storage.
type LayoutStore struct {
	kv      KV
	baseKey string
	mode    viewport.Mode
	enabled bool
	logger  *logging.ScopedLogger
}

// NewLayoutStore creates a disabled store. logger may be nil.
func NewLayoutStore(kv KV, baseKey string, mode viewport.Mode, logger *logging.ScopedLogger) *LayoutStore {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &LayoutStore{
		kv:      kv,
		baseKey: baseKey,
		mode:    mode,
		logger:  logger,
	}
}

// Key returns the storage key for the store's mode.
func (s *LayoutStore) Key() string {
	return viewport.StorageKey(s.baseKey, s.mode)
}

// Mode returns the viewport mode the store was created for.
func (s *LayoutStore) Mode() viewport.Mode {
	return s.mode
}

// Enable lets Save write. It has no effect in mobile mode.
func (s *LayoutStore) Enable() {
	s.enabled = true
}

// Disable suppresses writes until the next Enable.
func (s *LayoutStore) Disable() {
	s.enabled = false
}

// Enabled reports whether Save will write.
func (s *LayoutStore) Enabled() bool {
	return s.enabled && s.mode == viewport.Desktop
}

// Save overwrites the record with snap. It returns nil without writing when
// the store is disabled or in mobile mode.
func (s *LayoutStore) Save(snap Snapshot) error {
	if !s.Enabled() {
		return nil
	}
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.Key(), string(data)); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	s.logger.Debug("layout saved", "key", s.Key(), "windows", len(snap.Windows), "top_z", snap.TopZIndex)
	return nil
}

// Load returns the persisted snapshot. Missing, unreadable and malformed
// records all report ok=false; the failure is logged and nothing is written.
func (s *LayoutStore) Load() (Snapshot, bool) {
	raw, ok := s.Raw()
	if !ok {
		return Snapshot{}, false
	}
	snap, err := ParseSnapshot([]byte(raw))
	if err != nil {
		s.logger.Warn("failed to load window positions", "key", s.Key(), "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

// Raw returns the stored record exactly as written.
func (s *LayoutStore) Raw() (string, bool) {
	raw, ok, err := s.kv.Get(s.Key())
	if err != nil {
		s.logger.Warn("failed to read layout record", "key", s.Key(), "error", err)
		return "", false
	}
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// Overwrite replaces the record with raw after checking it parses. Invalid
// input leaves the stored record untouched. Overwrite ignores the Save gate:
// it is used before initialisation to install a shared layout.
func (s *LayoutStore) Overwrite(raw string) error {
	if _, err := ParseSnapshot([]byte(raw)); err != nil {
		return err
	}
	if err := s.kv.Set(s.Key(), raw); err != nil {
		return fmt.Errorf("failed to store layout: %w", err)
	}
	return nil
}

// Clear removes the record for the store's mode.
func (s *LayoutStore) Clear() error {
	if err := s.kv.Delete(s.Key()); err != nil {
		return fmt.Errorf("failed to clear layout: %w", err)
	}
	return nil
}
