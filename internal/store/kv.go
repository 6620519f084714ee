package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cyberpodolia/deskwin/internal/config"
)

// KV is a string key-value store with browser local-storage semantics.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend is a KV that owns resources.
type Backend interface {
	KV
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return NewMemoryKV(), nil
	case config.StorageFile, config.StorageSQLite:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		if cfg.Storage.Backend == config.StorageSQLite {
			return OpenSQLite(path)
		}
		return NewFileKV(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Storage.Backend)
	}
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }

// Len reports the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// ValidateProfile checks a browser profile id before it is used as a key prefix.
func ValidateProfile(profile string) error {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return fmt.Errorf("profile is required")
	}
	if len(profile) > 128 {
		return fmt.Errorf("profile %q is too long", profile)
	}
	if strings.ContainsAny(profile, "/\\ \t\n") {
		return fmt.Errorf("invalid profile %q", profile)
	}
	return nil
}

type scopedKV struct {
	kv     KV
	prefix string
}

// Scoped namespaces every key under profile, giving each browser its own
// local storage inside one shared backend.
func Scoped(kv KV, profile string) (KV, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	return &scopedKV{kv: kv, prefix: profile + "/"}, nil
}

func (s *scopedKV) Get(key string) (string, bool, error) {
	return s.kv.Get(s.prefix + key)
}

func (s *scopedKV) Set(key, value string) error {
	return s.kv.Set(s.prefix+key, value)
}

func (s *scopedKV) Delete(key string) error {
	return s.kv.Delete(s.prefix + key)
}
