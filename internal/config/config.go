package config

import (
	"fmt"
	"strings"
)

// Handles lists which regions of a window may start a gesture and which
// elements inside it never do.
type Handles struct {
	AllowFrom  []string `yaml:"allow_from,omitempty"`
	IgnoreFrom []string `yaml:"ignore_from"`
}

// Edges selects the window edges that accept resize gestures.
type Edges struct {
	Left   bool `yaml:"left"`
	Right  bool `yaml:"right"`
	Bottom bool `yaml:"bottom"`
	Top    bool `yaml:"top"`
}

// ResizeHandles extends Handles with the resizable edges.
type ResizeHandles struct {
	Edges      Edges    `yaml:"edges"`
	IgnoreFrom []string `yaml:"ignore_from"`
}

// WindowsConfig holds the window-layout constants.
type WindowsConfig struct {
	StorageKey     string        `yaml:"storage_key"`
	Breakpoint     int           `yaml:"breakpoint"`      // viewport widths <= breakpoint are mobile
	MinWidth       int           `yaml:"min_width"`       // px
	MinHeight      int           `yaml:"min_height"`      // px
	ArrangePadding int           `yaml:"arrange_padding"` // px kept between a centred window and the container edge
	BaseZIndex     int           `yaml:"base_z_index"`
	ShareParam     string        `yaml:"share_param"`
	Drag           Handles       `yaml:"drag"`
	Resize         ResizeHandles `yaml:"resize"`
}

// StorageBackend names a key-value backend.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageFile   StorageBackend = "file"
	StorageSQLite StorageBackend = "sqlite"
)

// StorageConfig selects where layout records live.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend"`
	// Path is the JSON document (file) or database (sqlite). Empty means the
	// default under ~/.local/share/deskwin.
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Bind           string   `yaml:"bind"`
	Port           int      `yaml:"port"`
	Page           string   `yaml:"page"`       // HTML page holding the .window markup
	StaticDir      string   `yaml:"static_dir"` // served under /static/
	WatchPage      bool     `yaml:"watch_page"`
	OriginPatterns []string `yaml:"origin_patterns,omitempty"`
}

// ContactConfig configures the contact endpoint.
type ContactConfig struct {
	// SecretsFile is the legacy PHP secrets file with BOT_TOKEN and CHAT_ID.
	SecretsFile    string `yaml:"secrets_file,omitempty"`
	BotToken       string `yaml:"bot_token,omitempty"`
	ChatID         string `yaml:"chat_id,omitempty"`
	APIBase        string `yaml:"api_base"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MinMessage     int    `yaml:"min_message"`
	MaxMessage     int    `yaml:"max_message"`
}

// LoggingConfig configures the zap-backed log manager.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"` // default: ~/.local/share/deskwin/deskwin.log
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Console    bool   `yaml:"console"`
}

// Config holds the application configuration.
type Config struct {
	Windows WindowsConfig `yaml:"windows"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Contact ContactConfig `yaml:"contact"`
	Logging LoggingConfig `yaml:"logging"`
}

const (
	DefaultStorageKey = "cyberpodolia_windows_v1"
	DefaultBreakpoint = 900
	DefaultMinWidth   = 200
	DefaultMinHeight  = 150
	DefaultPadding    = 16
	DefaultBaseZIndex = 100
	DefaultShareParam = "layout"
)

func DefaultConfig() *Config {
	return &Config{
		Windows: WindowsConfig{
			StorageKey:     DefaultStorageKey,
			Breakpoint:     DefaultBreakpoint,
			MinWidth:       DefaultMinWidth,
			MinHeight:      DefaultMinHeight,
			ArrangePadding: DefaultPadding,
			BaseZIndex:     DefaultBaseZIndex,
			ShareParam:     DefaultShareParam,
			Drag: Handles{
				AllowFrom:  []string{"title"},
				IgnoreFrom: []string{"input", "textarea", "button", "select", "a"},
			},
			Resize: ResizeHandles{
				// Top-edge resizing stays off: the title bar sits there.
				Edges:      Edges{Left: true, Right: true, Bottom: true, Top: false},
				IgnoreFrom: []string{"title", "input", "textarea", "button", "select", "a"},
			},
		},
		Storage: StorageConfig{
			Backend: StorageFile,
		},
		Server: ServerConfig{
			Bind:           "127.0.0.1",
			Port:           5000,
			Page:           "templates/index.html",
			StaticDir:      "static",
			WatchPage:      true,
			OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
		},
		Contact: ContactConfig{
			APIBase:        "https://api.telegram.org",
			TimeoutSeconds: 10,
			MinMessage:     2,
			MaxMessage:     4000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
	}
}

// Validate checks the configuration for values the layout engine cannot use.
func (c *Config) Validate() error {
	w := c.Windows
	if strings.TrimSpace(w.StorageKey) == "" {
		return &ValidationError{Path: "windows.storage_key", Err: fmt.Errorf("storage_key is required")}
	}
	if w.Breakpoint <= 0 {
		return &ValidationError{Path: "windows.breakpoint", Err: fmt.Errorf("breakpoint must be > 0")}
	}
	if w.MinWidth <= 0 {
		return &ValidationError{Path: "windows.min_width", Err: fmt.Errorf("min_width must be > 0")}
	}
	if w.MinHeight <= 0 {
		return &ValidationError{Path: "windows.min_height", Err: fmt.Errorf("min_height must be > 0")}
	}
	if w.ArrangePadding < 0 {
		return &ValidationError{Path: "windows.arrange_padding", Err: fmt.Errorf("arrange_padding must be >= 0")}
	}
	if w.BaseZIndex < 0 {
		return &ValidationError{Path: "windows.base_z_index", Err: fmt.Errorf("base_z_index must be >= 0")}
	}
	if strings.TrimSpace(w.ShareParam) == "" {
		return &ValidationError{Path: "windows.share_param", Err: fmt.Errorf("share_param is required")}
	}
	if len(w.Drag.AllowFrom) == 0 {
		return &ValidationError{Path: "windows.drag.allow_from", Err: fmt.Errorf("allow_from must not be empty")}
	}
	if !w.Resize.Edges.Left && !w.Resize.Edges.Right && !w.Resize.Edges.Bottom && !w.Resize.Edges.Top {
		return &ValidationError{Path: "windows.resize.edges", Err: fmt.Errorf("at least one edge must be resizable")}
	}

	switch c.Storage.Backend {
	case StorageMemory, StorageFile, StorageSQLite:
	default:
		return &ValidationError{Path: "storage.backend", Err: fmt.Errorf("backend must be one of: memory, file, sqlite")}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ValidationError{Path: "server.port", Err: fmt.Errorf("port must be within 0-65535")}
	}
	if strings.TrimSpace(c.Server.Page) == "" {
		return &ValidationError{Path: "server.page", Err: fmt.Errorf("page is required")}
	}

	if c.Contact.TimeoutSeconds <= 0 {
		return &ValidationError{Path: "contact.timeout_seconds", Err: fmt.Errorf("timeout_seconds must be > 0")}
	}
	if c.Contact.MinMessage < 1 {
		return &ValidationError{Path: "contact.min_message", Err: fmt.Errorf("min_message must be >= 1")}
	}
	if c.Contact.MaxMessage < c.Contact.MinMessage {
		return &ValidationError{Path: "contact.max_message", Err: fmt.Errorf("max_message must be >= min_message")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return &ValidationError{Path: "logging", Err: fmt.Errorf("rotation values must be >= 0")}
	}
	return nil
}

// ValidationError reports an invalid config value at a YAML path.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
