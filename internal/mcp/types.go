package mcp

// GetLayoutInput is the input for the get_layout tool.
type GetLayoutInput struct {
	Profile string `json:"profile,omitempty" jsonschema:"Browser profile whose layout to read (default: default)"`
	Mobile  bool   `json:"mobile,omitempty" jsonschema:"Read the mobile record instead of the desktop one"`
}

// WindowInfo describes one stored window.
type WindowInfo struct {
	ID     string  `json:"id"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ZIndex int     `json:"z_index"`
}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	Profile   string       `json:"profile"`
	Key       string       `json:"key"`
	Stored    bool         `json:"stored"`
	TopZIndex int          `json:"top_z_index"`
	Windows   []WindowInfo `json:"windows"`
	Map       string       `json:"map,omitempty"`
}

// ShareLayoutInput is the input for the share_layout tool.
type ShareLayoutInput struct {
	Profile string `json:"profile,omitempty" jsonschema:"Browser profile whose layout to share (default: default)"`
	PageURL string `json:"page_url,omitempty" jsonschema:"Page URL to build a share link for; when omitted only the token is returned"`
}

// ShareLayoutOutput is the output for the share_layout tool.
type ShareLayoutOutput struct {
	Token string `json:"token"`
	URL   string `json:"url,omitempty"`
}

// ApplySharedLayoutInput is the input for the apply_shared_layout tool.
type ApplySharedLayoutInput struct {
	Token   string `json:"token" jsonschema:"Share token or a full share URL"`
	Profile string `json:"profile,omitempty" jsonschema:"Browser profile to install the layout into (default: default)"`
	Reload  bool   `json:"reload,omitempty" jsonschema:"Ask a running server to reload open tabs afterwards"`
}

// ApplySharedLayoutOutput is the output for the apply_shared_layout tool.
type ApplySharedLayoutOutput struct {
	Profile  string `json:"profile"`
	Windows  int    `json:"windows"`
	Reloaded int    `json:"reloaded"`
}

// ResetLayoutInput is the input for the reset_layout tool.
type ResetLayoutInput struct {
	Profile string `json:"profile,omitempty" jsonschema:"Browser profile to reset (default: default)"`
	Reload  bool   `json:"reload,omitempty" jsonschema:"Ask a running server to reload open tabs afterwards"`
}

// ResetLayoutOutput is the output for the reset_layout tool.
type ResetLayoutOutput struct {
	Profile  string `json:"profile"`
	Cleared  bool   `json:"cleared"`
	Reloaded int    `json:"reloaded"`
}
