package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/ipc"
	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/share"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

const (
	DefaultProfile = "default"
	ServerName     = "deskwin"
	ServerVersion  = "0.1.0"
)

// Server is the MCP server exposing stored layouts.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	kv        store.KV
	logger    *logging.ScopedLogger
	codec     *share.Codec

	// reloadFn asks a running server to reload its tabs and returns how many
	// were reloaded. Replaced in tests.
	reloadFn func(reason string) (int, error)
}

// NewServer creates an MCP server over kv. logger may be nil.
func NewServer(cfg *config.Config, kv store.KV, logger *logging.ScopedLogger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{
		config:   cfg,
		kv:       kv,
		logger:   logger,
		codec:    share.NewCodec(cfg.Windows.ShareParam, logger),
		reloadFn: reloadViaIPC,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Read the stored window layout of a browser profile: every window's position, size and z-index, plus a character map of the desktop.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "share_layout",
		Description: "Encode a profile's stored desktop layout as a share token. When page_url is given, also returns the share link that installs the layout when opened.",
	}, s.handleShareLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_shared_layout",
		Description: "Install a shared layout token (or share URL) as a profile's desktop layout. Invalid tokens leave the stored layout unchanged.",
	}, s.handleApplySharedLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reset_layout",
		Description: "Remove a profile's stored desktop layout so the next visit arranges the windows from the page defaults.",
	}, s.handleResetLayout)
}

// layoutStore opens the record of profile in mode. The returned store is
// enabled so tools may write through it.
func (s *Server) layoutStore(profile string, mode viewport.Mode) (*store.LayoutStore, string, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	kv, err := store.Scoped(s.kv, profile)
	if err != nil {
		return nil, "", err
	}
	st := store.NewLayoutStore(kv, s.config.Windows.StorageKey, mode, s.logger)
	st.Enable()
	return st, profile, nil
}

// reload asks the running server to reload open tabs. A missing server is
// not an error for the caller: the change applies on the next visit.
func (s *Server) reload(reason string) int {
	n, err := s.reloadFn(reason)
	if err != nil {
		s.logger.Warn("failed to reload open tabs", "reason", reason, "error", err)
		return 0
	}
	return n
}

func reloadViaIPC(reason string) (int, error) {
	data, err := ipc.NewClient().Reload(reason)
	if err != nil {
		return 0, err
	}
	return data.Sessions, nil
}
