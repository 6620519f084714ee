package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cyberpodolia/deskwin/internal/preview"
	"github.com/cyberpodolia/deskwin/internal/share"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

const mapWidth = 60

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args GetLayoutInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	mode := viewport.Desktop
	if args.Mobile {
		mode = viewport.Mobile
	}
	st, profile, err := s.layoutStore(args.Profile, mode)
	if err != nil {
		return nil, GetLayoutOutput{}, err
	}

	out := GetLayoutOutput{
		Profile: profile,
		Key:     st.Key(),
		Windows: []WindowInfo{},
	}
	snap, ok := st.Load()
	if !ok {
		return nil, out, nil
	}
	out.Stored = true
	out.TopZIndex = snap.TopZIndex

	for _, e := range preview.Entries(snap) {
		out.Windows = append(out.Windows, WindowInfo{
			ID:     e.ID,
			Left:   e.Rect.Left,
			Top:    e.Rect.Top,
			Width:  e.Rect.Width,
			Height: e.Rect.Height,
			ZIndex: e.Z,
		})
	}
	sort.SliceStable(out.Windows, func(i, j int) bool {
		return out.Windows[i].ZIndex > out.Windows[j].ZIndex
	})
	out.Map = preview.Plain(snap, mapWidth)

	s.logger.Debug("MCP: get_layout", "profile", profile, "windows", len(out.Windows))
	return nil, out, nil
}

func (s *Server) handleShareLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ShareLayoutInput) (*mcpsdk.CallToolResult, ShareLayoutOutput, error) {
	st, profile, err := s.layoutStore(args.Profile, viewport.Desktop)
	if err != nil {
		return nil, ShareLayoutOutput{}, err
	}
	token, err := s.codec.Encode(st)
	if err != nil {
		if errors.Is(err, share.ErrNothingToShare) {
			return nil, ShareLayoutOutput{}, fmt.Errorf("profile %q has no custom layout to share; move or resize a window first", profile)
		}
		return nil, ShareLayoutOutput{}, err
	}

	out := ShareLayoutOutput{Token: token}
	if args.PageURL != "" {
		link, err := s.codec.ShareURL(s.codec.StripToken(args.PageURL), token)
		if err != nil {
			return nil, ShareLayoutOutput{}, err
		}
		out.URL = link
	}
	s.logger.Info("MCP: share_layout", "profile", profile, "bytes", len(token))
	return nil, out, nil
}

func (s *Server) handleApplySharedLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ApplySharedLayoutInput) (*mcpsdk.CallToolResult, ApplySharedLayoutOutput, error) {
	token := strings.TrimSpace(args.Token)
	if strings.Contains(token, "://") || strings.HasPrefix(token, "/") {
		t, ok := s.codec.TokenFromURL(token)
		if !ok {
			return nil, ApplySharedLayoutOutput{}, fmt.Errorf("url has no %q parameter", s.codec.Param())
		}
		token = t
	}
	if token == "" {
		return nil, ApplySharedLayoutOutput{}, fmt.Errorf("token is required")
	}

	st, profile, err := s.layoutStore(args.Profile, viewport.Desktop)
	if err != nil {
		return nil, ApplySharedLayoutOutput{}, err
	}
	if err := s.codec.Decode(st, token); err != nil {
		if errors.Is(err, store.ErrMalformed) || errors.Is(err, share.ErrInvalidToken) {
			return nil, ApplySharedLayoutOutput{}, fmt.Errorf("invalid layout token: %w", err)
		}
		return nil, ApplySharedLayoutOutput{}, err
	}

	out := ApplySharedLayoutOutput{Profile: profile}
	if snap, ok := st.Load(); ok {
		out.Windows = len(snap.Windows)
	}
	if args.Reload {
		out.Reloaded = s.reload("shared layout applied")
	}
	s.logger.Info("MCP: apply_shared_layout", "profile", profile, "windows", out.Windows)
	return nil, out, nil
}

func (s *Server) handleResetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args ResetLayoutInput) (*mcpsdk.CallToolResult, ResetLayoutOutput, error) {
	st, profile, err := s.layoutStore(args.Profile, viewport.Desktop)
	if err != nil {
		return nil, ResetLayoutOutput{}, err
	}
	_, existed := st.Raw()
	if err := st.Clear(); err != nil {
		return nil, ResetLayoutOutput{}, err
	}

	out := ResetLayoutOutput{Profile: profile, Cleared: existed}
	if args.Reload {
		out.Reloaded = s.reload("layout reset")
	}
	s.logger.Info("MCP: reset_layout", "profile", profile, "cleared", existed)
	return nil, out, nil
}
