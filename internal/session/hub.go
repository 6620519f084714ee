package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/cyberpodolia/deskwin/internal/logging"
)

const maxMessageBytes = 1 << 20

// Hub tracks the live sessions.
type Hub struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logging.ScopedLogger

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewHub returns an empty hub. logger may be nil.
func NewHub(logger *logging.ScopedLogger) *Hub {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		sessions: make(map[*Session]struct{}),
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// ReloadAll asks every live page to reload and returns how many were told.
func (h *Hub) ReloadAll(reason string) int {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	sent := 0
	for _, s := range sessions {
		ctx, cancel := context.WithTimeout(h.ctx, 2*time.Second)
		if err := s.Reload(ctx); err != nil {
			h.logger.Debug("reload not delivered", "error", err)
		} else {
			sent++
		}
		cancel()
	}
	h.logger.Info("reload broadcast", "reason", reason, "sessions", sent)
	return sent
}

// Close ends every session.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) attach(s *Session) (context.Context, func()) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	ctx, cancel := context.WithCancel(h.ctx)
	return ctx, func() {
		cancel()
		h.mu.Lock()
		delete(h.sessions, s)
		h.mu.Unlock()
	}
}

// Handler upgrades requests to websocket sessions registered with h.
func (h *Hub) Handler(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	var origins []string
	if deps.Config != nil {
		origins = deps.Config.Server.OriginPatterns
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
		if err != nil {
			logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer func() { _ = conn.CloseNow() }()
		conn.SetReadLimit(maxMessageBytes)

		s := newSession(conn, deps)
		ctx, release := h.attach(s)
		defer release()

		err = s.Run(ctx)
		switch {
		case err == nil:
			_ = conn.Close(websocket.StatusNormalClosure, "reload")
		case errors.Is(err, context.Canceled):
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
			websocket.CloseStatus(err) == websocket.StatusGoingAway:
			logger.Debug("session closed by page")
		default:
			logger.Warn("session ended", "error", err)
			_ = conn.Close(websocket.StatusInternalError, "session error")
		}
	})
}
