// Package server runs the HTTP front end: the page, its static assets, the
// layout websocket and the contact endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/contact"
	"github.com/cyberpodolia/deskwin/internal/ipc"
	"github.com/cyberpodolia/deskwin/internal/layout"
	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/markup"
	"github.com/cyberpodolia/deskwin/internal/session"
	"github.com/cyberpodolia/deskwin/internal/store"
)

// ErrAlreadyRunning is returned by Run when another server holds the lock.
var ErrAlreadyRunning = errors.New("another deskwin server is already running")

const shutdownTimeout = 5 * time.Second

// RunOptions selects the process-wide resources Run claims. Empty paths
// skip the corresponding resource.
type RunOptions struct {
	LockPath   string
	SocketPath string
}

// Server serves one page.
type Server struct {
	cfg    *config.Config
	kv     store.KV
	hub    *session.Hub
	logs   logging.LoggerProvider
	logger *logging.ScopedLogger

	mu      sync.RWMutex
	windows []layout.WindowSpec
	addr    string
}

// New reads the page and prepares the handlers.
func New(cfg *config.Config, kv store.KV, logs logging.LoggerProvider) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		kv:     kv,
		logs:   logs,
		logger: logs.For("server"),
		hub:    session.NewHub(logs.For("hub")),
	}
	if _, err := s.reloadPage(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("/api/contact", contact.NewHandler(
		s.cfg.Contact,
		contact.NotifierFromConfig(s.cfg.Contact, s.logs.For("contact")),
		s.logs.For("contact"),
	))
	mux.Handle("GET /api/layout/ws", s.hub.Handler(session.Deps{
		Config:  s.cfg,
		KV:      s.kv,
		Windows: s.Windows,
		Logger:  s.logs.For("session"),
	}))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Server.StaticDir))))
	mux.HandleFunc("GET /{$}", s.handlePage)
	return mux
}

// Windows returns the windows declared in the page.
func (s *Server) Windows() []layout.WindowSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]layout.WindowSpec(nil), s.windows...)
}

// Addr returns the listen address once Run has started listening.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Status implements ipc.Controller.
func (s *Server) Status() ipc.StatusData {
	return ipc.StatusData{
		Addr:     s.Addr(),
		Page:     s.cfg.Server.Page,
		Windows:  len(s.Windows()),
		Sessions: s.hub.Count(),
		Storage:  string(s.cfg.Storage.Backend),
	}
}

// Reload implements ipc.Controller: it re-reads the page and reloads every
// open tab.
func (s *Server) Reload(reason string) (ipc.ReloadData, error) {
	n, err := s.reloadPage()
	if err != nil {
		return ipc.ReloadData{}, err
	}
	return ipc.ReloadData{Windows: n, Sessions: s.hub.ReloadAll(reason)}, nil
}

func (s *Server) reloadPage() (int, error) {
	specs, err := markup.ParseFile(s.cfg.Server.Page)
	if err != nil {
		return 0, err
	}
	s.setWindows(specs)
	return len(specs), nil
}

func (s *Server) setWindows(specs []layout.WindowSpec) {
	s.mu.Lock()
	s.windows = specs
	s.mu.Unlock()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, opts RunOptions) error {
	if opts.LockPath != "" {
		lock := flock.New(opts.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire instance lock: %w", err)
		}
		if !locked {
			return ErrAlreadyRunning
		}
		defer func() { _ = lock.Unlock() }()
	}

	addr := net.JoinHostPort(s.cfg.Server.Bind, strconv.Itoa(s.cfg.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	if opts.SocketPath != "" {
		ipcServer := ipc.NewServer(opts.SocketPath, s, s.logs.For("ipc"))
		if err := ipcServer.Start(); err != nil {
			_ = ln.Close()
			return err
		}
		defer ipcServer.Stop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.cfg.Server.WatchPage {
		go func() {
			err := markup.Watch(runCtx, s.cfg.Server.Page, s.logs.For("markup"), func(specs []layout.WindowSpec) {
				s.setWindows(specs)
				s.hub.ReloadAll("page changed")
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("page watcher stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("server listening", "addr", s.Addr(), "page", s.cfg.Server.Page, "windows", len(s.Windows()))

	select {
	case err := <-errCh:
		s.hub.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	s.hub.Close()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":       true,
		"windows":  len(s.Windows()),
		"sessions": s.hub.Count(),
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.cfg.Server.Page)
}
