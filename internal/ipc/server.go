package ipc

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/cyberpodolia/deskwin/internal/logging"
)

// Controller is the part of the running server the socket exposes.
type Controller interface {
	Status() StatusData
	// Reload re-reads the page and tells every open tab to reload.
	Reload(reason string) (ReloadData, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	logger       *logging.ScopedLogger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server listening on socketPath. Any stale socket at
// that path is removed.
func NewServer(socketPath string, ctrl Controller, logger *logging.ScopedLogger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	_ = os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.reply(conn, errorResponse("invalid request: %v", err))
		return
	}
	s.reply(conn, s.handleCommand(req))
}

func (s *Server) reply(conn net.Conn, resp *Response) {
	if err := writeLine(conn, resp); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(req)
	case CommandGetStatus:
		return s.handleGetStatus()
	default:
		return errorResponse("unknown command: %s", req.Command)
	}
}

func (s *Server) handleReload(req *Request) *Response {
	var p ReloadPayload
	if err := req.decodePayload(&p); err != nil {
		return errorResponse("invalid reload payload: %v", err)
	}
	if p.Reason == "" {
		p.Reason = "ipc"
	}
	s.logger.Info("IPC: received RELOAD", "reason", p.Reason)

	data, err := s.ctrl.Reload(p.Reason)
	if err != nil {
		return errorResponse("failed to reload: %v", err)
	}
	return okResponse(data)
}

func (s *Server) handleGetStatus() *Response {
	status := s.ctrl.Status()
	status.UptimeSeconds = int64(s.Uptime().Seconds())
	status.Running = true
	return okResponse(status)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	_ = os.Remove(s.socketPath)
}
