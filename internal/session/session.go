package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/layout"
	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/share"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

// DefaultProfile is used when the page does not name a profile.
const DefaultProfile = "default"

const writeTimeout = 5 * time.Second

var (
	errHelloRequired = errors.New("first message must be hello")
	errReload        = errors.New("page must reload")
)

// Deps are the shared collaborators of every session.
type Deps struct {
	Config *config.Config
	KV     store.KV
	// Windows returns the windows currently declared in the page.
	Windows func() []layout.WindowSpec
	Logger  *logging.ScopedLogger
}

// Session drives one layout manager from one websocket connection. All
// manager calls happen on the goroutine running Run.
type Session struct {
	conn   *websocket.Conn
	deps   Deps
	logger *logging.ScopedLogger

	mu      sync.Mutex
	pageURL string

	st    *store.LayoutStore
	mgr   *layout.Manager
	vp    *viewport.Controller
	codec *share.Codec
}

func newSession(conn *websocket.Conn, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Session{conn: conn, deps: deps, logger: logger}
}

// Run serves the connection until it closes, ctx ends or the page is told
// to reload.
func (s *Session) Run(ctx context.Context) error {
	hello, err := s.read(ctx)
	if err != nil {
		return err
	}
	if hello.Type != TypeHello {
		_ = s.send(ctx, Outbound{Type: TypeError, Error: errHelloRequired.Error()})
		return errHelloRequired
	}
	if err := s.init(ctx, hello); err != nil {
		if errors.Is(err, errReload) {
			return s.Reload(ctx)
		}
		return err
	}

	for {
		msg, err := s.read(ctx)
		if err != nil {
			return err
		}
		if err := s.handle(ctx, msg); err != nil {
			if errors.Is(err, errReload) {
				return s.Reload(ctx)
			}
			return err
		}
	}
}

// init builds the manager for the page described by hello. A shared layout
// in the page URL is installed first and answered with a reload.
func (s *Session) init(ctx context.Context, hello Inbound) error {
	cfg := s.deps.Config.Windows
	s.setPageURL(hello.PageURL)

	profile := hello.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	kv, err := store.Scoped(s.deps.KV, profile)
	if err != nil {
		_ = s.send(ctx, Outbound{Type: TypeError, Error: err.Error()})
		return err
	}
	mode := viewport.ModeFor(hello.ViewportWidth, cfg.Breakpoint)
	s.logger = s.logger.With("profile", profile, "mode", mode.String())
	s.st = store.NewLayoutStore(kv, cfg.StorageKey, mode, s.logger)
	s.codec = share.NewCodec(cfg.ShareParam, s.logger)

	if token, ok := s.codec.TokenFromURL(hello.PageURL); ok {
		s.setPageURL(s.codec.StripToken(hello.PageURL))
		if err := s.codec.Decode(s.st, token); err == nil {
			return errReload
		}
	}

	s.vp = viewport.NewController(hello.ViewportWidth, cfg.Breakpoint, nil)
	s.mgr = layout.NewManager(s.deps.Windows(), s.st, layout.OptionsFromConfig(cfg), s.logger)
	if err := s.mgr.Start(ctx, s.ready()); err != nil {
		return err
	}
	s.logger.Info("session started", "windows", len(s.mgr.Windows()))
	return s.sendLayout(ctx)
}

func (s *Session) handle(ctx context.Context, msg Inbound) error {
	var err error
	switch msg.Type {
	case TypeFocus:
		err = s.mgr.Focus(msg.ID)
	case TypeDragStart:
		err = s.mgr.OnDragStart(msg.ID, origin(msg))
	case TypeDragMove:
		err = s.mgr.OnDragMove(msg.ID, msg.DX, msg.DY)
	case TypeDragEnd:
		err = s.mgr.OnDragEnd(msg.ID)
	case TypeResizeStart:
		err = s.mgr.OnResizeStart(msg.ID, origin(msg))
	case TypeResizeMove:
		if msg.Resize == nil {
			err = layout.ErrInvalidGeometry
			break
		}
		err = s.mgr.OnResizeMove(msg.ID, *msg.Resize)
	case TypeResizeEnd:
		err = s.mgr.OnResizeEnd(msg.ID)
	case TypeViewport:
		if s.vp.Observe(msg.Width) {
			return errReload
		}
		return nil
	case TypeReset:
		if err := s.mgr.Reset(ctx, s.ready()); err != nil {
			return err
		}
	case TypeShare:
		return s.share(ctx, msg.PageURL)
	case TypeMeasured, TypeHello:
		return nil
	default:
		s.logger.Debug("unknown message", "type", msg.Type)
		return nil
	}
	if err != nil {
		s.logger.Debug("event ignored", "type", msg.Type, "id", msg.ID, "reason", err)
	}
	return s.sendLayout(ctx)
}

func origin(msg Inbound) layout.Origin {
	if msg.Origin == nil {
		return layout.Origin{}
	}
	return *msg.Origin
}

// ready asks the page to measure itself and waits for the answer. Events
// that arrive before it are dropped; a breakpoint crossing aborts the wait.
func (s *Session) ready() layout.Ready {
	return layout.ReadyFunc(func(ctx context.Context) (layout.Measurement, error) {
		if err := s.send(ctx, Outbound{Type: TypeMeasure}); err != nil {
			return layout.Measurement{}, err
		}
		for {
			msg, err := s.read(ctx)
			if err != nil {
				return layout.Measurement{}, err
			}
			switch msg.Type {
			case TypeMeasured:
				return msg.measurement(), nil
			case TypeViewport:
				if s.vp != nil && s.vp.Observe(msg.Width) {
					return layout.Measurement{}, errReload
				}
			default:
				s.logger.Debug("dropped event before measurement", "type", msg.Type)
			}
		}
	})
}

func (s *Session) share(ctx context.Context, pageURL string) error {
	if pageURL == "" {
		pageURL = s.PageURL()
	}
	token, err := s.codec.Encode(s.st)
	if err != nil {
		return s.send(ctx, Outbound{Type: TypeShare, Error: err.Error()})
	}
	link, err := s.codec.ShareURL(pageURL, token)
	if err != nil {
		return s.send(ctx, Outbound{Type: TypeShare, Error: err.Error()})
	}
	return s.send(ctx, Outbound{Type: TypeShare, URL: link})
}

// Reload tells the page to reload itself.
func (s *Session) Reload(ctx context.Context) error {
	return s.send(ctx, Outbound{Type: TypeReload, URL: s.PageURL()})
}

// PageURL returns the page address without any shared-layout token.
func (s *Session) PageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageURL
}

func (s *Session) setPageURL(u string) {
	s.mu.Lock()
	s.pageURL = u
	s.mu.Unlock()
}

func (s *Session) sendLayout(ctx context.Context) error {
	p := s.mgr.Render()
	return s.send(ctx, Outbound{Type: TypeLayout, Layout: &p})
}

// read returns the next text message. Binary frames and undecodable JSON are
// skipped.
func (s *Session) read(ctx context.Context) (Inbound, error) {
	for {
		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			return Inbound{}, err
		}
		if typ != websocket.MessageText {
			continue
		}
		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("invalid message", "error", err)
			continue
		}
		return msg, nil
	}
}

func (s *Session) send(ctx context.Context, msg Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(wctx, websocket.MessageText, data)
}
