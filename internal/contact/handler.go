package contact

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/logging"
)

// Response messages returned to the form.
const (
	MsgBadRequest    = "Bad request"
	MsgMethod        = "Method Not Allowed"
	MsgServerConfig  = "Server configuration error."
	MsgSendFailed    = "Failed to send message."
	defaultName      = "Anonymous"
	maxBodyBytes     = 64 << 10
	messageRangeText = "Message must be between %d and %d characters."
)

// Response is the JSON reply of the endpoint.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler serves POST /api/contact.
type Handler struct {
	notifier Notifier
	min      int
	max      int
	logger   *logging.ScopedLogger
}

// NewHandler returns a handler. A nil notifier makes every valid submission
// fail with a configuration error.
func NewHandler(cfg config.ContactConfig, notifier Notifier, logger *logging.ScopedLogger) *Handler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	minLen, maxLen := cfg.MinMessage, cfg.MaxMessage
	if minLen <= 0 {
		minLen = 2
	}
	if maxLen < minLen {
		maxLen = 4000
	}
	return &Handler{notifier: notifier, min: minLen, max: maxLen, logger: logger}
}

// NotifierFromConfig builds the Telegram notifier, or returns nil when the
// credentials are missing.
func NotifierFromConfig(cfg config.ContactConfig, logger *logging.ScopedLogger) Notifier {
	token, chatID, err := cfg.TelegramCredentials()
	if err != nil && logger != nil {
		logger.Warn("failed to load telegram credentials", "error", err)
	}
	if token == "" || chatID == "" {
		return nil
	}
	return NewTelegramNotifier(cfg.APIBase, token, chatID, timeoutFrom(cfg))
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: MsgMethod})
		return
	}

	var sub Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: MsgBadRequest})
		return
	}
	if sub.Website != "" {
		h.logger.Info("contact honeypot triggered", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusBadRequest, Response{Error: MsgBadRequest})
		return
	}

	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		sub.Name = defaultName
	}
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Company = strings.TrimSpace(sub.Company)
	sub.Message = strings.TrimSpace(sub.Message)

	if n := utf8.RuneCountInString(sub.Message); n < h.min || n > h.max {
		writeJSON(w, http.StatusBadRequest, Response{Error: h.rangeMessage()})
		return
	}

	if h.notifier == nil {
		h.logger.Error("contact notifier is not configured")
		writeJSON(w, http.StatusInternalServerError, Response{Error: MsgServerConfig})
		return
	}

	if err := h.notifier.Notify(r.Context(), FormatMessage(sub, remoteIP(r))); err != nil {
		h.logger.Error("failed to send contact message", "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Error: MsgSendFailed})
		return
	}
	h.logger.Info("contact message sent", "message_len", len(sub.Message))
	writeJSON(w, http.StatusAccepted, Response{OK: true})
}

func (h *Handler) rangeMessage() string {
	return fmt.Sprintf(messageRangeText, h.min, h.max)
}

func timeoutFrom(cfg config.ContactConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
