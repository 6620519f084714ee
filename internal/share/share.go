// Package share turns a persisted layout record into a URL token and back.
package share

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

// DefaultParam is the query parameter carrying the token.
const DefaultParam = "layout"

var (
	// ErrNothingToShare is returned by Encode when no layout is stored.
	ErrNothingToShare = errors.New("no custom layout to share")
	// ErrMobileIgnored is returned by Decode in mobile mode.
	ErrMobileIgnored = errors.New("shared layouts are ignored in mobile mode")
	// ErrInvalidToken is returned for tokens that are not valid base64.
	ErrInvalidToken = errors.New("invalid layout token")
)

// Codec encodes and decodes shared layouts.
type Codec struct {
	param  string
	logger *logging.ScopedLogger
}

// NewCodec returns a codec using param as the query parameter. An empty
// param means DefaultParam; logger may be nil.
func NewCodec(param string, logger *logging.ScopedLogger) *Codec {
	if param == "" {
		param = DefaultParam
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Codec{param: param, logger: logger}
}

// Param returns the query parameter name.
func (c *Codec) Param() string { return c.param }

// Encode returns the stored record as a base64 token.
func (c *Codec) Encode(st *store.LayoutStore) (string, error) {
	raw, ok := st.Raw()
	if !ok {
		return "", ErrNothingToShare
	}
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Decode validates token and installs it as the stored layout. A nil error
// means the page must reload to apply it. On any failure the stored record
// is left as it was.
func (c *Codec) Decode(st *store.LayoutStore, token string) error {
	if st.Mode() == viewport.Mobile {
		return ErrMobileIgnored
	}
	raw, err := decodeToken(token)
	if err != nil {
		c.logger.Warn("failed to load layout from URL", "error", err)
		return err
	}
	if err := st.Overwrite(string(raw)); err != nil {
		c.logger.Warn("failed to load layout from URL", "error", err)
		return err
	}
	c.logger.Info("shared layout installed", "key", st.Key(), "bytes", len(raw))
	return nil
}

// decodeToken accepts standard and URL-safe alphabets, padded or not. Spaces
// are read as '+', which form decoding turns them into.
func decodeToken(token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	token = strings.ReplaceAll(token, " ", "+")
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(token); err == nil {
			return raw, nil
		}
	}
	return nil, ErrInvalidToken
}

// ShareURL returns pageURL with the token set as the query parameter.
func (c *Codec) ShareURL(pageURL, token string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	q := u.Query()
	q.Set(c.param, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// TokenFromURL returns the token carried by pageURL, if any.
func (c *Codec) TokenFromURL(pageURL string) (string, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	token := u.Query().Get(c.param)
	return token, token != ""
}

// StripToken returns pageURL without the token parameter, so reloading it
// does not install the layout again.
func (c *Codec) StripToken(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	if !q.Has(c.param) {
		return pageURL
	}
	q.Del(c.param)
	u.RawQuery = q.Encode()
	return u.String()
}
