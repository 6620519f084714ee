package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMessageRequired is returned before sending when the message is empty.
	ErrMessageRequired = errors.New("Message is required.")
	// ErrNetwork is returned when the endpoint cannot be reached.
	ErrNetwork = errors.New("Network error. Please try again.")
)

// RejectedError carries the error text of a non-accepted response.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return "Error: " + msg
}

// Client submits the contact form to a running server.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client posting to baseURL + "/api/contact". A nil
// httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/contact",
		http:     httpClient,
	}
}

// Submit sends s. It returns nil only when the server accepted the message
// with 202; no retry is attempted.
func (c *Client) Submit(ctx context.Context, s Submission) error {
	if s.Message == "" {
		return ErrMessageRequired
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		return nil
	}
	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return &RejectedError{Status: resp.StatusCode}
	}
	return &RejectedError{Status: resp.StatusCode, Message: r.Error}
}
