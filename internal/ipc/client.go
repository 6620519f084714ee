package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/cyberpodolia/deskwin/internal/runtimepath"
)

// Client talks to a running server over its control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithPath(socketPath)
}

// NewClientWithPath creates a client for the socket at socketPath.
func NewClientWithPath(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w (is deskwin serve running?)", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeLine(conn, req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reload asks the server to re-read the page and reload every open tab.
func (c *Client) Reload(reason string) (*ReloadData, error) {
	payload, err := json.Marshal(ReloadPayload{Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reload payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{Command: CommandReload, Payload: payload})
	if err != nil {
		return nil, err
	}

	var data ReloadData
	if err := resp.decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatus retrieves server status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := resp.decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the server is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
