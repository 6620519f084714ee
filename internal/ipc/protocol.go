// Package ipc is the control socket of a running deskwin server. Each
// connection carries one JSON line in each direction.
package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CommandType names a control command.
type CommandType string

const (
	// CommandReload re-reads the page and sends every open tab a reload.
	CommandReload CommandType = "RELOAD"
	// CommandGetStatus reports the listen address, page and session count.
	CommandGetStatus CommandType = "GET_STATUS"
)

// ResponseStatus is the outcome field of a Response.
type ResponseStatus string

const (
	StatusOK    ResponseStatus = "OK"
	StatusError ResponseStatus = "ERROR"
)

var errNoCommand = errors.New("missing command")

// Request is sent by deskwin status, deskwin reload and the MCP tools.
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries either Data or Error.
type Response struct {
	Status ResponseStatus  `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is the GET_STATUS result.
type StatusData struct {
	Addr          string `json:"addr"`
	Page          string `json:"page"`
	Windows       int    `json:"windows"`
	Sessions      int    `json:"sessions"`
	Storage       string `json:"storage"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Running       bool   `json:"running"`
}

// ReloadPayload is the optional payload of RELOAD.
type ReloadPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ReloadData is returned by RELOAD.
type ReloadData struct {
	Windows  int `json:"windows"`
	Sessions int `json:"sessions"`
}

// okResponse wraps data; a nil data leaves Data empty.
func okResponse(data any) *Response {
	resp := &Response{Status: StatusOK}
	if data == nil {
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return errorResponse("encode %T: %v", data, err)
	}
	resp.Data = raw
	return resp
}

func errorResponse(format string, args ...any) *Response {
	return &Response{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

// ParseRequest decodes one request line.
func ParseRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(bytes.TrimSpace(line), &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	if req.Command == "" {
		return nil, errNoCommand
	}
	return &req, nil
}

// decodePayload fills v from the payload; an absent payload leaves v as is.
func (r *Request) decodePayload(v any) error {
	if len(r.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(r.Payload, v)
}

// Err turns an ERROR response into a Go error.
func (r *Response) Err() error {
	if r.Status == StatusError {
		return fmt.Errorf("server error: %s", r.Error)
	}
	return nil
}

func (r *Response) decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("parse %T: %w", v, err)
	}
	return nil
}

// writeLine writes v as one newline-terminated JSON line.
func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
