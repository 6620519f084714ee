package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeController struct {
	reasons []string
	err     error
}

func (f *fakeController) Status() StatusData {
	return StatusData{Addr: "127.0.0.1:5000", Windows: 3, Sessions: 2, Storage: "file"}
}

func (f *fakeController) Reload(reason string) (ReloadData, error) {
	f.reasons = append(f.reasons, reason)
	return ReloadData{Windows: 3, Sessions: 2}, f.err
}

// socketPath keeps the path short enough for a unix socket.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "dw")
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, ctrl Controller) *Client {
	t.Helper()
	path := socketPath(t)
	srv := NewServer(path, ctrl, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientWithPath(path)
}

func TestClientServer_Status(t *testing.T) {
	c := startServer(t, &fakeController{})

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running || status.Windows != 3 || status.Sessions != 2 || status.Addr != "127.0.0.1:5000" {
		t.Fatalf("status = %+v", status)
	}
	if err := c.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestClientServer_Reload(t *testing.T) {
	ctrl := &fakeController{}
	c := startServer(t, ctrl)

	data, err := c.Reload("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if data.Sessions != 2 {
		t.Fatalf("reload data = %+v", data)
	}
	if len(ctrl.reasons) != 1 || ctrl.reasons[0] != "ipc" {
		t.Fatalf("reasons = %v", ctrl.reasons)
	}

	ctrl.err = errors.New("page unreadable")
	if _, err := c.Reload("manual"); err == nil || !strings.Contains(err.Error(), "page unreadable") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestClient_NoServer(t *testing.T) {
	c := NewClientWithPath(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestHandleCommand_Unknown(t *testing.T) {
	s := NewServer(socketPath(t), &fakeController{}, nil)
	resp := s.handleCommand(&Request{Command: "BOGUS"})
	if resp.Status != StatusError || !strings.Contains(resp.Error, "BOGUS") {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Err() == nil {
		t.Fatalf("error response reported no error")
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    CommandType
		wantErr bool
	}{
		{name: "status", line: `{"command":"GET_STATUS"}` + "\n", want: CommandGetStatus},
		{name: "reload with payload", line: `{"command":"RELOAD","payload":{"reason":"cli"}}`, want: CommandReload},
		{name: "missing command", line: `{"payload":{}}`, wantErr: true},
		{name: "not json", line: "RELOAD\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.line))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if req.Command != tt.want {
				t.Fatalf("command = %q, want %q", req.Command, tt.want)
			}
		})
	}
}

func TestHandleReload_BadPayload(t *testing.T) {
	ctrl := &fakeController{}
	s := NewServer(socketPath(t), ctrl, nil)
	resp := s.handleCommand(&Request{Command: CommandReload, Payload: []byte(`"nope"`)})
	if resp.Status != StatusError || len(ctrl.reasons) != 0 {
		t.Fatalf("resp = %+v, reasons = %v", resp, ctrl.reasons)
	}
}
