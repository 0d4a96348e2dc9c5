package socket

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/model"
)

// serve answers every message with fn's response until the server stops
func serve(server *Server, fn func(Message) *Response) {
	go func() {
		for msg := range server.Messages() {
			msg.ResponseChan <- fn(msg)
		}
	}()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	server, err := NewServer(os.Getpid())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(server.Stop)
	server.Start()
	return server
}

func TestServerClient(t *testing.T) {
	server := newTestServer(t)

	received := make(chan Message, 1)
	serve(server, func(msg Message) *Response {
		received <- msg
		return &Response{Success: true, Message: "ok", Data: json.RawMessage(`["bar"]`)}
	})

	client, err := NewClient(server.SocketPath())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	msg := Message{
		Command: CommandSelect,
		Keys:    []string{"bar"},
		State:   "on",
		Patch:   &model.Patch{Label: model.String("Bar")},
	}
	response, err := client.Send(msg)
	if err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}
	if !response.Success {
		t.Errorf("Expected success=true, got success=false: %s", response.Message)
	}
	if string(response.Data) != `["bar"]` {
		t.Errorf("Expected data [\"bar\"], got %s", response.Data)
	}

	select {
	case got := <-received:
		if got.Command != CommandSelect {
			t.Errorf("Expected command=%s, got command=%s", CommandSelect, got.Command)
		}
		if len(got.Keys) != 1 || got.Keys[0] != "bar" {
			t.Errorf("Expected keys=[bar], got keys=%v", got.Keys)
		}
		if got.State != "on" {
			t.Errorf("Expected state=on, got state=%s", got.State)
		}
		if got.Patch == nil || got.Patch.Label == nil || *got.Patch.Label != "Bar" {
			t.Errorf("Expected patch label Bar, got %+v", got.Patch)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestServerRejectsInvalidMessages(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{name: "Invalid JSON", payload: "{not json}\n"},
		{name: "Missing command", payload: `{"keys":["a"]}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := net.Dial("unix", server.SocketPath())
			if err != nil {
				t.Fatalf("Failed to connect: %v", err)
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(2 * time.Second))

			if _, err := conn.Write([]byte(tt.payload)); err != nil {
				t.Fatalf("Failed to write: %v", err)
			}
			var response Response
			if err := json.NewDecoder(conn).Decode(&response); err != nil {
				t.Fatalf("Failed to read response: %v", err)
			}
			if response.Success {
				t.Errorf("Expected failure for %s", tt.name)
			}
		})
	}
}

func TestFindRunningInstance(t *testing.T) {
	server := newTestServer(t)

	socketPath, foundPid, err := FindRunningInstance()
	if err != nil {
		t.Fatalf("Failed to find running instance: %v", err)
	}
	if socketPath != server.SocketPath() {
		t.Errorf("Expected socketPath=%s, got socketPath=%s", server.SocketPath(), socketPath)
	}
	if foundPid != os.Getpid() {
		t.Errorf("Expected pid=%d, got pid=%d", os.Getpid(), foundPid)
	}
}

func TestFindRunningInstanceNone(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	if _, _, err := FindRunningInstance(); !errors.Is(err, ErrNoInstance) {
		t.Errorf("Expected ErrNoInstance, got %v", err)
	}
}

func TestFindRunningInstanceSkipsStale(t *testing.T) {
	server := newTestServer(t)

	stale := filepath.Join(SocketDir(), socketName(os.Getpid()+1))
	if err := os.WriteFile(stale, nil, 0600); err != nil {
		t.Fatalf("Failed to write stale socket: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(stale, future, future); err != nil {
		t.Fatalf("Failed to touch stale socket: %v", err)
	}

	socketPath, _, err := FindRunningInstance()
	if err != nil {
		t.Fatalf("Failed to find running instance: %v", err)
	}
	if socketPath != server.SocketPath() {
		t.Errorf("Expected socketPath=%s, got socketPath=%s", server.SocketPath(), socketPath)
	}
}

func TestParseSocketName(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		ok       bool
	}{
		{"treestate-42.sock", 42, true},
		{socketName(7), 7, true},
		{"treestate-042.sock", 0, false},
		{"treestate-abc.sock", 0, false},
		{"treestate-42.sock.bak", 0, false},
		{"tuo-42.sock", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, ok := parseSocketName(tt.name)
			if ok != tt.ok || pid != tt.expected {
				t.Errorf("Expected (%d, %v), got (%d, %v)", tt.expected, tt.ok, pid, ok)
			}
		})
	}
}

func TestClientCall(t *testing.T) {
	server := newTestServer(t)
	serve(server, func(msg Message) *Response {
		if msg.Command == CommandFind {
			return &Response{Success: true, Message: "ok", Data: json.RawMessage(`["foo","bar"]`)}
		}
		return &Response{Success: false, Message: "unknown command: " + msg.Command}
	})

	client, err := NewClient(server.SocketPath())
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	var keys []string
	if err := client.Call(Message{Command: CommandFind, Query: "o"}, &keys); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "foo" || keys[1] != "bar" {
		t.Errorf("Expected [foo bar], got %v", keys)
	}

	err = client.Call(Message{Command: "bogus"}, nil)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected CommandError, got %v", err)
	}
	if cmdErr.Command != "bogus" || cmdErr.Message != "unknown command: bogus" {
		t.Errorf("Unexpected command error: %+v", cmdErr)
	}
}

func TestNewServerAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.sock")
	server, err := NewServerAt(path)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	server.Start()
	serve(server, func(msg Message) *Response {
		return &Response{Success: true, Message: msg.Command}
	})

	client, err := NewClient(path)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	response, err := client.Send(Message{Command: CommandGet})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if response.Message != CommandGet {
		t.Errorf("Expected message %s, got %s", CommandGet, response.Message)
	}

	server.Stop()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Socket file should be removed on stop")
	}
	if _, err := NewClient(path); err == nil {
		t.Errorf("Expected error connecting to a stopped server")
	}
}

func TestMessageSelection(t *testing.T) {
	if !(Message{All: true, Keys: []string{"a"}}).Selection().All {
		t.Errorf("Expected all selection")
	}
	sel := Message{Keys: []string{"b", "a"}}.Selection()
	if sel.All || sel.String() != "[a,b]" {
		t.Errorf("Expected [a,b], got %s", sel)
	}
}
