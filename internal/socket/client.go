package socket

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNoInstance is returned when SocketDir holds no live instance socket
var ErrNoInstance = errors.New("no running treestate instance")

// CommandError is a reply in which the instance rejected a command
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Command, e.Message)
}

// Client talks to one running instance. Every command opens its own
// connection and waits until the instance has applied it.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// FindRunningInstance returns the socket of the most recently started
// instance in SocketDir and its pid. Sockets of instances that are gone
// are skipped.
func FindRunningInstance() (string, int, error) {
	dir := SocketDir()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", 0, fmt.Errorf("failed to scan socket directory: %w", err)
	}

	var found string
	var foundPid int
	var newest time.Time
	for _, entry := range entries {
		pid, ok := parseSocketName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().After(newest) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !listening(path) {
			continue
		}
		found, foundPid, newest = path, pid, info.ModTime()
	}

	if found == "" {
		return "", 0, ErrNoInstance
	}
	return found, foundPid, nil
}

// listening reports whether something accepts connections on path
func listening(path string) bool {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// NewClient creates a client for the instance listening on socketPath
func NewClient(socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, fmt.Errorf("socket not found: %w", err)
	}
	return &Client{
		socketPath: socketPath,
		timeout:    commandTimeout + 5*time.Second,
	}, nil
}

// Send delivers msg and returns the instance's reply as is
func (c *Client) Send(msg Message) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", msg.Command, err)
	}

	var response Response
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to read %s reply: %w", msg.Command, err)
	}
	return &response, nil
}

// Call sends msg and decodes the reply data into out, which may be nil.
// A rejected command is returned as a *CommandError.
func (c *Client) Call(msg Message, out any) error {
	response, err := c.Send(msg)
	if err != nil {
		return err
	}
	if !response.Success {
		return &CommandError{Command: msg.Command, Message: response.Message}
	}
	if out == nil || len(response.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(response.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", msg.Command, err)
	}
	return nil
}
