package socket

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Client sends commands to a running viewer
type Client struct {
	socketPath string
}

// FindRunningInstance returns the socket path and PID of the most recently
// started viewer in SocketDir
func FindRunningInstance() (string, int, error) {
	return FindRunningInstanceIn(SocketDir())
}

// FindRunningInstanceIn is FindRunningInstance for a specific directory
func FindRunningInstanceIn(socketDir string) (string, int, error) {
	var newest string
	var newestTime time.Time
	err := filepath.WalkDir(socketDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() || !strings.HasPrefix(name, socketPrefix) || !strings.HasSuffix(name, ".sock") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest, newestTime = path, info.ModTime()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return "", 0, fmt.Errorf("error scanning socket directory: %w", err)
	}
	if newest == "" {
		return "", 0, fmt.Errorf("no running chunkview instance found")
	}

	pidStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(newest), socketPrefix), ".sock")
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		pid = 0
	}
	return newest, pid, nil
}

// NewClient creates a client for the socket at socketPath
func NewClient(socketPath string) (*Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, fmt.Errorf("socket not found: %w", err)
	}
	return &Client{socketPath: socketPath}, nil
}

// Send sends a message to the server and returns the response
func (c *Client) Send(msg Message) (*Response, error) {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(15 * time.Second))

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	var response Response
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}
	return &response, nil
}

// SendCommand queues a viewer command line such as "fold el:e2"
func (c *Client) SendCommand(command string) (*Response, error) {
	return c.Send(Message{Command: CommandRun, Text: command})
}

// QueryState asks the viewer for its visible sequence and groups
func (c *Client) QueryState() (*Response, error) {
	return c.Send(Message{Command: CommandState})
}
