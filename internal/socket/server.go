package socket

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"
)

const socketPrefix = "chunkview-"

// Server accepts commands for a running viewer on a Unix socket
type Server struct {
	socketPath string
	listener   net.Listener
	msgChan    chan Message
	stopChan   chan struct{}
	timeout    time.Duration
}

// SocketDir returns $XDG_RUNTIME_DIR/chunkview, or ~/.local/share/chunkview
// when XDG_RUNTIME_DIR is unset
func SocketDir() string {
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "chunkview")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "chunkview")
}

// NewServer creates a server for pid in SocketDir
func NewServer(pid int) (*Server, error) {
	return NewServerAt(SocketDir(), pid)
}

// NewServerAt creates a server for pid in dir
func NewServerAt(dir string, pid int) (*Server, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	socketPath := filepath.Join(dir, fmt.Sprintf("%s%d.sock", socketPrefix, pid))
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on socket: %w", err)
	}

	log.Printf("Socket server listening on: %s", socketPath)

	return &Server{
		socketPath: socketPath,
		listener:   listener,
		msgChan:    make(chan Message, 10),
		stopChan:   make(chan struct{}),
		timeout:    10 * time.Second,
	}, nil
}

// Start begins accepting connections on the socket
func (s *Server) Start() {
	go s.acceptLoop()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
				log.Printf("Error accepting connection: %v", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)
	reply := func(r *Response) {
		if err := encoder.Encode(r); err != nil {
			log.Printf("Error sending response: %v", err)
		}
	}

	var msg Message
	if err := decoder.Decode(&msg); err != nil {
		if err != io.EOF {
			log.Printf("Error decoding message: %v", err)
		}
		reply(&Response{Message: fmt.Sprintf("Invalid message format: %v", err)})
		return
	}

	switch msg.Command {
	case "":
		reply(&Response{Message: "Missing command field"})
		return
	case CommandRun:
		if msg.Text == "" {
			reply(&Response{Message: "Missing text field"})
			return
		}
	case CommandState:
		msg.ResponseChan = make(chan *Response, 1)
	default:
		reply(&Response{Message: "Unknown command: " + msg.Command})
		return
	}

	select {
	case s.msgChan <- msg:
		if msg.ResponseChan == nil {
			reply(&Response{Success: true, Message: "Command queued"})
			return
		}
		select {
		case response := <-msg.ResponseChan:
			reply(response)
		case <-time.After(s.timeout):
			reply(&Response{Message: "Command timed out"})
		}
	case <-s.stopChan:
		reply(&Response{Message: "Server is shutting down"})
	}
}

// Messages returns the channel for receiving messages
func (s *Server) Messages() <-chan Message {
	return s.msgChan
}

// SocketPath returns the path to the Unix socket
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Stop stops the server and removes the socket file
func (s *Server) Stop() {
	close(s.stopChan)
	if s.listener != nil {
		s.listener.Close()
	}
	if s.socketPath != "" {
		os.Remove(s.socketPath)
	}
	log.Printf("Socket server stopped")
}
