package socket

// Message is a request sent to a running chunkview instance
type Message struct {
	Command string `json:"command"`
	// Text is the viewer command line for CommandRun, e.g. "fold el:e2"
	Text string `json:"text,omitempty"`

	// ResponseChan is set by the server for synchronous commands; the
	// receiver must send exactly one response on it
	ResponseChan chan *Response `json:"-"`
}

// Response is the server's reply
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Visible is the visible sequence, filled by CommandState
	Visible []string `json:"visible,omitempty"`
	// Groups maps collapsed group IDs to their children, filled by CommandState
	Groups map[string][]string `json:"groups,omitempty"`
}

// Command types
const (
	// CommandRun queues a viewer command and returns immediately
	CommandRun = "run"
	// CommandState waits for the viewer to report its folding state
	CommandState = "state"
)
