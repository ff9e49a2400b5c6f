package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/resume-forge/internal/types"
)

// Event names on a generation stream.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// StreamError is the payload of an error event. Generation is set when the failed generation
// was recorded.
type StreamError struct {
	Status     int               `json:"status"`
	Error      string            `json:"error"`
	Generation *types.Generation `json:"generation,omitempty"`
}

// SSEWriter writes Server-Sent Events. Each event carries an increasing id. It is safe for
// concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter sends the event-stream headers. It fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends data as JSON under the event name.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends the terminal error event.
func (s *SSEWriter) WriteError(payload StreamError) {
	s.WriteEvent(EventError, payload) //nolint:errcheck
}

// WriteComplete sends the terminal success event.
func (s *SSEWriter) WriteComplete(payload any) {
	s.WriteEvent(EventComplete, payload) //nolint:errcheck
}
