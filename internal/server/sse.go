package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// sseRetry is the reconnect delay suggested to clients when a stream drops.
const sseRetry = 3 * time.Second

var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes Server-Sent Events and flushes after each one.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sends the event-stream headers and the retry hint.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &SSEWriter{w: w, flusher: flusher}
	if err := s.write(fmt.Sprintf("retry: %d\n\n", sseRetry.Milliseconds())); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SSEWriter) write(frame string) error {
	if _, err := fmt.Fprint(s.w, frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteEvent sends data as JSON under the named event.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return s.write(fmt.Sprintf("event: %s\ndata: %s\n\n", event, payload))
}

// WriteHeartbeat sends a comment line so proxies keep the stream open.
func (s *SSEWriter) WriteHeartbeat() error {
	return s.write(": ping\n\n")
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	_ = s.WriteEvent("error", ErrorBody{Error: message})
}
