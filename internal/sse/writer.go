// Package sse writes and reads Server-Sent Events streams whose records carry
// a single JSON "data:" payload.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrStreamClosed is returned by Send once the client has gone away or a
// previous write failed.
var ErrStreamClosed = errors.New("sse: stream closed")

// ErrFlushUnsupported means the ResponseWriter cannot push partial responses.
var ErrFlushUnsupported = errors.New("sse: response writer does not support flushing")

// Writer emits JSON events over an http.ResponseWriter.
type Writer struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	opened bool
	closed bool
}

// NewWriter checks up front that w can be flushed, so callers can still fall
// back to a plain JSON error before any header is written.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	if _, ok := w.(http.Flusher); !ok {
		if _, ok := w.(interface{ Unwrap() http.ResponseWriter }); !ok {
			return nil, ErrFlushUnsupported
		}
	}
	return &Writer{w: w, rc: http.NewResponseController(w)}, nil
}

// Open writes the event-stream headers and flushes them.
func (s *Writer) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
	s.opened = true
	return s.flushLocked()
}

// Opened reports whether headers have been sent.
func (s *Writer) Opened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Send marshals v and writes it as one "data:" record.
func (s *Writer) Send(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return errors.New("sse: Send before Open")
	}
	if s.closed {
		return ErrStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		s.closed = true
		return fmt.Errorf("%w: %v", ErrStreamClosed, err)
	}
	return s.flushLocked()
}

// Comment writes an SSE comment line, used as a keep-alive.
func (s *Writer) Comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened || s.closed {
		return ErrStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		s.closed = true
		return fmt.Errorf("%w: %v", ErrStreamClosed, err)
	}
	return s.flushLocked()
}

func (s *Writer) flushLocked() error {
	if err := s.rc.Flush(); err != nil {
		s.closed = true
		return fmt.Errorf("%w: %v", ErrStreamClosed, err)
	}
	return nil
}
