package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-gemchat/internal/sse"
)

var (
	// ErrUnauthorized is returned for 401 responses; the caller should drop its token.
	ErrUnauthorized = errors.New("not authorized")
	// ErrIncompleteStream means the stream ended without a done or error event.
	ErrIncompleteStream = errors.New("event stream ended before completion")
)

// APIError is a non-2xx JSON response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// StreamError is an in-stream error event.
type StreamError struct {
	Message string
	Details string
}

func (e *StreamError) Error() string {
	if e.Details != "" {
		return e.Message + " (" + e.Details + ")"
	}
	return e.Message
}

// Result summarises one streamed reply.
type Result struct {
	ConversationID uint
	// Title is set only when the stream created the conversation.
	Title     string
	MessageID *uint
	Text      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client talks to the chat API with a Bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string { return c.token }

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func readAPIError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, body.Message)
	}
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if body.Token == "" {
		return errors.New("login response carried no token")
	}
	c.token = body.Token
	return nil
}

// StreamChat sends prompt, feeding text fragments to r, and returns once a
// terminal event arrives. r is always flushed before StreamChat returns, so
// r.Text() and Result.Text hold the complete reply received.
func (c *Client) StreamChat(ctx context.Context, prompt string, conversationID *uint, r *Renderer) (*Result, error) {
	payload := map[string]interface{}{"prompt": prompt}
	if conversationID != nil {
		payload["conversationId"] = *conversationID
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat/stream", payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	result := &Result{}
	if conversationID != nil {
		result.ConversationID = *conversationID
	}
	finish := func(err error) (*Result, error) {
		flushErr := r.Flush()
		result.Text = r.Text()
		if err == nil {
			err = flushErr
		}
		return result, err
	}

	// Lines over sse.MaxLineSize fail with bufio.ErrTooLong; the relay only
	// sends small per-chunk records, so that means a misbehaving server.
	reader := sse.NewReader(resp.Body)
	for {
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return finish(ErrIncompleteStream)
			}
			return finish(fmt.Errorf("read event stream after %s: %w", time.Since(start).Round(time.Millisecond), err))
		}

		ev, ok := Decode([]byte(rec.Data))
		if !ok {
			continue
		}
		switch ev.Kind {
		case KindConversationCreated:
			result.ConversationID = ev.ConversationID
			result.Title = ev.Title
		case KindTextChunk:
			r.Append(ev.TextChunk)
		case KindDone:
			result.ConversationID = ev.ConversationID
			result.MessageID = ev.MessageID
			return finish(nil)
		case KindError:
			return finish(&StreamError{Message: ev.Message, Details: ev.Details})
		}
	}
}
