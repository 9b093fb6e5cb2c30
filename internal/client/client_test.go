package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iyunix/go-gemchat/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler holds frames until the test runs them.
type manualScheduler struct {
	frames []*func()
}

func (s *manualScheduler) Schedule(fn func()) func() {
	f := &fn
	s.frames = append(s.frames, f)
	return func() { *f = nil }
}

func (s *manualScheduler) pending() int {
	n := 0
	for _, f := range s.frames {
		if *f != nil {
			n++
		}
	}
	return n
}

func (s *manualScheduler) runFrame() {
	frames := s.frames
	s.frames = nil
	for _, f := range frames {
		if fn := *f; fn != nil {
			fn()
		}
	}
}

func TestDecode(t *testing.T) {
	one := uint(9)
	tests := []struct {
		name string
		data string
		want client.Event
		ok   bool
	}{
		{name: "created", data: `{"event":"conversationCreated","conversationId":3,"title":"Hi"}`,
			want: client.Event{Kind: client.KindConversationCreated, ConversationID: 3, Title: "Hi"}, ok: true},
		{name: "chunk", data: `{"textChunk":"abc"}`, want: client.Event{Kind: client.KindTextChunk, TextChunk: "abc"}, ok: true},
		{name: "empty chunk", data: `{"textChunk":""}`, want: client.Event{Kind: client.KindTextChunk}, ok: true},
		{name: "done", data: `{"event":"done","messageId":9,"conversationId":3}`,
			want: client.Event{Kind: client.KindDone, ConversationID: 3, MessageID: &one}, ok: true},
		{name: "done without message", data: `{"event":"done","messageId":null,"conversationId":3}`,
			want: client.Event{Kind: client.KindDone, ConversationID: 3}, ok: true},
		{name: "error", data: `{"event":"error","message":"AI provider error.","details":"x"}`,
			want: client.Event{Kind: client.KindError, Message: "AI provider error.", Details: "x"}, ok: true},
		{name: "unknown event", data: `{"event":"ping"}`},
		{name: "no fields", data: `{}`},
		{name: "not json", data: `hello`},
		{name: "array", data: `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := client.Decode([]byte(tt.data))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, client.KindDone.Terminal())
	assert.False(t, client.KindTextChunk.Terminal())
}

func TestRendererBatchesPerFrame(t *testing.T) {
	var out strings.Builder
	sched := &manualScheduler{}
	r := client.NewRenderer(&out, client.WithScheduler(sched))

	r.Append("Hel")
	r.Append("lo")
	r.Append(", ")
	assert.Equal(t, 1, sched.pending())
	assert.Empty(t, out.String())

	sched.runFrame()
	assert.Equal(t, "Hello, ", out.String())
	assert.Equal(t, 1, r.Paints())

	r.Append("world")
	r.Append("!")
	require.NoError(t, r.Flush())
	assert.Equal(t, "Hello, world!", out.String())
	assert.Equal(t, 2, r.Paints())

	// The cancelled frame must not repaint.
	sched.runFrame()
	assert.Equal(t, 2, r.Paints())
	assert.Equal(t, "Hello, world!", r.Text())
}

func TestRendererFlushReportsWriteError(t *testing.T) {
	r := client.NewRenderer(failingWriter{}, client.WithScheduler(&manualScheduler{}))
	r.Append("x")
	assert.Error(t, r.Flush())
	assert.Equal(t, "x", r.Text())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func sseServer(t *testing.T, status int, records ...string) (*httptest.Server, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r.Clone(context.Background())
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = fmt.Fprint(w, records[0])
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, rec := range records {
			_, _ = fmt.Fprint(w, rec)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestStreamChat(t *testing.T) {
	srv, got := sseServer(t, http.StatusOK,
		": heartbeat\n\n",
		"data: {\"event\":\"conversationCreated\",\"conversationId\":5,\"title\":\"Hello\"}\n\n",
		"data: {\"textChunk\":\"Hi\"}\n\n",
		"data: {\"textChunk\":\" there\"}\n\n",
		"data: {\"event\":\"done\",\"messageId\":12,\"conversationId\":5}\n\n",
	)

	var out strings.Builder
	c := client.New(srv.URL+"/", client.WithToken("tok"))
	r := client.NewRenderer(&out)
	res, err := c.StreamChat(context.Background(), "Hello", nil, r)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "/api/chat/stream", got.URL.Path)
	assert.Equal(t, uint(5), res.ConversationID)
	assert.Equal(t, "Hello", res.Title)
	require.NotNil(t, res.MessageID)
	assert.Equal(t, uint(12), *res.MessageID)
	assert.Equal(t, "Hi there", res.Text)
	assert.Equal(t, "Hi there", out.String())
}

func TestStreamChatErrorEvent(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK,
		"data: {\"textChunk\":\"partial\"}\n\n",
		"data: {\"event\":\"error\",\"message\":\"AI provider error.\"}\n\n",
	)
	var out strings.Builder
	res, err := client.New(srv.URL).StreamChat(context.Background(), "x", nil, client.NewRenderer(&out))

	var streamErr *client.StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "AI provider error.", streamErr.Message)
	assert.Equal(t, "partial", res.Text)
	assert.Equal(t, "partial", out.String())
}

func TestStreamChatIncomplete(t *testing.T) {
	srv, _ := sseServer(t, http.StatusOK, "data: {\"textChunk\":\"cut\"}\n\n")
	var out strings.Builder
	res, err := client.New(srv.URL).StreamChat(context.Background(), "x", nil, client.NewRenderer(&out))
	assert.ErrorIs(t, err, client.ErrIncompleteStream)
	assert.Equal(t, "cut", res.Text)
}

func TestStreamChatHTTPErrors(t *testing.T) {
	srv, _ := sseServer(t, http.StatusUnauthorized, `{"message":"Not authorized, token expired."}`)
	_, err := client.New(srv.URL).StreamChat(context.Background(), "x", nil, client.NewRenderer(&strings.Builder{}))
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	srv, _ = sseServer(t, http.StatusNotFound, `{"message":"Conversation not found."}`)
	id := uint(99)
	_, err = client.New(srv.URL).StreamChat(context.Background(), "x", &id, client.NewRenderer(&strings.Builder{}))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Conversation not found.", apiErr.Message)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid username or password."}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Login successful.","token":"fresh"}`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	assert.ErrorIs(t, c.Login(context.Background(), "u", "bad"), client.ErrUnauthorized)
	require.NoError(t, c.Login(context.Background(), "u", "pw"))
	assert.Equal(t, "fresh", c.Token())
}
