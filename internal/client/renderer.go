package client

import (
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler runs fn once on a later frame. The returned cancel stops fn if it
// has not started yet.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// TimerScheduler fires frames from time.AfterFunc.
type TimerScheduler struct {
	Interval time.Duration
}

func (s TimerScheduler) Schedule(fn func()) func() {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	t := time.AfterFunc(interval, fn)
	return func() { t.Stop() }
}

type RendererOption func(*Renderer)

func WithScheduler(s Scheduler) RendererOption {
	return func(r *Renderer) { r.scheduler = s }
}

// Renderer collects text fragments and writes them to out at most once per
// frame. Flush writes whatever is pending immediately.
type Renderer struct {
	mu        sync.Mutex
	out       io.Writer
	scheduler Scheduler

	pending strings.Builder
	text    strings.Builder
	cancel  func()
	paints  int
	err     error
}

func NewRenderer(out io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{out: out, scheduler: TimerScheduler{Interval: DefaultFrameInterval}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Append queues fragment for the next frame.
func (r *Renderer) Append(fragment string) {
	if fragment == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending.WriteString(fragment)
	r.text.WriteString(fragment)
	if r.cancel == nil {
		r.cancel = r.scheduler.Schedule(r.frame)
	}
}

func (r *Renderer) frame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = nil
	r.paintLocked()
}

// Flush cancels the scheduled frame and paints now. It returns the first
// write error seen by the renderer.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.paintLocked()
	return r.err
}

func (r *Renderer) paintLocked() {
	if r.pending.Len() == 0 {
		return
	}
	chunk := r.pending.String()
	r.pending.Reset()
	r.paints++
	if r.err != nil {
		return
	}
	if _, err := io.WriteString(r.out, chunk); err != nil {
		r.err = err
	}
}

// Text returns every fragment appended so far, painted or not.
func (r *Renderer) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text.String()
}

// Paints returns how many writes reached out.
func (r *Renderer) Paints() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paints
}
