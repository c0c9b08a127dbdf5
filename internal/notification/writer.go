package notification

import (
	"fmt"
	"io"
	"sync"
)

// writerChannel prints each message on its own line
type writerChannel struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterChannel returns a channel that prints messages to w.
func NewWriterChannel(w io.Writer) NotificationChannel {
	return &writerChannel{w: w}
}

func (c *writerChannel) Send(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, n.Message)
	return err
}

func (c *writerChannel) Close() error {
	return nil
}

// Recorder is a channel that keeps every notification in memory. The TUI
// shows the latest one in its status line.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records n.
func (r *Recorder) Send(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
	return nil
}

// Close is a no-op.
func (r *Recorder) Close() error {
	return nil
}

// All returns a copy of everything recorded.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = nil
}

var _ NotificationChannel = (*Recorder)(nil)
