// Package status carries human-readable stage events from the transcription
// pipeline to whoever started it.
//
// A Sink is one-way: the pipeline never waits on it and never learns whether
// a message was shown. Adapters cover the common consumers.
package status

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/voxnote/logger"
)

// Sink receives ordered stage messages.
type Sink interface {
	Report(message string)
}

// Func adapts a plain function to a Sink.
type Func func(message string)

// Report calls f.
func (f Func) Report(message string) {
	if f != nil {
		f(message)
	}
}

type discard struct{}

func (discard) Report(string) {}

// Discard drops every message.
var Discard Sink = discard{}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Channel delivers messages over a buffered channel without ever blocking
// the sender. Messages that do not fit are dropped and counted.
type Channel struct {
	ch      chan string
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
}

// NewChannel creates a Channel with the given buffer size (minimum 1).
func NewChannel(buffer int) *Channel {
	if buffer < 1 {
		buffer = 1
	}
	return &Channel{ch: make(chan string, buffer)}
}

// Report enqueues message, dropping it when the buffer is full or the
// channel has been closed.
func (c *Channel) Report(message string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.ch <- message:
	default:
		c.dropped.Add(1)
	}
}

// C returns the receive side.
func (c *Channel) C() <-chan string { return c.ch }

// Dropped returns how many messages were discarded.
func (c *Channel) Dropped() int64 { return c.dropped.Load() }

// Close closes the channel. Later reports are dropped. Safe to call twice.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

type logging struct {
	log *logger.Logger
}

// Logging mirrors every message to log at debug level.
func Logging(log *logger.Logger) Sink {
	if log == nil {
		return Discard
	}
	return logging{log: log}
}

func (l logging) Report(message string) {
	l.log.Debug(message, logger.Fields(logger.FieldStage, message))
}

type multi []Sink

// Multi fans each message out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Report(message string) {
	for _, s := range m {
		s.Report(message)
	}
}

// Recorder keeps every message in memory. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Report appends message.
func (r *Recorder) Report(message string) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
