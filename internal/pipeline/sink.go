package pipeline

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives the pillar commands produced by the pipeline.
type Sink interface {
	Send(command string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(command string) error

// Send calls f(command).
func (f SinkFunc) Send(command string) error {
	return f(command)
}

// WriterSink writes one command per line, as the drive controller reads
// them from its serial port.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a Sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Send writes command followed by a newline.
func (s *WriterSink) Send(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, command)
	return err
}

// RecordingSink keeps every command it receives.
type RecordingSink struct {
	mu       sync.Mutex
	commands []string
}

// Send records command.
func (s *RecordingSink) Send(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)
	return nil
}

// Commands returns a copy of the recorded commands.
func (s *RecordingSink) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}
