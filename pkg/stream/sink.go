package stream

import (
	"bufio"
	"io"
)

// Sink is the outbound transport of one stream. The Multiplexer is its only
// caller, so implementations need not be safe for concurrent use.
type Sink interface {
	Write(frame []byte) error
	Close() error
}

// WriterSink streams frames into a buffered writer and flushes after each
// frame, as used with fasthttp's body stream writer.
type WriterSink struct {
	w *bufio.Writer
}

func NewWriterSink(w *bufio.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(frame []byte) error {
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close flushes what is buffered. The underlying connection belongs to the
// HTTP server.
func (s *WriterSink) Close() error {
	return s.w.Flush()
}

// nopCloser adapts a plain io.Writer, mostly for the CLI and tests.
type nopCloser struct{ io.Writer }

func (n nopCloser) Write(frame []byte) error {
	_, err := n.Writer.Write(frame)
	return err
}

func (nopCloser) Close() error { return nil }

func NewPlainSink(w io.Writer) Sink { return nopCloser{w} }
