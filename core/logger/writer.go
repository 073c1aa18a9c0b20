package logger

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"
)

// errWriterClosed is returned for writes that arrive after Close.
var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans lines out to its sinks from a single goroutine. Sinks are
// flushed whenever the queue runs empty, so a burst costs one flush per sink.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}

	// mu keeps Write from sending on lines after Close closed it.
	mu     sync.RWMutex
	closed bool
	once   sync.Once

	errMu sync.Mutex
	err   error

	// sinks are touched only by run.
	sinks []*bufio.Writer
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 << 10
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.fail(w.flush())
				return
			}
			w.fail(w.write(line))
			if len(w.lines) == 0 {
				w.fail(w.flush())
			}
		case ack := <-w.flushes:
			w.drain()
			ack <- w.flush()
		}
	}
}

// drain writes the lines already queued.
func (w *asyncWriter) drain() {
	for len(w.lines) > 0 {
		if line, ok := <-w.lines; ok {
			w.fail(w.write(line))
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full, so no line
// is dropped.
func (w *asyncWriter) Write(p []byte) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	if err := w.firstErr(); err != nil || len(p) == 0 {
		return err
	}
	w.lines <- bytes.Clone(p)
	return nil
}

// Flush returns once every line queued before the call reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		if err := <-ack; err != nil {
			return err
		}
	case <-w.done:
	}
	return w.firstErr()
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.lines)
		w.mu.Unlock()
	})
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) write(line []byte) error {
	for _, s := range w.sinks {
		if _, err := s.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
