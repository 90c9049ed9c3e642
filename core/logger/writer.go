package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

const (
	defaultBufSize = 64 * 1024
	queueDepth     = 256
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans log lines out to its sinks from a single goroutine.
// Sinks are flushed whenever the queue runs empty, on Flush and on Close.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	stopped chan struct{}
	sinks   []*bufio.Writer

	gate   sync.RWMutex
	closed bool

	mu  sync.Mutex
	err error
}

func newAsyncWriter(outs []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	w := &asyncWriter{
		lines:   make(chan []byte, queueDepth),
		flushes: make(chan chan error),
		stopped: make(chan struct{}),
	}
	for _, out := range outs {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.stopped)
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
			ack <- w.flush()
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full; lines are
// never dropped.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.failure(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush pushes buffered output to the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		if err := <-ack; err != nil {
			return err
		}
	case <-w.stopped:
	}
	return w.failure()
}

// Close drains the queue and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.gate.Unlock()
	<-w.stopped
	return w.failure()
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
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
}

func (w *asyncWriter) failure() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
