package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	// DefaultBufferSize is the buffer size for file writes
	DefaultBufferSize = 32 * 1024
	// DefaultFlushInterval is the interval between automatic flushes
	DefaultFlushInterval = 5 * time.Second
	// LogFilePermissions restricts log files to the owner
	LogFilePermissions = 0o600
)

// BufferedFileWriter wraps a file with buffered I/O and periodic flushing. It is safe
// for concurrent use.
type BufferedFileWriter struct {
	mu            sync.Mutex
	file          *os.File
	writer        *bufio.Writer
	bufferSize    int
	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
	closed        bool
}

// BufferedWriterOption configures a BufferedFileWriter
type BufferedWriterOption func(*BufferedFileWriter)

// WithBufferSize sets the buffer size for the writer
func WithBufferSize(size int) BufferedWriterOption {
	return func(w *BufferedFileWriter) {
		if size > 0 {
			w.bufferSize = size
		}
	}
}

// WithFlushInterval sets the auto-flush interval. Zero disables auto-flush.
func WithFlushInterval(interval time.Duration) BufferedWriterOption {
	return func(w *BufferedFileWriter) {
		w.flushInterval = interval
	}
}

// NewBufferedFileWriter opens filePath for appending and starts the flush loop.
func NewBufferedFileWriter(filePath string, opts ...BufferedWriterOption) (*BufferedFileWriter, error) {
	w := &BufferedFileWriter{
		bufferSize:    DefaultBufferSize,
		flushInterval: DefaultFlushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	w.file = file
	w.writer = bufio.NewWriterSize(file, w.bufferSize)

	if w.flushInterval > 0 {
		go w.flushLoop()
	} else {
		close(w.done)
	}
	return w, nil
}

// Write implements io.Writer
func (w *BufferedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.writer.Write(p)
}

// Flush writes buffered data to the file
func (w *BufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	return w.writer.Flush()
}

// Close stops the flush loop, flushes, syncs and closes the file
func (w *BufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	flushErr := w.writer.Flush()
	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	switch {
	case flushErr != nil:
		return fmt.Errorf("flush log file: %w", flushErr)
	case syncErr != nil:
		return fmt.Errorf("sync log file: %w", syncErr)
	case closeErr != nil:
		return fmt.Errorf("close log file: %w", closeErr)
	}
	return nil
}

func (w *BufferedFileWriter) flushLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.Flush()
		case <-w.stop:
			return
		}
	}
}
