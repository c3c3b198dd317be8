package text

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/bnema/sessionize/internal/ports"
)

const (
	// StdoutPath selects standard output instead of a file.
	StdoutPath = "-"

	outputDirMode  = 0o755
	outputFileMode = 0o644
)

// Writer emits one rendered line per session. Output is buffered until Close.
type Writer struct {
	buf    *bufio.Writer
	closer io.Closer
}

var _ ports.SessionSink = (*Writer)(nil)

func NewWriter(w io.Writer) *Writer {
	writer := &Writer{buf: bufio.NewWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		writer.closer = closer
	}

	return writer
}

// Create opens path for writing, truncating an existing file. StdoutPath
// writes to stdout, which is flushed but never closed.
func Create(path string, stdout io.Writer) (*Writer, error) {
	if path == StdoutPath {
		return &Writer{buf: bufio.NewWriter(stdout)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), outputDirMode); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFileMode)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}

	return NewWriter(file), nil
}

func (w *Writer) Write(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := w.buf.WriteString(session.Render()); err != nil {
		return err
	}

	return w.buf.WriteByte('\n')
}

func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	if flushErr != nil {
		flushErr = fmt.Errorf("flush sessions: %w", flushErr)
	}

	if w.closer == nil {
		return flushErr
	}

	if err := w.closer.Close(); err != nil {
		return errors.Join(flushErr, fmt.Errorf("close output: %w", err))
	}

	return flushErr
}
