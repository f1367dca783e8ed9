package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when the context ends while waiting for input.
var ErrInputCanceled = errors.New("input canceled")

// LineReader hands out trimmed input lines and stops waiting when a context
// is canceled. One goroutine owns the underlying stream, so a canceled read
// never loses the line that arrives after it.
type LineReader struct {
	scanner *bufio.Scanner
	lines   chan scannedLine
	start   sync.Once
}

type scannedLine struct {
	err  error
	text string
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		scanner: bufio.NewScanner(r),
		lines:   make(chan scannedLine),
	}
}

func (r *LineReader) scan() {
	defer close(r.lines)
	for r.scanner.Scan() {
		r.lines <- scannedLine{text: strings.TrimSpace(r.scanner.Text())}
	}
	if err := r.scanner.Err(); err != nil {
		r.lines <- scannedLine{err: err}
	}
}

// ReadLine returns the next line without surrounding whitespace. A final
// line without a newline is returned normally; io.EOF follows it.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCanceled
	}
	r.start.Do(func() { go r.scan() })

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return line.text, line.err
	}
}
