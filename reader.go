package hosepipe

import (
	"bufio"
	"io"
	"sync/atomic"
	"time"
)

// Scanner buffers: initial 64KiB, lines up to 16MiB. Streaming payloads can
// be far larger than bufio's default.
const (
	readerInitialBuffer = 64 * 1024
	readerMaxLine       = 16 * 1024 * 1024
)

// lineReader consumes one response body line by line, with a watchdog that
// detects stalled connections. Each lineReader is single-pass: once it
// reports EOF, a stall, or an error, the connection must be recycled.
type lineReader struct {
	body         io.ReadCloser
	scanner      *bufio.Scanner
	stallTimeout time.Duration
	watchdog     *time.Timer
	stalled      atomic.Bool
}

// newLineReader wraps body with line framing and arms the stall watchdog.
// If nothing (not even a keep-alive) arrives within stallTimeout, the
// watchdog closes the body, which unblocks the pending read.
func newLineReader(body io.ReadCloser, stallTimeout time.Duration) *lineReader {
	lr := &lineReader{
		body:         body,
		stallTimeout: stallTimeout,
	}
	lr.scanner = bufio.NewScanner(body)
	lr.scanner.Buffer(make([]byte, 0, readerInitialBuffer), readerMaxLine)
	lr.watchdog = time.AfterFunc(stallTimeout, func() {
		lr.stalled.Store(true)
		body.Close()
	})
	return lr
}

// next blocks until the next line arrives and returns it with the trailing
// newline stripped. Blank keep-alive lines are returned as empty slices and
// reset the watchdog like any other line. Returns errStalled if the watchdog
// fired, io.EOF on a clean server close, or the underlying read error.
func (lr *lineReader) next() ([]byte, error) {
	if !lr.scanner.Scan() {
		if lr.stalled.Load() {
			return nil, errStalled
		}
		if err := lr.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	lr.watchdog.Reset(lr.stallTimeout)
	return lr.scanner.Bytes(), nil
}

// close stops the watchdog and releases the connection.
func (lr *lineReader) close() {
	lr.watchdog.Stop()
	lr.body.Close()
}
